package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/aTrapDeer/portfolio-site/internal/groq"
)

// Cached is the eventually consistent read mode: query results are kept for
// the revalidation window and served without touching the store. Writes go
// straight through.
type Cached struct {
	next Client
	ttl  time.Duration
	c    *cache.Cache
}

// NewCached wraps next with a read cache whose entries live for ttl.
func NewCached(next Client, ttl time.Duration) *Cached {
	return &Cached{
		next: next,
		ttl:  ttl,
		c:    cache.New(ttl, 2*ttl),
	}
}

func (s *Cached) Fetch(ctx context.Context, q groq.Query, params groq.Params, opts ...FetchOption) (json.RawMessage, error) {
	o := ApplyOptions(opts)
	if o.NoCache || s.ttl <= 0 {
		return s.next.Fetch(ctx, q, params, opts...)
	}

	key, err := cacheKey(q, params)
	if err != nil {
		return nil, err
	}
	if data, found := s.c.Get(key); found {
		return data.(json.RawMessage), nil
	}

	raw, err := s.next.Fetch(ctx, q, params, opts...)
	if err != nil {
		return nil, err
	}

	ttl := cache.DefaultExpiration
	if o.Revalidate > 0 {
		ttl = o.Revalidate
	}
	s.c.Set(key, raw, ttl)
	return raw, nil
}

func (s *Cached) Create(ctx context.Context, doc any) (string, error) {
	return s.next.Create(ctx, doc)
}

func (s *Cached) Transaction() Transaction {
	return s.next.Transaction()
}

// Flush drops every cached result.
func (s *Cached) Flush() {
	s.c.Flush()
}

func cacheKey(q groq.Query, params groq.Params) (string, error) {
	if len(params) == 0 {
		return q.String(), nil
	}
	p, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return q.String() + "|" + string(p), nil
}
