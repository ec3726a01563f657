// Package store defines the content store client used by page projections
// and the contact pipeline.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aTrapDeer/portfolio-site/internal/groq"
)

// ErrNotConfigured is returned when the store is missing its project
// identifier or dataset.
var ErrNotConfigured = errors.New("content store not configured")

// Client reads and writes documents in the content store.
type Client interface {
	// Fetch runs q and returns the raw JSON result, which is `null` when
	// the query selects nothing.
	Fetch(ctx context.Context, q groq.Query, params groq.Params, opts ...FetchOption) (json.RawMessage, error)
	// Create stores a new document and returns its id. doc must marshal to
	// a JSON object carrying a _type.
	Create(ctx context.Context, doc any) (string, error)
	// Transaction starts a batch of mutations committed together.
	Transaction() Transaction
}

// Transaction batches deletes.
type Transaction interface {
	Delete(id string) Transaction
	Commit(ctx context.Context) (int, error)
}

// FetchOptions tune a single Fetch call.
type FetchOptions struct {
	// Revalidate overrides the cache lifetime. Zero means the default.
	Revalidate time.Duration
	// NoCache bypasses cached read mode.
	NoCache bool
}

type FetchOption func(*FetchOptions)

// WithRevalidate keeps the result cached for d.
func WithRevalidate(d time.Duration) FetchOption {
	return func(o *FetchOptions) { o.Revalidate = d }
}

// NoCache always reads through to the store.
func NoCache() FetchOption {
	return func(o *FetchOptions) { o.NoCache = true }
}

// ApplyOptions folds opts into a FetchOptions value.
func ApplyOptions(opts []FetchOption) FetchOptions {
	var o FetchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FetchInto runs q and decodes the result into dst.
func FetchInto(ctx context.Context, c Client, q groq.Query, params groq.Params, dst any, opts ...FetchOption) error {
	raw, err := c.Fetch(ctx, q, params, opts...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
