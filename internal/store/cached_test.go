package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aTrapDeer/portfolio-site/internal/groq"
)

type countingClient struct {
	calls int
	err   error
}

func (c *countingClient) Fetch(ctx context.Context, q groq.Query, params groq.Params, opts ...FetchOption) (json.RawMessage, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return json.RawMessage(`[{"name":"Go"}]`), nil
}

func (c *countingClient) Create(ctx context.Context, doc any) (string, error) { return "id", nil }

func (c *countingClient) Transaction() Transaction { return nil }

func TestCachedServesRepeatedQueriesFromCache(t *testing.T) {
	next := &countingClient{}
	c := NewCached(next, time.Minute)
	q := groq.Query{Type: "skills"}

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background(), q, nil); err != nil {
			t.Fatalf("Fetch: %v", err)
		}
	}
	if next.calls != 1 {
		t.Errorf("store called %d times, want 1", next.calls)
	}

	c.Flush()
	if _, err := c.Fetch(context.Background(), q, nil); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if next.calls != 2 {
		t.Errorf("store called %d times after flush, want 2", next.calls)
	}
}

func TestCachedKeysIncludeParams(t *testing.T) {
	next := &countingClient{}
	c := NewCached(next, time.Minute)
	q := groq.Query{Type: "project", Where: []groq.Cond{{Path: "slug.current", Param: "slug"}}}

	c.Fetch(context.Background(), q, groq.Params{"slug": "a"})
	c.Fetch(context.Background(), q, groq.Params{"slug": "b"})
	if next.calls != 2 {
		t.Errorf("store called %d times, want 2", next.calls)
	}
}

func TestCachedNoCacheBypasses(t *testing.T) {
	next := &countingClient{}
	c := NewCached(next, time.Minute)
	q := groq.Query{Type: "skills"}

	c.Fetch(context.Background(), q, nil, NoCache())
	c.Fetch(context.Background(), q, nil, NoCache())
	if next.calls != 2 {
		t.Errorf("store called %d times, want 2", next.calls)
	}
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	next := &countingClient{err: errors.New("unreachable")}
	c := NewCached(next, time.Minute)
	q := groq.Query{Type: "skills"}

	for i := 0; i < 2; i++ {
		if _, err := c.Fetch(context.Background(), q, nil); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls != 2 {
		t.Errorf("store called %d times, want 2", next.calls)
	}
}

func TestFetchInto(t *testing.T) {
	var skills []struct {
		Name string `json:"name"`
	}
	if err := FetchInto(context.Background(), &countingClient{}, groq.Query{Type: "skills"}, nil, &skills); err != nil {
		t.Fatalf("FetchInto: %v", err)
	}
	if len(skills) != 1 || skills[0].Name != "Go" {
		t.Errorf("unexpected result %+v", skills)
	}
}
