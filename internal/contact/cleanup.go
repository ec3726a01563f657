package contact

import (
	"context"
	"fmt"

	"github.com/aTrapDeer/portfolio-site/internal/groq"
	"github.com/aTrapDeer/portfolio-site/internal/models"
	"github.com/aTrapDeer/portfolio-site/internal/store"
)

// Count returns how many contact messages are stored.
func Count(ctx context.Context, c store.Client) (int, error) {
	var n int
	q := groq.Query{Type: models.TypeContact, Count: true}
	if err := store.FetchInto(ctx, c, q, nil, &n, store.NoCache()); err != nil {
		return 0, fmt.Errorf("count contact messages: %w", err)
	}
	return n, nil
}

// Purge deletes every contact message in a single transaction and returns
// how many were removed.
func Purge(ctx context.Context, c store.Client) (int, error) {
	var ids []string
	q := groq.Query{Type: models.TypeContact, Pluck: "_id"}
	if err := store.FetchInto(ctx, c, q, nil, &ids, store.NoCache()); err != nil {
		return 0, fmt.Errorf("list contact messages: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	tx := c.Transaction()
	for _, id := range ids {
		tx = tx.Delete(id)
	}
	n, err := tx.Commit(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete contact messages: %w", err)
	}
	return n, nil
}
