// Package content turns content store documents into the props each page
// section renders. Read failures degrade to an empty section instead of
// failing the page; only the project detail page reports them.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aTrapDeer/portfolio-site/internal/asset"
	"github.com/aTrapDeer/portfolio-site/internal/groq"
	"github.com/aTrapDeer/portfolio-site/internal/store"
)

// SkillsRevalidate is how long the skills list may be served from cache.
const SkillsRevalidate = 60 * time.Second

// ErrNotFound means the requested document does not exist.
var ErrNotFound = errors.New("content not found")

// FetchError is a failed read for one page section.
type FetchError struct {
	Section string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Section, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Service holds the projection functions.
type Service struct {
	store  store.Client
	images *asset.Builder
	log    *slog.Logger
}

// New returns a Service reading through c. c is normally the cached read
// mode client.
func New(c store.Client, images *asset.Builder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: c, images: images, log: logger}
}

// fetchWithFallback runs q and decodes the result. Any failure is logged
// and replaced by fallback.
func fetchWithFallback[T any](ctx context.Context, s *Service, section string, q groq.Query, params groq.Params, fallback T, opts ...store.FetchOption) T {
	var out T
	if err := store.FetchInto(ctx, s.store, q, params, &out, opts...); err != nil {
		ferr := &FetchError{Section: section, Err: err}
		s.log.Warn("Error fetching content, using fallback", "section", section, "error", ferr)
		return fallback
	}
	return out
}
