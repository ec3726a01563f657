package main

// seed.go loads fixture documents into the content store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/aTrapDeer/portfolio-site/internal/store"
)

type seedDocuments struct {
	Documents []map[string]any `yaml:"documents"`
}

func readSeedFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedDocuments
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, doc := range seed.Documents {
		if t, _ := doc["_type"].(string); t == "" {
			return nil, fmt.Errorf("parse seed file %s: document %d has no _type", path, i)
		}
		seed.Documents[i] = normalizeSeedValue(doc).(map[string]any)
	}
	return seed.Documents, nil
}

// normalizeSeedValue turns YAML timestamps back into the date strings the
// store holds.
func normalizeSeedValue(v any) any {
	switch v := v.(type) {
	case time.Time:
		if v.Equal(v.Truncate(24 * time.Hour)) {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	case map[string]any:
		for k, x := range v {
			v[k] = normalizeSeedValue(x)
		}
		return v
	case []any:
		for i, x := range v {
			v[i] = normalizeSeedValue(x)
		}
		return v
	default:
		return v
	}
}

// seedFile replaces the documents listed in path. Documents with an _id are
// deleted first so the file can be applied repeatedly.
func seedFile(ctx context.Context, c store.Client, path string) (int, error) {
	docs, err := readSeedFile(path)
	if err != nil {
		return 0, err
	}

	tx := c.Transaction()
	replacing := 0
	for _, doc := range docs {
		if id, _ := doc["_id"].(string); id != "" {
			tx = tx.Delete(id)
			replacing++
		} else {
			logger.Warn("Seed document has no _id and will be duplicated on reseed", "type", doc["_type"])
		}
	}
	if replacing > 0 {
		if _, err := tx.Commit(ctx); err != nil {
			return 0, fmt.Errorf("clear seeded documents: %w", err)
		}
	}

	for i, doc := range docs {
		if _, err := c.Create(ctx, doc); err != nil {
			return i, fmt.Errorf("seed document %d: %w", i, err)
		}
	}
	return len(docs), nil
}

// watchSeedFile reseeds whenever path changes, until ctx is done.
func watchSeedFile(ctx context.Context, c store.Client, path string) error {
	w, err := newSeedWatcher(path)
	if err != nil {
		return err
	}
	return w.run(ctx, c)
}

// seedWatcher watches the directory of a seed file rather than the file,
// because editors often replace files on save.
type seedWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

func newSeedWatcher(path string) (*seedWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &seedWatcher{path: abs, watcher: watcher, debounce: 500 * time.Millisecond}, nil
}

// run reseeds in its own loop, so reseeds never overlap and none is still
// running once run returns.
func (w *seedWatcher) run(ctx context.Context, c store.Client) error {
	defer w.watcher.Close()
	logger.Info("Watching seed file for changes", "file", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != w.path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)) {
				continue
			}
			timer.Reset(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			n, err := seedFile(ctx, c, w.path)
			if err != nil {
				logger.Error("Error reseeding", "file", w.path, "error", err)
				continue
			}
			logger.Info("Reseeded documents", "file", w.path, "count", n)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error", "error", err)
		}
	}
}
