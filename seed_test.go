package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aTrapDeer/portfolio-site/internal/groq"
	"github.com/aTrapDeer/portfolio-site/internal/store"
	"github.com/aTrapDeer/portfolio-site/internal/store/local"
)

const seedYAML = `documents:
  - _id: profile
    _type: profile
    fullName: Radit
    email: me@radit.dev
  - _id: skill-go
    _type: skills
    name: Go
    category: backend
  - _id: exp-1
    _type: experience
    company: Acme
    role: Engineer
    startDate: 2022-03-01
`

func TestSeedFileIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := local.Open(filepath.Join(dir, "seed.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		n, err := seedFile(ctx, db, path)
		if err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
		if n != 3 {
			t.Errorf("seed %d: n = %d", i, n)
		}
	}

	var count int
	if err := store.FetchInto(ctx, db, groq.Query{Type: "skills", Count: true}, nil, &count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("skills = %d after reseed, want 1", count)
	}

	var start string
	q := groq.Query{Type: "experience", First: true, Pluck: "startDate"}
	if err := store.FetchInto(ctx, db, q, nil, &start); err != nil {
		t.Fatal(err)
	}
	if start != "2022-03-01" {
		t.Errorf("startDate = %q", start)
	}
}

func TestSeedFileRequiresType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("documents:\n  - name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readSeedFile(path); err == nil {
		t.Fatal("expected error")
	}
}

func TestSeedWatcherReseedsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := local.Open(filepath.Join(dir, "seed.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	w, err := newSeedWatcher(path)
	if err != nil {
		t.Fatalf("newSeedWatcher: %v", err)
	}
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx, db) }()

	updated := seedYAML + "  - _id: skill-sql\n    _type: skills\n    name: SQL\n    category: backend\n"
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	count := func() int {
		var n int
		if err := store.FetchInto(context.Background(), db, groq.Query{Type: "skills", Count: true}, nil, &n); err != nil {
			t.Fatal(err)
		}
		return n
	}
	deadline := time.Now().Add(5 * time.Second)
	for count() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("skills = %d after rewrite, want 2", count())
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
