// Package local is a sqlite-backed content store for development and tests.
// Documents are kept as JSON bodies and queried with the same groq.Query
// values the hosted store receives.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aTrapDeer/portfolio-site/internal/groq"
	"github.com/aTrapDeer/portfolio-site/internal/store"
)

// timestampLayout has a fixed width so system timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// Document is one stored record.
type Document struct {
	ID        string `gorm:"primaryKey"`
	Type      string `gorm:"index"`
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store implements store.Client over gorm.
type Store struct {
	db *gorm.DB
}

// Open opens or creates the sqlite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Fetch(ctx context.Context, q groq.Query, params groq.Params, _ ...store.FetchOption) (json.RawMessage, error) {
	var rows []Document
	result := s.db.WithContext(ctx).Where("type = ?", q.Type).Order("created_at asc, id asc").Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("query %s: %w", q.Type, result.Error)
	}

	docs := make([]map[string]any, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].decode()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	out, err := groq.Eval(q, params, docs, func(id string) (map[string]any, error) {
		return s.get(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Type, err)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return raw, nil
}

func (s *Store) get(ctx context.Context, id string) (map[string]any, error) {
	var row Document
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.decode()
}

// Create inserts doc. An _id in the document is kept, otherwise a uuid is
// assigned.
func (s *Store) Create(ctx context.Context, doc any) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("document must be an object: %w", err)
	}

	docType, _ := body["_type"].(string)
	if docType == "" {
		return "", fmt.Errorf("create document: missing _type")
	}
	id, _ := body["_id"].(string)
	if id == "" {
		id = uuid.NewString()
	}

	for _, k := range []string{"_id", "_type", "_createdAt", "_updatedAt"} {
		delete(body, k)
	}
	stored, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	row := Document{ID: id, Type: docType, Body: string(stored)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	return id, nil
}

func (s *Store) Transaction() store.Transaction {
	return &transaction{db: s.db}
}

type transaction struct {
	db  *gorm.DB
	ids []string
}

func (t *transaction) Delete(id string) store.Transaction {
	t.ids = append(t.ids, id)
	return t
}

func (t *transaction) Commit(ctx context.Context) (int, error) {
	if len(t.ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id IN ?", t.ids).Delete(&Document{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return int(deleted), nil
}

func (d *Document) decode() (map[string]any, error) {
	doc := map[string]any{}
	if d.Body != "" {
		if err := json.Unmarshal([]byte(d.Body), &doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", d.ID, err)
		}
	}
	doc["_id"] = d.ID
	doc["_type"] = d.Type
	doc["_createdAt"] = d.CreatedAt.UTC().Format(timestampLayout)
	doc["_updatedAt"] = d.UpdatedAt.UTC().Format(timestampLayout)
	return doc, nil
}
