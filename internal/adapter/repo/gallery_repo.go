package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

const galleryDocumentKey = "gallery"

// GalleryRepositoryPG implements domain.GalleryRepository on a single JSONB
// document. The scheduler owns the in-memory collection; the database only
// sees whole snapshots.
type GalleryRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewGalleryRepository creates a gallery repository backed by PostgreSQL.
func NewGalleryRepository(pool *pgxpool.Pool) *GalleryRepositoryPG {
	return &GalleryRepositoryPG{pool: pool}
}

// Load returns the persisted collection, empty when nothing was ever saved.
func (r *GalleryRepositoryPG) Load(ctx context.Context) ([]domain.GalleryItem, error) {
	payload, err := loadDocument(ctx, r.pool, galleryDocumentKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.GalleryItem{}, nil
		}
		return nil, fmt.Errorf("%w: load gallery: %v", domain.ErrPersistence, err)
	}
	var items []domain.GalleryItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("%w: decode gallery: %v", domain.ErrPersistence, err)
	}
	return items, nil
}

// Save replaces the persisted collection with the given snapshot.
func (r *GalleryRepositoryPG) Save(ctx context.Context, items []domain.GalleryItem) error {
	if items == nil {
		items = []domain.GalleryItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode gallery: %v", domain.ErrPersistence, err)
	}
	if err := saveDocument(ctx, r.pool, galleryDocumentKey, payload); err != nil {
		return fmt.Errorf("%w: save gallery: %v", domain.ErrPersistence, err)
	}
	return nil
}

func loadDocument(ctx context.Context, pool *pgxpool.Pool, key string) ([]byte, error) {
	query := `
SELECT payload
FROM documents
WHERE key = $1;
`
	var payload []byte
	if err := pool.QueryRow(ctx, query, key).Scan(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func saveDocument(ctx context.Context, pool *pgxpool.Pool, key string, payload []byte) error {
	query := `
INSERT INTO documents (key, payload, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE
SET payload = EXCLUDED.payload,
    updated_at = NOW();
`
	_, err := pool.Exec(ctx, query, key, payload)
	return err
}
