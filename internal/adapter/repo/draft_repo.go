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

const draftDocumentKey = "draft"

// DraftRepositoryPG implements domain.DraftRepository on a single JSONB
// document.
type DraftRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDraftRepository creates a draft repository backed by PostgreSQL.
func NewDraftRepository(pool *pgxpool.Pool) *DraftRepositoryPG {
	return &DraftRepositoryPG{pool: pool}
}

// Load returns the saved draft, nil when none was ever saved.
func (r *DraftRepositoryPG) Load(ctx context.Context) (*domain.FormData, error) {
	payload, err := loadDocument(ctx, r.pool, draftDocumentKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: load draft: %v", domain.ErrPersistence, err)
	}
	var form domain.FormData
	if err := json.Unmarshal(payload, &form); err != nil {
		return nil, fmt.Errorf("%w: decode draft: %v", domain.ErrPersistence, err)
	}
	return &form, nil
}

// Save replaces the saved draft.
func (r *DraftRepositoryPG) Save(ctx context.Context, form domain.FormData) error {
	payload, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("%w: encode draft: %v", domain.ErrPersistence, err)
	}
	if err := saveDocument(ctx, r.pool, draftDocumentKey, payload); err != nil {
		return fmt.Errorf("%w: save draft: %v", domain.ErrPersistence, err)
	}
	return nil
}
