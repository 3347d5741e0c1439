package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// HistoryRepositoryPG implements domain.HistoryRepository. Records are
// append-only; nothing ever updates or deletes them.
type HistoryRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a history repository backed by PostgreSQL.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepositoryPG {
	return &HistoryRepositoryPG{pool: pool}
}

// Append inserts one render record.
func (r *HistoryRepositoryPG) Append(ctx context.Context, record domain.HistoryMetadata) error {
	tags, err := json.Marshal(record.Tags)
	if err != nil {
		return fmt.Errorf("%w: encode history tags: %v", domain.ErrPersistence, err)
	}
	query := `
INSERT INTO render_history (id, recorded_at, product_name, preset_used, ambience_title, aspect_ratio, prompt_final_en, tags)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err = r.pool.Exec(ctx, query,
		record.ID,
		record.Date,
		record.ProductName,
		record.PresetUsed,
		record.AmbienceTitle,
		record.AspectRatio,
		record.PromptFinalEn,
		tags,
	)
	if err != nil {
		return fmt.Errorf("%w: append history: %v", domain.ErrPersistence, err)
	}
	return nil
}

// List returns all records, newest first.
func (r *HistoryRepositoryPG) List(ctx context.Context) ([]domain.HistoryMetadata, error) {
	query := `
SELECT id, recorded_at, product_name, preset_used, ambience_title, aspect_ratio, prompt_final_en, tags
FROM render_history
ORDER BY recorded_at DESC;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list history: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	records := make([]domain.HistoryMetadata, 0)
	for rows.Next() {
		var record domain.HistoryMetadata
		var tags []byte
		if err := rows.Scan(
			&record.ID,
			&record.Date,
			&record.ProductName,
			&record.PresetUsed,
			&record.AmbienceTitle,
			&record.AspectRatio,
			&record.PromptFinalEn,
			&tags,
		); err != nil {
			return nil, fmt.Errorf("%w: scan history: %v", domain.ErrPersistence, err)
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &record.Tags); err != nil {
				return nil, fmt.Errorf("%w: decode history tags: %v", domain.ErrPersistence, err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list history: %v", domain.ErrPersistence, err)
	}
	return records, nil
}
