package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// AmbienceRepositoryPG implements domain.AmbienceRepository.
type AmbienceRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAmbienceRepository creates an ambience repository backed by PostgreSQL.
func NewAmbienceRepository(pool *pgxpool.Pool) *AmbienceRepositoryPG {
	return &AmbienceRepositoryPG{pool: pool}
}

// List returns all stored ambiences ordered by title.
func (r *AmbienceRepositoryPG) List(ctx context.Context) ([]domain.Ambience, error) {
	query := `
SELECT payload
FROM ambiences
ORDER BY payload->>'title';
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list ambiences: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	ambiences := make([]domain.Ambience, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: scan ambience: %v", domain.ErrPersistence, err)
		}
		var ambience domain.Ambience
		if err := json.Unmarshal(payload, &ambience); err != nil {
			return nil, fmt.Errorf("%w: decode ambience: %v", domain.ErrPersistence, err)
		}
		ambiences = append(ambiences, ambience)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list ambiences: %v", domain.ErrPersistence, err)
	}
	return ambiences, nil
}

// Save inserts or replaces one ambience by id.
func (r *AmbienceRepositoryPG) Save(ctx context.Context, ambience domain.Ambience) error {
	payload, err := json.Marshal(ambience)
	if err != nil {
		return fmt.Errorf("%w: encode ambience: %v", domain.ErrPersistence, err)
	}
	query := `
INSERT INTO ambiences (id, payload, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (id) DO UPDATE
SET payload = EXCLUDED.payload,
    updated_at = NOW();
`
	if _, err := r.pool.Exec(ctx, query, ambience.ID, payload); err != nil {
		return fmt.Errorf("%w: save ambience: %v", domain.ErrPersistence, err)
	}
	return nil
}

// Delete removes one ambience by id.
func (r *AmbienceRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ambiences WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("%w: delete ambience: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: ambience %s", domain.ErrNotFound, id)
	}
	return nil
}
