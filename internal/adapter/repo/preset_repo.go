package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"studio/internal/domain"
)

// PresetRepositoryPG implements domain.PresetRepository.
type PresetRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPresetRepository creates a preset repository backed by PostgreSQL.
func NewPresetRepository(pool *pgxpool.Pool) *PresetRepositoryPG {
	return &PresetRepositoryPG{pool: pool}
}

// List returns all presets, system presets first, then by name.
func (r *PresetRepositoryPG) List(ctx context.Context) ([]domain.Preset, error) {
	query := `
SELECT payload
FROM presets
ORDER BY is_system DESC, payload->>'name';
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: list presets: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	presets := make([]domain.Preset, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: scan preset: %v", domain.ErrPersistence, err)
		}
		var preset domain.Preset
		if err := json.Unmarshal(payload, &preset); err != nil {
			return nil, fmt.Errorf("%w: decode preset: %v", domain.ErrPersistence, err)
		}
		presets = append(presets, preset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list presets: %v", domain.ErrPersistence, err)
	}
	return presets, nil
}

// Save inserts or replaces one preset by id.
func (r *PresetRepositoryPG) Save(ctx context.Context, preset domain.Preset) error {
	payload, err := json.Marshal(preset)
	if err != nil {
		return fmt.Errorf("%w: encode preset: %v", domain.ErrPersistence, err)
	}
	query := `
INSERT INTO presets (id, payload, is_system, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (id) DO UPDATE
SET payload = EXCLUDED.payload,
    is_system = EXCLUDED.is_system,
    updated_at = NOW();
`
	if _, err := r.pool.Exec(ctx, query, preset.ID, payload, preset.IsSystem); err != nil {
		return fmt.Errorf("%w: save preset: %v", domain.ErrPersistence, err)
	}
	return nil
}

// Delete removes one user preset by id. System presets stay.
func (r *PresetRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM presets WHERE id = $1 AND is_system = FALSE;`, id)
	if err != nil {
		return fmt.Errorf("%w: delete preset: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: preset %s", domain.ErrNotFound, id)
	}
	return nil
}
