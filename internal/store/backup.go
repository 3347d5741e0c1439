package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

// BackupService exports and imports the portable workspace payload:
// presets, ambiences, render history and the current draft.
type BackupService struct {
	presets   domain.PresetRepository
	ambiences domain.AmbienceRepository
	history   domain.HistoryRepository
	forms     *FormStore
	logger    zerolog.Logger
}

// NewBackupService wires the backup service.
func NewBackupService(presets domain.PresetRepository, ambiences domain.AmbienceRepository, history domain.HistoryRepository, forms *FormStore, logger zerolog.Logger) *BackupService {
	return &BackupService{
		presets:   presets,
		ambiences: ambiences,
		history:   history,
		forms:     forms,
		logger:    logger,
	}
}

// Export assembles the current workspace into a backup payload.
func (s *BackupService) Export(ctx context.Context) (domain.BackupPayload, error) {
	presets, err := s.presets.List(ctx)
	if err != nil {
		return domain.BackupPayload{}, fmt.Errorf("export presets: %w", err)
	}
	ambiences, err := s.ambiences.List(ctx)
	if err != nil {
		return domain.BackupPayload{}, fmt.Errorf("export ambiences: %w", err)
	}
	history, err := s.history.List(ctx)
	if err != nil {
		return domain.BackupPayload{}, fmt.Errorf("export history: %w", err)
	}
	draft := s.forms.Get()
	return domain.BackupPayload{
		Version:    domain.BackupVersion,
		ExportedAt: time.Now().UTC(),
		Presets:    presets,
		Ambiences:  ambiences,
		History:    history,
		Draft:      &draft,
	}, nil
}

// Import validates raw backup bytes and applies them. Validation happens
// before any write, so a malformed payload never touches stored state.
func (s *BackupService) Import(ctx context.Context, data []byte) error {
	payload, err := domain.ParseBackup(data)
	if err != nil {
		return err
	}

	for _, preset := range payload.Presets {
		if err := s.presets.Save(ctx, preset); err != nil {
			return fmt.Errorf("import preset %s: %w", preset.ID, err)
		}
	}
	for _, ambience := range payload.Ambiences {
		if err := s.ambiences.Save(ctx, ambience); err != nil {
			return fmt.Errorf("import ambience %s: %w", ambience.ID, err)
		}
	}
	if err := s.importHistory(ctx, payload.History); err != nil {
		return err
	}
	if payload.Draft != nil {
		s.forms.Replace(*payload.Draft)
	}
	s.logger.Info().
		Int("presets", len(payload.Presets)).
		Int("ambiences", len(payload.Ambiences)).
		Int("history", len(payload.History)).
		Msg("store: backup imported")
	return nil
}

// importHistory appends only records whose ids are not stored yet; history
// stays append-only even across imports.
func (s *BackupService) importHistory(ctx context.Context, records []domain.HistoryMetadata) error {
	existing, err := s.history.List(ctx)
	if err != nil {
		return fmt.Errorf("import history: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, record := range existing {
		seen[record.ID] = struct{}{}
	}
	for _, record := range records {
		if _, dup := seen[record.ID]; dup {
			continue
		}
		if err := s.history.Append(ctx, record); err != nil {
			return fmt.Errorf("import history record %s: %w", record.ID, err)
		}
	}
	return nil
}
