package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

// FormStore owns the live draft. Reads get deep copies; writes go through
// Update or Replace and arm the debounced save, so rapid wizard edits land
// in the database as one write.
type FormStore struct {
	mu       sync.Mutex
	form     domain.FormData
	drafts   domain.DraftRepository
	debounce *Debouncer
	logger   zerolog.Logger
}

// NewFormStore builds the store around an initial draft. window controls
// the save debounce.
func NewFormStore(initial domain.FormData, drafts domain.DraftRepository, window time.Duration, logger zerolog.Logger) *FormStore {
	s := &FormStore{
		form:   initial.Clone(),
		drafts: drafts,
		logger: logger,
	}
	s.debounce = NewDebouncer(window, s.save)
	return s
}

// Get returns a deep copy of the current draft.
func (s *FormStore) Get() domain.FormData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.Clone()
}

// Update applies fn to the draft under the lock and arms the debounced
// save. Reference images are re-normalized afterwards so the single-hero
// rule holds no matter what fn did.
func (s *FormStore) Update(fn func(*domain.FormData)) domain.FormData {
	s.mu.Lock()
	fn(&s.form)
	s.form.ReferenceImages = domain.NormalizeHero(s.form.ReferenceImages)
	out := s.form.Clone()
	s.mu.Unlock()
	s.debounce.Trigger()
	return out
}

// Replace swaps the whole draft, used by backup import and session reset.
func (s *FormStore) Replace(form domain.FormData) {
	s.mu.Lock()
	s.form = form.Clone()
	s.form.ReferenceImages = domain.NormalizeHero(s.form.ReferenceImages)
	s.mu.Unlock()
	s.debounce.Trigger()
}

// Flush forces a pending save through, for shutdown.
func (s *FormStore) Flush() {
	s.debounce.Flush()
}

// Close flushes and disables the debounced save.
func (s *FormStore) Close() {
	s.debounce.Close()
}

func (s *FormStore) save() {
	snapshot := s.Get()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.drafts.Save(ctx, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("store: draft save failed")
	}
}
