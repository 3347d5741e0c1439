package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studio/internal/domain"
)

// PipelineRunner is the per-item job the scheduler drives.
type PipelineRunner interface {
	Run(ctx context.Context, item domain.GalleryItem) (Result, error)
}

// Options configures the scheduler.
type Options struct {
	// MaxConcurrency caps how many items may be rendering at once.
	// Zero selects the default of 1.
	MaxConcurrency int
	Pipeline       PipelineRunner
	// Persist is triggered after every collection mutation; callers
	// typically hand in a debounced writer. May be nil.
	Persist func()
	// Notify publishes a user-facing notice (severity, message). May be
	// nil.
	Notify func(severity, message string)
	Logger zerolog.Logger
}

// Scheduler owns the gallery collection and the active-render set. All
// mutations run on a single command loop, which makes the concurrency cap
// and the no-double-dispatch guarantee enforceable in one place instead of
// being scattered across callers.
type Scheduler struct {
	capacity int
	pipeline PipelineRunner
	persist  func()
	notify   func(severity, message string)
	logger   zerolog.Logger

	cmds   chan func()
	quit   chan struct{}
	done   chan struct{}
	cancel context.CancelFunc
	ctx    context.Context
	wg     sync.WaitGroup

	// loop-owned state, never touched outside the command loop
	items  []*domain.GalleryItem
	active map[string]struct{}

	// final holds the collection as it stood when the loop exited; the
	// close of done publishes it to post-shutdown readers.
	final []domain.GalleryItem
}

// New constructs a stopped scheduler; call Start to begin processing.
func New(opts Options) *Scheduler {
	capacity := opts.MaxConcurrency
	if capacity <= 0 {
		capacity = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		capacity: capacity,
		pipeline: opts.Pipeline,
		persist:  opts.Persist,
		notify:   opts.Notify,
		logger:   opts.Logger,
		cmds:     make(chan func()),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		cancel:   cancel,
		ctx:      ctx,
		active:   make(map[string]struct{}),
	}
}

// Start loads the initial collection and runs the command loop. Items that
// were rendering when the previous process stopped resume as queued.
func (s *Scheduler) Start(initial []domain.GalleryItem) {
	s.items = make([]*domain.GalleryItem, 0, len(initial))
	for _, item := range initial {
		clone := item.Clone()
		if clone.Status == domain.StatusRendering {
			clone.Status = domain.StatusQueued
		}
		s.items = append(s.items, &clone)
	}
	go s.loop()
	s.do(s.dispatch)
}

// Close interrupts in-flight pipelines and waits for their outcomes to be
// applied before stopping the command loop, so the drained collection is
// what Items reports afterwards.
func (s *Scheduler) Close(ctx context.Context) error {
	s.cancel()

	settled := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(settled)
	}()
	var err error
	select {
	case <-settled:
	case <-ctx.Done():
		err = ctx.Err()
	}

	close(s.quit)
	<-s.done
	return err
}

func (s *Scheduler) loop() {
	defer close(s.done)
	for {
		select {
		case fn := <-s.cmds:
			fn()
		case <-s.quit:
			s.final = s.snapshot()
			return
		}
	}
}

func (s *Scheduler) snapshot() []domain.GalleryItem {
	out := make([]domain.GalleryItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	return out
}

// do runs fn on the command loop, dropping it if the scheduler is closed.
func (s *Scheduler) do(fn func()) {
	select {
	case s.cmds <- fn:
	case <-s.done:
	}
}

// Enqueue prepends a batch of freshly created items and runs a scheduling
// pass. Batches are LIFO against each other while items inside one batch
// keep their order.
func (s *Scheduler) Enqueue(items []domain.GalleryItem) {
	if len(items) == 0 {
		return
	}
	s.do(func() {
		batch := make([]*domain.GalleryItem, 0, len(items))
		for _, item := range items {
			clone := item.Clone()
			batch = append(batch, &clone)
		}
		s.items = append(batch, s.items...)
		s.dispatch()
		s.persistChanged()
	})
}

// Items returns a deep-copied snapshot of the collection. After Close it
// keeps returning the final drained snapshot.
func (s *Scheduler) Items() []domain.GalleryItem {
	reply := make(chan []domain.GalleryItem, 1)
	s.do(func() { reply <- s.snapshot() })
	select {
	case items := <-reply:
		return items
	case <-s.done:
		return s.final
	}
}

// QueueAll flips every draft item to queued and reports how many moved.
func (s *Scheduler) QueueAll() int {
	reply := make(chan int, 1)
	s.do(func() {
		moved := 0
		for _, item := range s.items {
			if item.Status == domain.StatusDraft {
				item.Status = domain.StatusQueued
				moved++
			}
		}
		if moved > 0 {
			s.dispatch()
			s.persistChanged()
		}
		reply <- moved
	})
	select {
	case n := <-reply:
		return n
	case <-s.done:
		return 0
	}
}

// Retry re-queues a failed item. Error is the only status retry accepts: a
// rendering or queued item is already in flight and a completed item must
// be regenerated instead.
func (s *Scheduler) Retry(id string) error {
	reply := make(chan error, 1)
	s.do(func() {
		item := s.find(id)
		switch {
		case item == nil:
			reply <- fmt.Errorf("%w: item %s", domain.ErrNotFound, id)
		case item.Status != domain.StatusError:
			reply <- fmt.Errorf("%w: apenas itens com erro podem ser reprocessados", domain.ErrValidation)
		default:
			item.Status = domain.StatusQueued
			item.ErrorMessage = ""
			s.dispatch()
			s.persistChanged()
			reply <- nil
		}
	})
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return context.Canceled
	}
}

// RetryErrors re-queues every failed item and reports how many moved.
func (s *Scheduler) RetryErrors() int {
	reply := make(chan int, 1)
	s.do(func() {
		moved := 0
		for _, item := range s.items {
			if item.Status == domain.StatusError {
				item.Status = domain.StatusQueued
				item.ErrorMessage = ""
				moved++
			}
		}
		if moved > 0 {
			s.dispatch()
			s.persistChanged()
		}
		reply <- moved
	})
	select {
	case n := <-reply:
		return n
	case <-s.done:
		return 0
	}
}

// Regenerate clones a terminal item into a fresh queued item with a new id
// and returns the new id. The source item keeps its state.
func (s *Scheduler) Regenerate(id string) (string, error) {
	type reply struct {
		id  string
		err error
	}
	out := make(chan reply, 1)
	s.do(func() {
		item := s.find(id)
		switch {
		case item == nil:
			out <- reply{err: fmt.Errorf("%w: item %s", domain.ErrNotFound, id)}
		case item.Status != domain.StatusCompleted && item.Status != domain.StatusError:
			out <- reply{err: fmt.Errorf("%w: aguarde o item terminar antes de regenerar", domain.ErrValidation)}
		default:
			clone := item.Clone()
			clone.ID = uuid.NewString()
			clone.Timestamp = time.Now().UTC()
			clone.Status = domain.StatusQueued
			clone.ImageKey = ""
			clone.ImageMIME = ""
			clone.ErrorMessage = ""
			clone.IsRegenerated = true
			s.items = append([]*domain.GalleryItem{&clone}, s.items...)
			s.dispatch()
			s.persistChanged()
			out <- reply{id: clone.ID}
		}
	})
	select {
	case r := <-out:
		return r.id, r.err
	case <-s.done:
		return "", context.Canceled
	}
}

// dispatch starts pipelines for queued items while capacity remains. An id
// already in the active set is never started twice.
func (s *Scheduler) dispatch() {
	if s.ctx.Err() != nil {
		return
	}
	for len(s.active) < s.capacity {
		next := s.nextQueued()
		if next == nil {
			return
		}
		next.Status = domain.StatusRendering
		s.active[next.ID] = struct{}{}
		snapshot := next.Clone()
		s.wg.Add(1)
		go s.runJob(snapshot)
		s.logger.Info().Str("item_id", next.ID).Msg("render: item picked")
	}
}

func (s *Scheduler) nextQueued() *domain.GalleryItem {
	for _, item := range s.items {
		if item.Status != domain.StatusQueued {
			continue
		}
		if _, busy := s.active[item.ID]; busy {
			continue
		}
		return item
	}
	return nil
}

func (s *Scheduler) runJob(item domain.GalleryItem) {
	defer s.wg.Done()
	result, err := s.pipeline.Run(s.ctx, item)
	s.do(func() { s.finish(item.ID, result, err) })
}

// finish applies one pipeline outcome. The id always leaves the active set,
// success or failure, which is what unblocks the next queued item.
func (s *Scheduler) finish(id string, result Result, err error) {
	delete(s.active, id)
	item := s.find(id)
	if item != nil {
		if errors.Is(err, context.Canceled) {
			// Interrupted by shutdown, not a pipeline failure. The item
			// goes back to queued so the next start resumes it.
			item.Status = domain.StatusQueued
			s.logger.Info().Str("item_id", id).Msg("render: item interrupted, re-queued")
		} else if err != nil {
			item.Status = domain.StatusError
			item.ErrorMessage = err.Error()
			s.logger.Error().Err(err).Str("item_id", id).Msg("render: item failed")
			s.report("error", "Erro na renderização. A fila continua.")
		} else {
			item.Status = domain.StatusCompleted
			item.Data.PromptPt = result.PromptPt
			item.Data.NegativePt = result.NegativePt
			item.Data.PromptEn = result.PromptEn
			item.Data.NegativeEn = result.NegativeEn
			item.Data.FinalPromptEn = result.FinalPromptEn
			item.ImageKey = result.ImageKey
			item.ImageMIME = result.ImageMIME
			s.logger.Info().Str("item_id", id).Msg("render: item completed")
		}
	}
	s.dispatch()
	s.persistChanged()
}

func (s *Scheduler) find(id string) *domain.GalleryItem {
	for _, item := range s.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (s *Scheduler) persistChanged() {
	if s.persist != nil {
		s.persist()
	}
}

func (s *Scheduler) report(severity, message string) {
	if s.notify != nil {
		s.notify(severity, message)
	}
}
