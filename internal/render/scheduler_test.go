package render

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

// stubPipeline blocks every Run until the test releases it, which lets the
// tests freeze the scheduler mid-flight and inspect the queue.
type stubPipeline struct {
	started chan string
	release chan struct{}
	fail    map[string]error

	mu         sync.Mutex
	running    int
	maxRunning int
}

func newStubPipeline() *stubPipeline {
	return &stubPipeline{
		started: make(chan string),
		release: make(chan struct{}),
		fail:    make(map[string]error),
	}
}

func (p *stubPipeline) Run(_ context.Context, item domain.GalleryItem) (Result, error) {
	p.mu.Lock()
	p.running++
	if p.running > p.maxRunning {
		p.maxRunning = p.running
	}
	p.mu.Unlock()

	p.started <- item.ID
	<-p.release

	p.mu.Lock()
	p.running--
	p.mu.Unlock()

	if err := p.fail[item.ID]; err != nil {
		return Result{}, err
	}
	return Result{
		FinalPromptEn: "final " + item.ID,
		ImageKey:      "rendered/" + item.ID + "/art.png",
		ImageMIME:     "image/png",
	}, nil
}

func (p *stubPipeline) awaitStart(t *testing.T) string {
	t.Helper()
	select {
	case id := <-p.started:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("no pipeline run started")
		return ""
	}
}

func newTestScheduler(t *testing.T, pipeline *stubPipeline, capacity int, notify func(string, string)) (*Scheduler, *int32) {
	t.Helper()
	var persists int32
	s := New(Options{
		MaxConcurrency: capacity,
		Pipeline:       pipeline,
		Persist:        func() { atomic.AddInt32(&persists, 1) },
		Notify:         notify,
		Logger:         zerolog.Nop(),
	})
	t.Cleanup(func() {
		close(pipeline.release)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	return s, &persists
}

func itemWithStatus(id string, status domain.ItemStatus) domain.GalleryItem {
	form := domain.NewFormData()
	form.ProductName = "Caneca"
	variant := domain.GeneratedPrompt{PromptPt: "Caneca sobre mesa"}
	item := domain.NewGalleryItem(id, time.Now().UTC(), form, variant, status)
	return item
}

func findItem(t *testing.T, s *Scheduler, id string) domain.GalleryItem {
	t.Helper()
	for _, item := range s.Items() {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("item %s not found", id)
	return domain.GalleryItem{}
}

func waitStatus(t *testing.T, s *Scheduler, id string, want domain.ItemStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, item := range s.Items() {
			if item.ID == id && item.Status == want {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("item %s never reached %s", id, want)
}

func TestSchedulerConcurrencyCap(t *testing.T) {
	pipeline := newStubPipeline()
	s, _ := newTestScheduler(t, pipeline, 1, nil)
	s.Start(nil)

	s.Enqueue([]domain.GalleryItem{
		itemWithStatus("a", domain.StatusQueued),
		itemWithStatus("b", domain.StatusQueued),
	})

	if got := pipeline.awaitStart(t); got != "a" {
		t.Fatalf("first dispatched item = %q, want a", got)
	}
	if item := findItem(t, s, "b"); item.Status != domain.StatusQueued {
		t.Fatalf("second item status = %s while first renders, want queued", item.Status)
	}

	pipeline.release <- struct{}{}
	if got := pipeline.awaitStart(t); got != "b" {
		t.Fatalf("second dispatched item = %q, want b", got)
	}
	pipeline.release <- struct{}{}

	waitStatus(t, s, "a", domain.StatusCompleted)
	waitStatus(t, s, "b", domain.StatusCompleted)

	if pipeline.maxRunning != 1 {
		t.Errorf("max concurrent runs = %d, want 1", pipeline.maxRunning)
	}
	if item := findItem(t, s, "a"); item.ImageKey != "rendered/a/art.png" {
		t.Errorf("completed item image key = %q", item.ImageKey)
	}
}

func TestSchedulerBatchPrepend(t *testing.T) {
	pipeline := newStubPipeline()
	s, _ := newTestScheduler(t, pipeline, 1, nil)
	s.Start([]domain.GalleryItem{itemWithStatus("old", domain.StatusCompleted)})

	s.Enqueue([]domain.GalleryItem{
		itemWithStatus("a", domain.StatusDraft),
		itemWithStatus("b", domain.StatusDraft),
	})

	items := s.Items()
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[0].ID != "a" || items[1].ID != "b" || items[2].ID != "old" {
		t.Errorf("order = [%s %s %s], want new batch first in its own order", items[0].ID, items[1].ID, items[2].ID)
	}
}

func TestSchedulerStartResumesInterruptedRenders(t *testing.T) {
	pipeline := newStubPipeline()
	s, _ := newTestScheduler(t, pipeline, 1, nil)
	s.Start([]domain.GalleryItem{itemWithStatus("stale", domain.StatusRendering)})

	if got := pipeline.awaitStart(t); got != "stale" {
		t.Fatalf("dispatched = %q, want the interrupted item", got)
	}
	pipeline.release <- struct{}{}
	waitStatus(t, s, "stale", domain.StatusCompleted)
}

func TestSchedulerQueueAll(t *testing.T) {
	pipeline := newStubPipeline()
	s, persists := newTestScheduler(t, pipeline, 1, nil)
	s.Start([]domain.GalleryItem{
		itemWithStatus("d1", domain.StatusDraft),
		itemWithStatus("d2", domain.StatusDraft),
		itemWithStatus("done", domain.StatusCompleted),
	})

	if moved := s.QueueAll(); moved != 2 {
		t.Fatalf("QueueAll moved %d, want 2", moved)
	}
	pipeline.awaitStart(t)
	pipeline.release <- struct{}{}
	pipeline.awaitStart(t)
	pipeline.release <- struct{}{}
	waitStatus(t, s, "d1", domain.StatusCompleted)
	waitStatus(t, s, "d2", domain.StatusCompleted)
	if atomic.LoadInt32(persists) == 0 {
		t.Error("persist trigger never fired")
	}
}

func TestSchedulerRetryRules(t *testing.T) {
	pipeline := newStubPipeline()
	s, _ := newTestScheduler(t, pipeline, 1, nil)
	failed := itemWithStatus("bad", domain.StatusError)
	failed.ErrorMessage = "quota"
	s.Start([]domain.GalleryItem{
		failed,
		itemWithStatus("done", domain.StatusCompleted),
	})

	if err := s.Retry("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("retry unknown id: err = %v, want ErrNotFound", err)
	}
	if err := s.Retry("done"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("retry completed item: err = %v, want ErrValidation", err)
	}

	if err := s.Retry("bad"); err != nil {
		t.Fatalf("retry failed item: %v", err)
	}
	if got := pipeline.awaitStart(t); got != "bad" {
		t.Fatalf("dispatched = %q, want the retried item", got)
	}
	if err := s.Retry("bad"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("retry rendering item: err = %v, want ErrValidation", err)
	}
	pipeline.release <- struct{}{}
	waitStatus(t, s, "bad", domain.StatusCompleted)
	if item := findItem(t, s, "bad"); item.ErrorMessage != "" {
		t.Errorf("error message survived a successful retry: %q", item.ErrorMessage)
	}
}

func TestSchedulerRegenerate(t *testing.T) {
	pipeline := newStubPipeline()
	s, _ := newTestScheduler(t, pipeline, 1, nil)
	done := itemWithStatus("done", domain.StatusCompleted)
	done.ImageKey = "rendered/done/art.png"
	done.ImageMIME = "image/png"
	s.Start([]domain.GalleryItem{done})

	newID, err := s.Regenerate("done")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if newID == "done" || newID == "" {
		t.Fatalf("new id = %q, want a fresh id", newID)
	}

	items := s.Items()
	if items[0].ID != newID {
		t.Error("regenerated clone was not prepended")
	}
	clone := findItem(t, s, newID)
	if !clone.IsRegenerated {
		t.Error("clone is not marked as regenerated")
	}
	if clone.ImageKey != "" || clone.ErrorMessage != "" {
		t.Error("clone kept the source image or error state")
	}
	if !reflect.DeepEqual(clone.CreationSettings, items[len(items)-1].CreationSettings) {
		t.Error("clone creation settings differ from the source snapshot")
	}
	if src := findItem(t, s, "done"); src.Status != domain.StatusCompleted || src.ImageKey == "" {
		t.Error("source item was mutated by regeneration")
	}

	if got := pipeline.awaitStart(t); got != newID {
		t.Fatalf("dispatched = %q, want the clone", got)
	}
	if _, err := s.Regenerate(newID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("regenerate rendering item: err = %v, want ErrValidation", err)
	}
	pipeline.release <- struct{}{}
	waitStatus(t, s, newID, domain.StatusCompleted)
}

func TestSchedulerErrorIsolation(t *testing.T) {
	pipeline := newStubPipeline()
	pipeline.fail["a"] = errors.New("synthesize image: quota exceeded")

	var mu sync.Mutex
	var notices []string
	notify := func(severity, _ string) {
		mu.Lock()
		notices = append(notices, severity)
		mu.Unlock()
	}
	s, _ := newTestScheduler(t, pipeline, 1, notify)
	s.Start(nil)

	s.Enqueue([]domain.GalleryItem{
		itemWithStatus("a", domain.StatusQueued),
		itemWithStatus("b", domain.StatusQueued),
	})

	pipeline.awaitStart(t)
	pipeline.release <- struct{}{}
	pipeline.awaitStart(t)
	pipeline.release <- struct{}{}

	waitStatus(t, s, "a", domain.StatusError)
	waitStatus(t, s, "b", domain.StatusCompleted)

	if item := findItem(t, s, "a"); item.ErrorMessage == "" {
		t.Error("failed item has no error message")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(notices) == 0 || notices[0] != "error" {
		t.Errorf("notices = %v, want an error notice", notices)
	}
}

func TestSchedulerCloseAppliesInFlightOutcome(t *testing.T) {
	pipeline := newStubPipeline()
	var persists int32
	s := New(Options{
		Pipeline: pipeline,
		Persist:  func() { atomic.AddInt32(&persists, 1) },
		Logger:   zerolog.Nop(),
	})
	s.Start([]domain.GalleryItem{itemWithStatus("a", domain.StatusQueued)})
	pipeline.awaitStart(t)

	closed := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		closed <- s.Close(ctx)
	}()
	close(pipeline.release)
	if err := <-closed; err != nil {
		t.Fatalf("close: %v", err)
	}

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("post-close snapshot has %d items, want 1", len(items))
	}
	if items[0].Status != domain.StatusCompleted {
		t.Errorf("item status = %s, want completed", items[0].Status)
	}
	if items[0].ImageKey == "" {
		t.Error("drained item has no image key")
	}
	if atomic.LoadInt32(&persists) == 0 {
		t.Error("no persist was triggered for the drained outcome")
	}
}

// ctxBoundPipeline runs until its context is canceled, as a real render
// interrupted by shutdown would.
type ctxBoundPipeline struct {
	started chan string
}

func (p *ctxBoundPipeline) Run(ctx context.Context, item domain.GalleryItem) (Result, error) {
	p.started <- item.ID
	<-ctx.Done()
	return Result{}, ctx.Err()
}

func TestSchedulerCloseRequeuesInterruptedRender(t *testing.T) {
	pipeline := &ctxBoundPipeline{started: make(chan string)}
	var mu sync.Mutex
	var notices []string
	s := New(Options{
		Pipeline: pipeline,
		Notify: func(severity, _ string) {
			mu.Lock()
			notices = append(notices, severity)
			mu.Unlock()
		},
		Logger: zerolog.Nop(),
	})
	s.Start([]domain.GalleryItem{itemWithStatus("a", domain.StatusQueued)})
	<-pipeline.started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("post-close snapshot has %d items, want 1", len(items))
	}
	if items[0].Status != domain.StatusQueued {
		t.Errorf("interrupted item status = %s, want queued", items[0].Status)
	}
	if items[0].ErrorMessage != "" {
		t.Errorf("interrupted item carries error %q", items[0].ErrorMessage)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(notices) != 0 {
		t.Errorf("notices = %v, want none for a shutdown interruption", notices)
	}
}
