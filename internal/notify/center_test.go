package notify

import (
	"testing"
	"time"
)

func TestCenterPushAndExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCenter(10, 5*time.Second)
	c.now = func() time.Time { return now }

	c.Push(SeverityInfo, "fila iniciada")
	id := c.Push(SeverityError, "falha na renderização")

	active := c.Active()
	if len(active) != 2 {
		t.Fatalf("active = %d, want 2", len(active))
	}
	if active[0].ID != id {
		t.Error("newest notice is not first")
	}

	now = now.Add(6 * time.Second)
	if active := c.Active(); len(active) != 0 {
		t.Fatalf("active after ttl = %d, want 0", len(active))
	}
}

func TestCenterBounded(t *testing.T) {
	c := NewCenter(3, time.Minute)
	for i := 0; i < 5; i++ {
		c.Push(SeverityInfo, "n")
	}
	if active := c.Active(); len(active) != 3 {
		t.Fatalf("active = %d, want 3", len(active))
	}
}

func TestCenterDismiss(t *testing.T) {
	c := NewCenter(10, time.Minute)
	id := c.Push(SeverityWarning, "nome do produto vazio")
	c.Push(SeveritySuccess, "backup importado")

	c.Dismiss(id)
	c.Dismiss("unknown")

	active := c.Active()
	if len(active) != 1 || active[0].Severity != SeveritySuccess {
		t.Fatalf("active = %+v", active)
	}
}
