// Package notify keeps the short-lived user notices produced by commands
// and background renders. Notices expire on their own; they are feedback,
// not an audit log.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notice is one transient message shown to the user.
type Notice struct {
	ID        string    `json:"id"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Center is a bounded, mutex-guarded notice buffer. Oldest notices fall off
// when the buffer is full or their TTL passes.
type Center struct {
	mu      sync.Mutex
	notices []Notice
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// NewCenter builds a center keeping at most max notices for ttl each.
// Non-positive arguments select the defaults of 50 notices and 6 seconds.
func NewCenter(max int, ttl time.Duration) *Center {
	if max <= 0 {
		max = 50
	}
	if ttl <= 0 {
		ttl = 6 * time.Second
	}
	return &Center{ttl: ttl, max: max, now: time.Now}
}

// Push records a notice and returns its id.
func (c *Center) Push(severity, message string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	notice := Notice{
		ID:        uuid.NewString(),
		Severity:  severity,
		Message:   message,
		CreatedAt: c.now().UTC(),
	}
	c.notices = append(c.notices, notice)
	if len(c.notices) > c.max {
		c.notices = c.notices[len(c.notices)-c.max:]
	}
	return notice.ID
}

// Active returns the live notices, newest first.
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	out := make([]Notice, 0, len(c.notices))
	for i := len(c.notices) - 1; i >= 0; i-- {
		out = append(out, c.notices[i])
	}
	return out
}

// Dismiss drops one notice by id. Unknown ids are ignored.
func (c *Center) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, notice := range c.notices {
		if notice.ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			return
		}
	}
}

func (c *Center) pruneLocked() {
	cutoff := c.now().Add(-c.ttl)
	kept := c.notices[:0]
	for _, notice := range c.notices {
		if notice.CreatedAt.After(cutoff) {
			kept = append(kept, notice)
		}
	}
	c.notices = kept
}
