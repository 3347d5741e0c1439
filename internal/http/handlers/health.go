package handlers

import (
	"net/http"

	"studio/internal/domain"
)

// Health reports liveness plus a per-status count of the gallery so
// operators can see queue depth at a glance.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	counts := map[domain.ItemStatus]int{}
	if a.Scheduler != nil {
		for _, item := range a.Scheduler.Items() {
			counts[item.Status]++
		}
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"gallery": counts,
	})
}
