package handlers

import (
	"io"
	"net/http"

	"studio/internal/notify"
)

// ExportBackup serializes the workspace as a downloadable payload.
func (a *App) ExportBackup(w http.ResponseWriter, r *http.Request) {
	payload, err := a.Backup.Export(r.Context())
	if err != nil {
		a.fail(w, err, "export failed")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="studio-backup.json"`)
	a.json(w, http.StatusOK, payload)
}

// ImportBackup validates and applies an uploaded payload. A malformed file
// is rejected without touching stored state.
func (a *App) ImportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 64<<20))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unable to read payload")
		return
	}
	if err := a.Backup.Import(r.Context(), data); err != nil {
		a.notice(notify.SeverityError, "Backup inválido. Nada foi alterado.")
		a.fail(w, err, "import failed")
		return
	}
	a.notice(notify.SeveritySuccess, "Backup importado.")
	a.json(w, http.StatusOK, map[string]string{"status": "imported"})
}
