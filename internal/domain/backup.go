package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BackupVersion tags exported payloads; imports accept this version only.
const BackupVersion = "6.0"

// BackupPayload is the single-file export/import boundary.
type BackupPayload struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Presets    []Preset          `json:"presets"`
	Ambiences  []Ambience        `json:"ambiences"`
	History    []HistoryMetadata `json:"history"`
	Draft      *FormData         `json:"currentDraft,omitempty"`
}

// ParseBackup decodes and validates a backup payload. A malformed payload
// returns ErrInvalidBackup and must leave the caller's state untouched.
func ParseBackup(data []byte) (*BackupPayload, error) {
	var payload BackupPayload
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if payload.Version != BackupVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidBackup, payload.Version)
	}
	if payload.ExportedAt.IsZero() {
		return nil, fmt.Errorf("%w: missing export timestamp", ErrInvalidBackup)
	}
	if payload.Presets == nil || payload.Ambiences == nil || payload.History == nil {
		return nil, fmt.Errorf("%w: missing collections", ErrInvalidBackup)
	}
	for i, amb := range payload.Ambiences {
		if strings.TrimSpace(amb.ID) == "" || strings.TrimSpace(amb.Title) == "" {
			return nil, fmt.Errorf("%w: ambience %d lacks id or title", ErrInvalidBackup, i)
		}
	}
	for i, p := range payload.Presets {
		if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("%w: preset %d lacks id or name", ErrInvalidBackup, i)
		}
	}
	return &payload, nil
}
