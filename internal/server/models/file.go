// Package models defines server-side data models persisted in the database.
package models

import "time"

// FileStatus tracks a file's progress through the ingestion pipeline.
type FileStatus string

const (
	// StatusLoaded — metadata persisted, bytes not yet in object storage.
	StatusLoaded FileStatus = "LOADED"
	// StatusStored — bytes written to the plain namespace.
	StatusStored FileStatus = "STORED"
	// StatusZipped — compressed artifact available; file is downloadable.
	StatusZipped FileStatus = "ZIPPED"
	// StatusFailed — terminal failure; the record is removed right after.
	StatusFailed FileStatus = "FAILED"
)

// Valid reports whether s is one of the known statuses.
func (s FileStatus) Valid() bool {
	switch s {
	case StatusLoaded, StatusStored, StatusZipped, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further automatic transition leaves s.
func (s FileStatus) Terminal() bool {
	return s == StatusZipped || s == StatusFailed
}

// CanTransition reports whether the pipeline may move a file from s to next.
// Same-state updates are allowed so redelivered jobs stay idempotent.
func (s FileStatus) CanTransition(next FileStatus) bool {
	if s == next {
		return s != StatusFailed
	}
	switch s {
	case StatusLoaded:
		return next == StatusStored || next == StatusFailed
	case StatusStored:
		return next == StatusZipped || next == StatusFailed
	}
	return false
}

// File describes the metadata record for one uploaded file name. Several
// records may share a ContentHash: identical bytes are stored once and
// referenced by every name pointing at them.
type File struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ContentHash string     `json:"md5"`
	Status      FileStatus `json:"status"`
	Size        *int64     `json:"size"`
	OwnerID     *string    `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
