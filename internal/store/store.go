// Package store persists raw sheet exports so a failed refresh can fall
// back to the last good copy of a sheet.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a sheet has no stored snapshot.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one successful download of a sheet.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	Sheet     string    `json:"sheet"`
	GID       string    `json:"gid"`
	Body      string    `json:"-"`
	RowCount  int       `json:"rowCount"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// SnapshotStore saves and loads sheet snapshots.
type SnapshotStore interface {
	// Save stores s. A zero ID is replaced with a new UUID.
	Save(ctx context.Context, s Snapshot) (Snapshot, error)

	// Latest returns the newest snapshot of a sheet, or ErrNotFound.
	Latest(ctx context.Context, sheet string) (Snapshot, error)

	// History lists snapshots of a sheet newest first, without bodies.
	// A limit <= 0 returns all of them.
	History(ctx context.Context, sheet string, limit int) ([]Snapshot, error)

	// Prune deletes all but the newest keep snapshots of a sheet.
	Prune(ctx context.Context, sheet string, keep int) (int64, error)

	Close() error
}

// Prepare fills in the ID and normalises the timestamp before a save.
func Prepare(s Snapshot) Snapshot {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.FetchedAt.IsZero() {
		s.FetchedAt = time.Now()
	}
	s.FetchedAt = s.FetchedAt.UTC().Round(0)
	return s
}
