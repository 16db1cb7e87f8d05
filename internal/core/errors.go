package core

import "errors"

var (
	// ErrSheetNotFound is returned for a sheet name that is not registered.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrTabOutOfRange is returned for a tab index outside the sheet list.
	ErrTabOutOfRange = errors.New("tab out of range")

	// ErrNotLoaded is returned when a query runs before the first refresh.
	ErrNotLoaded = errors.New("no sheets loaded")

	// ErrSnapshotNotFound is returned when no stored copy of a sheet exists.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrNoSnapshotStore is returned by history queries when snapshots are disabled.
	ErrNoSnapshotStore = errors.New("snapshot history disabled")
)
