package store

import "errors"

var (
	// ErrStoreFinalized indicates a write after the session stopped.
	ErrStoreFinalized = errors.New("store is finalized")

	// ErrTrackNotFound indicates an unknown user id.
	ErrTrackNotFound = errors.New("track not found")

	// ErrTrackExists indicates a track file left by another recording of the
	// same guild and user. It is never overwritten.
	ErrTrackExists = errors.New("track file already exists")

	// ErrTrackRemoved indicates a read from a track whose backing was deleted.
	ErrTrackRemoved = errors.New("track backing removed")

	// ErrExportUnavailable indicates a snapshot recorded with a bypassing
	// pipeline tap. Its tracks do not hold the session audio.
	ErrExportUnavailable = errors.New("export unavailable: recording was bypassed")

	// ErrInsufficientSpace indicates the working directory is below the
	// configured free-space floor.
	ErrInsufficientSpace = errors.New("insufficient disk space")
)
