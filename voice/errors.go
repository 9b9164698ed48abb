package voice

import (
	"errors"

	"github.com/opd-ai/voxcore/store"
)

// Session state errors.
var (
	// ErrAlreadyRecording indicates Start, or a filter change, on an active session.
	ErrAlreadyRecording = errors.New("already recording")

	// ErrNotRecording indicates Pause, Resume or Stop on an inactive session.
	ErrNotRecording = errors.New("not recording")

	// ErrNotConnected indicates Start before the voice connection is ready.
	ErrNotConnected = errors.New("voice connection not ready")

	// ErrSnapshotInUse indicates Start while the previous file-mode snapshot
	// still holds track files. Close its exports or Discard it first.
	ErrSnapshotInUse = errors.New("previous recording still holds track files")
)

// Configuration errors.
var (
	// ErrMultipleHandlers indicates a tap configuration naming more than one stage.
	ErrMultipleHandlers = errors.New("multiple tap handlers configured")

	// ErrInvalidOptions indicates unusable session options.
	ErrInvalidOptions = errors.New("invalid session options")

	// ErrExportUnavailable indicates a snapshot recorded with a bypassing tap.
	ErrExportUnavailable = store.ErrExportUnavailable
)
