package export

import (
	"errors"

	"github.com/opd-ai/voxcore/store"
)

var (
	// ErrEncoderUnavailable indicates the external encoder executable is missing.
	ErrEncoderUnavailable = errors.New("audio encoder unavailable")

	// ErrEncoderFailed indicates the encoder exited with a failure status.
	ErrEncoderFailed = errors.New("audio encoder failed")

	// ErrExportUnavailable indicates a snapshot recorded with a bypassing tap.
	ErrExportUnavailable = store.ErrExportUnavailable

	// ErrUnknownFormat indicates an unsupported format name.
	ErrUnknownFormat = errors.New("unknown export format")

	// ErrFileClosed indicates a read from a closed AudioFile.
	ErrFileClosed = errors.New("audio file closed")
)
