package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/opd-ai/voxcore/audio"
	"github.com/opd-ai/voxcore/store"
)

// AudioFile is the exported audio of one speaker.
type AudioFile struct {
	UserID uint64
	Format Format
	// LeadingSilence is the deferred silence, in silence units, to place
	// before this track when aligning it with the others. Nil means the
	// speaker was present from the session start.
	LeadingSilence *int
	// Path is the exported file in file mode, empty in memory mode.
	Path string

	mu     sync.Mutex
	data   []byte
	track  *store.Track
	closed bool
}

// Reader returns a reader over the exported audio.
func (f *AudioFile) Reader() (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrFileClosed
	}
	if f.Path == "" {
		return io.NopCloser(bytes.NewReader(f.data)), nil
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	return file, nil
}

// Bytes returns the exported audio.
func (f *AudioFile) Bytes() ([]byte, error) {
	r, err := f.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// LeadingSilenceBytes returns the length of zeroed PCM corresponding to
// LeadingSilence.
func (f *AudioFile) LeadingSilenceBytes() int {
	if f.LeadingSilence == nil {
		return 0
	}
	return audio.SilenceBytes(*f.LeadingSilence)
}

// Close deletes the exported file and the recorded track behind it.
// Calling Close again is a no-op.
func (f *AudioFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	f.data = nil

	var errs []error
	if f.track != nil {
		if err := f.track.Remove(); err != nil {
			errs = append(errs, err)
		}
	}
	if f.Path != "" {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove export: %w", err))
		}
	}
	return errors.Join(errs...)
}

// discardOutput deletes the exported artifact but keeps the recorded track.
func (f *AudioFile) discardOutput() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.data = nil
	if f.Path != "" && (f.track == nil || f.Path != f.track.Path()) {
		_ = os.Remove(f.Path)
	}
}
