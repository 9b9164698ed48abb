package store

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/opd-ai/voxcore/audio"
)

// silenceChunkFrames bounds the zero block used to pad silence.
const silenceChunkFrames = 1000

var (
	silenceOnce  sync.Once
	silenceChunk []byte
)

func zeroChunk() []byte {
	silenceOnce.Do(func() {
		silenceChunk = make([]byte, audio.SilenceBytes(silenceChunkFrames))
	})
	return silenceChunk
}

// Track is the append-only PCM buffer of one speaker.
type Track struct {
	mu      sync.Mutex
	userID  uint64
	mode    Mode
	path    string
	file    *os.File
	writer  *bufio.Writer
	buf     bytes.Buffer
	size    int64
	leading *int
	removed bool
}

func newMemoryTrack(userID uint64) *Track {
	return &Track{userID: userID, mode: ModeMemory}
}

func newFileTrack(userID uint64, path string) (*Track, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%w: %s", ErrTrackExists, path)
	}
	if err != nil {
		return nil, fmt.Errorf("create track file: %w", err)
	}
	return &Track{
		userID: userID,
		mode:   ModeFile,
		path:   path,
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
	}, nil
}

// UserID returns the speaker that owns the track.
func (t *Track) UserID() uint64 {
	return t.userID
}

// Mode returns the backing kind.
func (t *Track) Mode() Mode {
	return t.mode
}

// Path returns the temporary file path, empty in memory mode.
func (t *Track) Path() string {
	return t.path
}

// Size returns the PCM byte count written so far.
func (t *Track) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// LeadingSilence returns the deferred leading silence in silence units,
// or nil when the speaker was present from the session start.
func (t *Track) LeadingSilence() *int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.leading == nil {
		return nil
	}
	v := *t.leading
	return &v
}

func (t *Track) setLeadingSilence(frames int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leading = &frames
}

// write appends silenceFrames units of zeroed PCM followed by pcm.
func (t *Track) write(silenceFrames int, pcm []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.removed {
		return ErrTrackRemoved
	}
	if t.mode == ModeFile && t.writer == nil {
		return ErrStoreFinalized
	}

	remaining := audio.SilenceBytes(silenceFrames)
	zero := zeroChunk()
	for remaining > 0 {
		n := remaining
		if n > len(zero) {
			n = len(zero)
		}
		if err := t.append(zero[:n]); err != nil {
			return err
		}
		remaining -= n
	}

	if len(pcm) == 0 {
		return nil
	}
	return t.append(pcm)
}

func (t *Track) append(data []byte) error {
	var err error
	if t.mode == ModeFile {
		_, err = t.writer.Write(data)
	} else {
		_, err = t.buf.Write(data)
	}
	if err != nil {
		return fmt.Errorf("write track %d: %w", t.userID, err)
	}
	t.size += int64(len(data))
	return nil
}

// flush pushes buffered bytes to the file. Caller holds t.mu.
func (t *Track) flush() error {
	if t.writer == nil {
		return nil
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("flush track %d: %w", t.userID, err)
	}
	return nil
}

// finalize flushes and closes the write handle.
func (t *Track) finalize() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.flush()
	if cerr := t.file.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close track %d: %w", t.userID, cerr)
	}
	t.file = nil
	t.writer = nil
	return err
}

// Open returns a reader over the PCM written so far.
func (t *Track) Open() (io.ReadCloser, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.removed {
		return nil, ErrTrackRemoved
	}
	if t.mode == ModeMemory {
		return io.NopCloser(bytes.NewReader(t.buf.Bytes())), nil
	}
	if err := t.flush(); err != nil {
		return nil, err
	}
	file, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("open track %d: %w", t.userID, err)
	}
	return file, nil
}

// Bytes returns the PCM written so far. In memory mode the returned slice
// aliases the track buffer and must not be modified.
func (t *Track) Bytes() ([]byte, error) {
	t.mu.Lock()
	if t.mode == ModeMemory {
		defer t.mu.Unlock()
		if t.removed {
			return nil, ErrTrackRemoved
		}
		return t.buf.Bytes(), nil
	}
	t.mu.Unlock()

	r, err := t.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Remove deletes the backing store. Calling it twice is a no-op.
func (t *Track) Remove() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.removed {
		return nil
	}
	t.removed = true
	t.buf = bytes.Buffer{}

	if t.mode != ModeFile {
		return nil
	}
	if t.file != nil {
		_ = t.file.Close()
		t.file = nil
		t.writer = nil
	}
	if err := os.Remove(t.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove track %d: %w", t.userID, err)
	}
	return nil
}

// Removed reports whether the backing store was deleted.
func (t *Track) Removed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removed
}
