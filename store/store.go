package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// TempDirName is the directory under the working dir holding track files.
const TempDirName = ".rectmps"

// Mode selects the backing of every track in a store.
type Mode uint8

const (
	// ModeFile backs tracks with temporary files.
	ModeFile Mode = iota
	// ModeMemory backs tracks with in-memory buffers.
	ModeMemory
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeMemory {
		return "memory"
	}
	return "file"
}

// ParseMode maps "file" or "memory" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file", "":
		return ModeFile, nil
	case "memory", "mem":
		return ModeMemory, nil
	}
	return ModeFile, fmt.Errorf("unknown storage mode %q", s)
}

// Config configures a Store.
type Config struct {
	Mode       Mode
	WorkingDir string
	GuildID    uint64
	// MinFreeBytes refuses file-mode stores when the working directory has
	// less space available. Zero disables the check.
	MinFreeBytes uint64
}

// TempDir returns the track directory for a working dir.
func TempDir(workingDir string) string {
	return filepath.Join(workingDir, TempDirName)
}

// TrackPath returns the temporary file path of one speaker.
func TrackPath(workingDir string, guildID, userID uint64) string {
	name := strconv.FormatUint(guildID, 10) + "." + strconv.FormatUint(userID, 10) + ".tmp"
	return filepath.Join(TempDir(workingDir), name)
}

// Purge removes the track directory of a working dir and everything in it.
func Purge(workingDir string) error {
	if err := os.RemoveAll(TempDir(workingDir)); err != nil {
		return fmt.Errorf("purge %s: %w", TempDir(workingDir), err)
	}
	return nil
}

// Store holds one Track per speaker.
type Store struct {
	mu                sync.RWMutex
	config            Config
	tracks            map[uint64]*Track
	dirReady          bool
	finalized         bool
	exportUnavailable bool
}

// New creates an empty store.
func New(config Config) (*Store, error) {
	if config.WorkingDir == "" {
		config.WorkingDir = "."
	}

	if config.Mode == ModeFile && config.MinFreeBytes > 0 {
		space, err := CheckDiskSpace(config.WorkingDir)
		if err != nil {
			return nil, err
		}
		if space.AvailableBytes < config.MinFreeBytes {
			return nil, fmt.Errorf("%w: %d bytes available, %d required",
				ErrInsufficientSpace, space.AvailableBytes, config.MinFreeBytes)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":    "store.New",
		"mode":        config.Mode.String(),
		"working_dir": config.WorkingDir,
		"guild_id":    config.GuildID,
	}).Debug("Audio store created")

	return &Store{
		config: config,
		tracks: make(map[uint64]*Track),
	}, nil
}

// Config returns the store configuration.
func (s *Store) Config() Config {
	return s.config
}

// Mode returns the backing kind of the store's tracks.
func (s *Store) Mode() Mode {
	return s.config.Mode
}

// Track returns the track of userID, creating it on first use.
func (s *Store) Track(userID uint64) (*Track, error) {
	s.mu.RLock()
	t, ok := s.tracks[userID]
	finalized := s.finalized
	s.mu.RUnlock()
	if ok {
		return t, nil
	}
	if finalized {
		return nil, ErrStoreFinalized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tracks[userID]; ok {
		return t, nil
	}
	if s.finalized {
		return nil, ErrStoreFinalized
	}

	if s.config.Mode == ModeMemory {
		t = newMemoryTrack(userID)
	} else {
		if !s.dirReady {
			if err := os.MkdirAll(TempDir(s.config.WorkingDir), 0o755); err != nil {
				return nil, fmt.Errorf("create temp dir: %w", err)
			}
			s.dirReady = true
		}
		var err error
		t, err = newFileTrack(userID, TrackPath(s.config.WorkingDir, s.config.GuildID, userID))
		if err != nil {
			return nil, err
		}
	}
	s.tracks[userID] = t

	logrus.WithFields(logrus.Fields{
		"function": "Store.Track",
		"user_id":  userID,
		"mode":     s.config.Mode.String(),
		"path":     t.path,
	}).Debug("Track created")

	return t, nil
}

// Get returns the track of userID without creating it.
func (s *Store) Get(userID uint64) (*Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tracks[userID]
	return t, ok
}

// UserIDs returns every user id with a track, ascending.
func (s *Store) UserIDs() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint64, 0, len(s.tracks))
	for id := range s.tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of tracks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// Write appends silenceFrames units of silence and then pcm to the track
// of userID.
func (s *Store) Write(userID uint64, silenceFrames int, pcm []byte) error {
	if s.Finalized() {
		return ErrStoreFinalized
	}
	t, err := s.Track(userID)
	if err != nil {
		return err
	}
	return t.write(silenceFrames, pcm)
}

// SetLeadingSilence records the deferred leading silence of userID.
func (s *Store) SetLeadingSilence(userID uint64, frames int) error {
	if s.Finalized() {
		return ErrStoreFinalized
	}
	t, err := s.Track(userID)
	if err != nil {
		return err
	}
	t.setLeadingSilence(frames)
	return nil
}

// ApplyFilter deletes the tracks of every excluded user and returns their
// ids so the caller can forget their speaker clocks.
func (s *Store) ApplyFilter(filter *Filter) []uint64 {
	if filter.Len() == 0 {
		return nil
	}

	s.mu.Lock()
	var removed []uint64
	var victims []*Track
	for id, t := range s.tracks {
		if filter.Contains(id) {
			removed = append(removed, id)
			victims = append(victims, t)
			delete(s.tracks, id)
		}
	}
	s.mu.Unlock()

	for _, t := range victims {
		if err := t.Remove(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "ApplyFilter",
				"user_id":  t.userID,
				"error":    err.Error(),
			}).Warn("Failed to delete filtered track")
		}
	}

	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed
}

// Finalize flushes every track and makes the store read-only.
func (s *Store) Finalize() error {
	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return nil
	}
	s.finalized = true
	tracks := make([]*Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		tracks = append(tracks, t)
	}
	s.mu.Unlock()

	var errs []error
	for _, t := range tracks {
		if err := t.finalize(); err != nil {
			errs = append(errs, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "Finalize",
		"tracks":   len(tracks),
	}).Info("Audio store finalized")

	return errors.Join(errs...)
}

// Finalized reports whether Finalize was called.
func (s *Store) Finalized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finalized
}

// MarkExportUnavailable flags a snapshot whose frames bypassed recording.
func (s *Store) MarkExportUnavailable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exportUnavailable = true
}

// ExportUnavailable reports whether the snapshot cannot be exported.
func (s *Store) ExportUnavailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exportUnavailable
}

// Live reports whether any file track of the store still exists on disk.
// A new recording in the same working dir would collide with it.
func (s *Store) Live() bool {
	if s.config.Mode != ModeFile {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tracks {
		if !t.Removed() {
			return true
		}
	}
	return false
}

// Remove deletes the track of userID.
func (s *Store) Remove(userID uint64) error {
	s.mu.Lock()
	t, ok := s.tracks[userID]
	delete(s.tracks, userID)
	s.mu.Unlock()
	if !ok {
		return ErrTrackNotFound
	}
	return t.Remove()
}

// Discard deletes every track's backing store. The store is finalized.
func (s *Store) Discard() error {
	s.mu.Lock()
	s.finalized = true
	tracks := s.tracks
	s.tracks = make(map[uint64]*Track)
	s.mu.Unlock()

	var errs []error
	for _, t := range tracks {
		if err := t.Remove(); err != nil {
			errs = append(errs, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "Discard",
		"tracks":   len(tracks),
	}).Info("Audio store discarded")

	return errors.Join(errs...)
}
