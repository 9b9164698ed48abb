package store

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voxcore/audio"
)

func newStore(t *testing.T, mode Mode) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(Config{Mode: mode, WorkingDir: dir, GuildID: 42})
	require.NoError(t, err)
	return s, dir
}

func TestWriteSilenceThenPCM(t *testing.T) {
	for _, mode := range []Mode{ModeFile, ModeMemory} {
		t.Run(mode.String(), func(t *testing.T) {
			s, _ := newStore(t, mode)
			pcm := bytes.Repeat([]byte{0x11}, audio.FrameBytes)

			require.NoError(t, s.Write(7, 2, pcm))
			require.NoError(t, s.Finalize())

			track, ok := s.Get(7)
			require.True(t, ok)
			data, err := track.Bytes()
			require.NoError(t, err)

			silence := audio.SilenceBytes(2)
			require.Len(t, data, silence+len(pcm))
			assert.Equal(t, make([]byte, silence), data[:silence])
			assert.Equal(t, pcm, data[silence:])
			assert.Equal(t, int64(len(data)), track.Size())
		})
	}
}

func TestLargeSilenceIsChunked(t *testing.T) {
	s, _ := newStore(t, ModeMemory)

	frames := silenceChunkFrames*2 + 3
	require.NoError(t, s.Write(1, frames, nil))

	track, _ := s.Get(1)
	assert.Equal(t, int64(audio.SilenceBytes(frames)), track.Size())
	assert.Len(t, zeroChunk(), audio.SilenceBytes(silenceChunkFrames))
}

func TestFileLayout(t *testing.T) {
	s, dir := newStore(t, ModeFile)

	_, err := os.Stat(TempDir(dir))
	assert.True(t, errors.Is(err, os.ErrNotExist), "temp dir is created lazily")

	require.NoError(t, s.Write(99, 0, []byte{1, 2, 3, 4}))
	track, _ := s.Get(99)

	want := filepath.Join(dir, ".rectmps", "42.99.tmp")
	assert.Equal(t, want, track.Path())
	assert.Equal(t, want, TrackPath(dir, 42, 99))

	require.NoError(t, s.Finalize())
	info, err := os.Stat(want)
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.Size())
}

func TestLeadingSilence(t *testing.T) {
	s, _ := newStore(t, ModeMemory)

	require.NoError(t, s.Write(1, 0, []byte{0, 0}))
	track, _ := s.Get(1)
	assert.Nil(t, track.LeadingSilence())

	require.NoError(t, s.SetLeadingSilence(2, 8))
	track, _ = s.Get(2)
	require.NotNil(t, track.LeadingSilence())
	assert.Equal(t, 8, *track.LeadingSilence())
}

func TestFinalizedRejectsWrites(t *testing.T) {
	s, _ := newStore(t, ModeFile)
	require.NoError(t, s.Write(1, 0, []byte{1, 2}))
	require.NoError(t, s.Finalize())
	require.NoError(t, s.Finalize())

	assert.ErrorIs(t, s.Write(1, 0, []byte{3}), ErrStoreFinalized)
	assert.ErrorIs(t, s.Write(2, 0, []byte{3}), ErrStoreFinalized)
	assert.ErrorIs(t, s.SetLeadingSilence(1, 2), ErrStoreFinalized)
	assert.True(t, s.Finalized())
}

func TestApplyFilter(t *testing.T) {
	s, _ := newStore(t, ModeFile)
	for _, id := range []uint64{1, 2, 3} {
		require.NoError(t, s.Write(id, 0, []byte{1, 1}))
	}
	victim, _ := s.Get(2)
	path := victim.Path()

	removed := s.ApplyFilter(NewFilter(2, 5))
	assert.Equal(t, []uint64{2}, removed)
	assert.Equal(t, []uint64{1, 3}, s.UserIDs())

	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.True(t, victim.Removed())

	assert.Nil(t, s.ApplyFilter(nil))
	assert.Nil(t, s.ApplyFilter(NewFilter()))
}

func TestOpenReader(t *testing.T) {
	s, _ := newStore(t, ModeFile)
	require.NoError(t, s.Write(1, 0, []byte("abcd")))

	track, _ := s.Get(1)
	r, err := track.Open()
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, r.Close())
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), data)
}

func TestTrackRemoveIdempotent(t *testing.T) {
	s, _ := newStore(t, ModeFile)
	require.NoError(t, s.Write(1, 0, []byte{1}))
	require.NoError(t, s.Finalize())

	track, _ := s.Get(1)
	require.NoError(t, track.Remove())
	require.NoError(t, track.Remove())

	_, err := track.Open()
	assert.ErrorIs(t, err, ErrTrackRemoved)
	_, err = track.Bytes()
	assert.ErrorIs(t, err, ErrTrackRemoved)
}

func TestDiscardAndPurge(t *testing.T) {
	s, dir := newStore(t, ModeFile)
	require.NoError(t, s.Write(1, 0, []byte{1}))
	require.NoError(t, s.Write(2, 0, []byte{1}))
	track, _ := s.Get(1)

	require.NoError(t, s.Discard())
	assert.Equal(t, 0, s.Len())
	_, err := os.Stat(track.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.ErrorIs(t, s.Write(3, 0, []byte{1}), ErrStoreFinalized)

	require.NoError(t, Purge(dir))
	_, err = os.Stat(TempDir(dir))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRemoveUnknownTrack(t *testing.T) {
	s, _ := newStore(t, ModeMemory)
	assert.ErrorIs(t, s.Remove(5), ErrTrackNotFound)
}

func TestExportUnavailableFlag(t *testing.T) {
	s, _ := newStore(t, ModeMemory)
	assert.False(t, s.ExportUnavailable())
	s.MarkExportUnavailable()
	assert.True(t, s.ExportUnavailable())
}

func TestMinFreeBytes(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Config{Mode: ModeFile, WorkingDir: dir, MinFreeBytes: ^uint64(0)})
	assert.ErrorIs(t, err, ErrInsufficientSpace)

	s, err := New(Config{Mode: ModeFile, WorkingDir: dir, MinFreeBytes: 1})
	require.NoError(t, err)
	assert.NotNil(t, s)

	space, err := CheckDiskSpace(dir)
	require.NoError(t, err)
	assert.Greater(t, space.TotalBytes, uint64(0))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"file", ModeFile, false},
		{"", ModeFile, false},
		{"MEMORY", ModeMemory, false},
		{"mem", ModeMemory, false},
		{"tape", ModeFile, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFilter(t *testing.T) {
	f := NewFilter(3, 1)
	f.Add(2)
	assert.True(t, f.Contains(2))
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []uint64{1, 2, 3}, f.IDs())

	clone := f.Clone()
	f.Remove(2)
	assert.False(t, f.Contains(2))
	assert.True(t, clone.Contains(2))

	var nilFilter *Filter
	assert.False(t, nilFilter.Contains(1))
	assert.Equal(t, 0, nilFilter.Len())

	var zero Filter
	zero.Add(9)
	assert.True(t, zero.Contains(9))
}

func TestFileTrackNeverOverwritesExistingFile(t *testing.T) {
	first, dir := newStore(t, ModeFile)
	require.NoError(t, first.Write(100, 0, bytes.Repeat([]byte{0x11}, audio.FrameBytes)))
	require.NoError(t, first.Finalize())
	assert.True(t, first.Live())

	second, err := New(Config{Mode: ModeFile, WorkingDir: dir, GuildID: 42})
	require.NoError(t, err)
	_, err = second.Track(100)
	assert.ErrorIs(t, err, ErrTrackExists)

	track, ok := first.Get(100)
	require.True(t, ok)
	data, err := track.Bytes()
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x11}, audio.FrameBytes), data)

	require.NoError(t, first.Discard())
	assert.False(t, first.Live())
	_, err = second.Track(100)
	assert.NoError(t, err)
}

func TestMemoryStoreIsNeverLive(t *testing.T) {
	s, _ := newStore(t, ModeMemory)
	require.NoError(t, s.Write(1, 0, []byte{1, 2}))
	assert.False(t, s.Live())
}
