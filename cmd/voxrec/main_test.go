package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voxcore/export"
	"github.com/opd-ai/voxcore/store"
)

func TestParseKey(t *testing.T) {
	valid := strings.Repeat("0a", 32)
	key, err := parseKey(valid)
	require.NoError(t, err)
	assert.Equal(t, byte(0x0a), key[31])

	_, err = parseKey("zz")
	assert.Error(t, err)
	_, err = parseKey(strings.Repeat("ff", 16))
	assert.Error(t, err)
}

func TestParseSpeakers(t *testing.T) {
	table, err := parseSpeakers([]string{"1=100", " 2 = 200 "})
	require.NoError(t, err)
	id, ok := table.Resolve(2)
	assert.True(t, ok)
	assert.Equal(t, uint64(200), id)

	tests := []string{"1", "x=1", "1=y", "4294967296=1"}
	for _, pair := range tests {
		t.Run(pair, func(t *testing.T) {
			_, err := parseSpeakers([]string{pair})
			assert.Error(t, err)
		})
	}
}

func TestRecorderOptionsFromViper(t *testing.T) {
	v := viper.New()
	v.Set("format", "flac")
	v.Set("storage", "memory")
	v.Set("working-dir", "/tmp/rec")
	v.Set("guild", uint64(9))
	v.Set("encoder", "/usr/bin/ffmpeg")
	v.Set("parallelism", 2)

	options, err := recorderOptions(v)
	require.NoError(t, err)
	assert.Equal(t, export.FormatFLAC, options.Format)
	assert.Equal(t, store.ModeMemory, options.Session.StorageMode)
	assert.Equal(t, "/tmp/rec", options.Session.WorkingDir)
	assert.Equal(t, uint64(9), options.Session.GuildID)
	assert.Equal(t, "/usr/bin/ffmpeg", options.Export.EncoderPath)
	assert.Equal(t, 2, options.Export.Parallelism)

	v.Set("format", "aiff")
	_, err = recorderOptions(v)
	assert.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestFormatsCommand(t *testing.T) {
	cmd := newRootCmd(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"formats"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "wav")
	assert.Contains(t, out.String(), "flac")
}

func TestPurgeCommandFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	tmp := store.TempDir(dir)
	require.NoError(t, os.MkdirAll(tmp, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "1.2.tmp"), []byte{1}, 0o644))

	t.Setenv("VOXREC_WORKING_DIR", dir)
	cmd := newRootCmd(viper.New())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"purge"})
	require.NoError(t, cmd.Execute())

	_, err := os.Stat(tmp)
	assert.True(t, os.IsNotExist(err))
}
