package voxcore

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voxcore/audio"
	"github.com/opd-ai/voxcore/crypto"
	"github.com/opd-ai/voxcore/export"
	"github.com/opd-ai/voxcore/gateway"
	"github.com/opd-ai/voxcore/rtp"
	"github.com/opd-ai/voxcore/store"
)

var testKey = [32]byte{7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7}

type connectedState struct{}

func (connectedState) Connected() bool { return true }

type constantDecoder struct{}

func (constantDecoder) Decode(packet []byte) ([]byte, error) {
	pcm := make([]byte, audio.FrameBytes)
	for i := range pcm {
		pcm[i] = packet[0]
	}
	return pcm, nil
}

func (constantDecoder) Close() error { return nil }

func newTestRecorder(t *testing.T, configure func(*Options)) (*Recorder, net.Conn, *gateway.SpeakerTable) {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	sender, err := net.Dial("udp", conn.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { sender.Close() })

	options := NewOptions()
	options.Session.WorkingDir = t.TempDir()
	options.Session.GuildID = 5
	options.Session.StorageMode = store.ModeMemory
	options.Session.DecoderFactory = func() (audio.Decoder, error) { return constantDecoder{}, nil }
	options.Format = export.FormatRaw
	options.ExportMode = store.ModeMemory
	if configure != nil {
		configure(options)
	}

	speakers := gateway.NewSpeakerTable()
	speakers.Set(1, 100)

	rec, err := New(conn, connectedState{}, speakers, options)
	require.NoError(t, err)
	rec.SetSecretKey(crypto.SchemeLite, testKey)
	return rec, sender, speakers
}

func sendFrames(t *testing.T, sender net.Conn, ssrc uint32, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		seq := uint16(i + 1)
		datagram, err := rtp.Seal(crypto.SchemeLite, testKey, crypto.LiteNonce(uint32(seq)), seq, uint32(i)*960, ssrc, []byte{0x20, byte(i)})
		require.NoError(t, err)
		_, err = sender.Write(datagram)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
}

func TestRecorderStartStopExports(t *testing.T) {
	rec, sender, _ := newTestRecorder(t, nil)

	require.NoError(t, rec.Start())
	sendFrames(t, sender, 1, 3)
	require.Eventually(t, func() bool { return rec.Stats().Written == 3 }, 2*time.Second, 5*time.Millisecond)

	files, err := rec.Stop(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)

	file := files[100]
	require.NotNil(t, file)
	defer file.Close()

	data, err := file.Bytes()
	require.NoError(t, err)
	assert.Len(t, data, 3*audio.FrameBytes)
	assert.Equal(t, byte(0x20), data[0])
}

func TestRecorderOggPassthrough(t *testing.T) {
	oggDir := filepath.Join(t.TempDir(), "ogg")
	rec, sender, _ := newTestRecorder(t, func(o *Options) { o.OggDir = oggDir })

	require.NoError(t, rec.Start())
	sendFrames(t, sender, 1, 2)
	require.Eventually(t, func() bool { return rec.Stats().Written == 2 }, 2*time.Second, 5*time.Millisecond)

	files, err := rec.Stop(context.Background())
	require.NoError(t, err)
	for _, f := range files {
		f.Close()
	}

	data, err := os.ReadFile(filepath.Join(oggDir, "5.1.ogg"))
	require.NoError(t, err)
	assert.Equal(t, "OggS", string(data[:4]))
}

func TestRecorderRecordUntilCancel(t *testing.T) {
	rec, _, _ := newTestRecorder(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	files, err := rec.Record(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRecorderStopWithoutStart(t *testing.T) {
	rec, _, _ := newTestRecorder(t, nil)
	_, err := rec.Stop(context.Background())
	assert.Error(t, err)
}
