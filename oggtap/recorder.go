package oggtap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/pion/webrtc/v4/pkg/media/oggwriter"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxcore/audio"
	"github.com/opd-ai/voxcore/rtp"
)

// ErrClosed indicates a Recorder that no longer accepts frames.
var ErrClosed = errors.New("ogg recorder closed")

// SinkFactory opens the output of one SSRC. The Recorder closes it.
type SinkFactory func(ssrc uint32) (io.WriteCloser, error)

// FileSink writes <dir>/<prefix>.<ssrc>.ogg files.
func FileSink(dir, prefix string) SinkFactory {
	return func(ssrc uint32) (io.WriteCloser, error) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ogg dir: %w", err)
		}
		name := prefix + "." + strconv.FormatUint(uint64(ssrc), 10) + ".ogg"
		return os.Create(filepath.Join(dir, name))
	}
}

type stream struct {
	writer  *oggwriter.OggWriter
	packets int
}

// Recorder writes Opus passthrough per SSRC.
type Recorder struct {
	mu      sync.Mutex
	sink    SinkFactory
	streams map[uint32]*stream
	closed  bool
}

// NewRecorder creates a recorder writing to outputs from sink.
func NewRecorder(sink SinkFactory) *Recorder {
	return &Recorder{
		sink:    sink,
		streams: make(map[uint32]*stream),
	}
}

// HandleFrame writes one decrypted frame. It matches the decrypted tap
// handler signature; failures are logged.
func (r *Recorder) HandleFrame(frame *rtp.Frame) {
	if err := r.WriteFrame(frame); err != nil && !errors.Is(err, ErrClosed) {
		logrus.WithFields(logrus.Fields{
			"function": "Recorder.HandleFrame",
			"ssrc":     frame.SSRC,
			"sequence": frame.Sequence,
			"error":    err.Error(),
		}).Warn("Failed to write ogg packet")
	}
}

// WriteFrame writes one decrypted frame into the container of its SSRC.
func (r *Recorder) WriteFrame(frame *rtp.Frame) error {
	if frame.IsSilence() || len(frame.Payload) == 0 {
		return nil
	}
	packet, err := frame.OpusPacket()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	s, ok := r.streams[frame.SSRC]
	if !ok {
		out, err := r.sink(frame.SSRC)
		if err != nil {
			return fmt.Errorf("open ogg sink: %w", err)
		}
		writer, err := oggwriter.NewWith(out, audio.SampleRate, audio.Channels)
		if err != nil {
			out.Close()
			return fmt.Errorf("create ogg writer: %w", err)
		}
		s = &stream{writer: writer}
		r.streams[frame.SSRC] = s

		logrus.WithFields(logrus.Fields{
			"function": "Recorder.WriteFrame",
			"ssrc":     frame.SSRC,
		}).Debug("Ogg stream opened")
	}

	if err := s.writer.WriteRTP(packet); err != nil {
		return fmt.Errorf("write ogg packet: %w", err)
	}
	s.packets++
	return nil
}

// SSRCs returns every SSRC with an open stream, ascending.
func (r *Recorder) SSRCs() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint32, 0, len(r.streams))
	for id := range r.streams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Packets returns the number of packets written for ssrc.
func (r *Recorder) Packets(ssrc uint32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.streams[ssrc]; ok {
		return s.packets
	}
	return 0
}

// Close finalizes every container and closes its sink.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for ssrc, s := range r.streams {
		if err := s.writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close ogg stream %d: %w", ssrc, err))
		}
	}

	logrus.WithFields(logrus.Fields{
		"function": "Recorder.Close",
		"streams":  len(r.streams),
	}).Info("Ogg recorder closed")

	return errors.Join(errs...)
}
