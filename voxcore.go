package voxcore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxcore/crypto"
	"github.com/opd-ai/voxcore/export"
	"github.com/opd-ai/voxcore/oggtap"
	"github.com/opd-ai/voxcore/store"
	"github.com/opd-ai/voxcore/transport"
	"github.com/opd-ai/voxcore/voice"
)

// Options configures a Recorder.
type Options struct {
	Session *voice.Options
	Export  *export.Options

	// Format is the container produced by Stop.
	Format export.Format
	// ExportMode selects in-memory bytes or files for exported audio.
	ExportMode store.Mode
	// OggDir, when set, also stores every speaker's Opus stream as
	// <OggDir>/<guild>.<ssrc>.ogg without decoding.
	OggDir string
}

// NewOptions returns options recording to file-backed WAV exports.
func NewOptions() *Options {
	return &Options{
		Session:    voice.NewOptions(),
		Export:     export.NewOptions(),
		Format:     export.FormatWAV,
		ExportMode: store.ModeFile,
	}
}

// Recorder is a recording session bundled with its export settings.
type Recorder struct {
	mu       sync.Mutex
	session  *voice.Session
	exporter *export.Exporter
	options  Options
	ogg      *oggtap.Recorder
}

// New creates a Recorder reading voice datagrams from conn.
func New(conn transport.PacketReader, state voice.VoiceState, resolver voice.SSRCResolver, options *Options) (*Recorder, error) {
	if options == nil {
		options = NewOptions()
	}
	opts := *options
	if opts.Session == nil {
		opts.Session = voice.NewOptions()
	}
	if opts.Export == nil {
		opts.Export = export.NewOptions()
	}
	if opts.Export.WorkingDir == "" {
		opts.Export.WorkingDir = opts.Session.WorkingDir
	}

	session, err := voice.NewSession(conn, state, resolver, opts.Session)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		session:  session,
		exporter: export.NewExporter(opts.Export),
		options:  opts,
	}, nil
}

// Session returns the underlying recording session.
func (r *Recorder) Session() *voice.Session {
	return r.session
}

// SetSecretKey installs the transport key announced by the voice gateway.
func (r *Recorder) SetSecretKey(scheme crypto.Scheme, key [32]byte) {
	r.session.SetSecretKey(scheme, key)
}

// Start begins recording. With OggDir set, the Opus passthrough tap is
// installed first.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.options.OggDir != "" && r.ogg == nil {
		prefix := fmt.Sprintf("%d", r.options.Session.GuildID)
		ogg := oggtap.NewRecorder(oggtap.FileSink(r.options.OggDir, prefix))
		if err := r.session.ConfigureTap(voice.TapConfig{OnDecrypted: ogg.HandleFrame}); err != nil {
			return err
		}
		r.ogg = ogg
	}

	if err := r.session.Start(); err != nil {
		r.closeOgg()
		return err
	}
	return nil
}

// Pause discards incoming audio until Resume.
func (r *Recorder) Pause() error {
	return r.session.Pause()
}

// Resume continues recording after Pause.
func (r *Recorder) Resume() error {
	return r.session.Resume()
}

// Stop ends recording and exports every speaker's track. The caller
// owns the returned files.
func (r *Recorder) Stop(ctx context.Context) (map[uint64]*export.AudioFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot, stopErr := r.session.Stop()
	oggErr := r.closeOgg()
	if snapshot == nil {
		return nil, stopErr
	}
	if stopErr != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "Recorder.Stop",
			"session_id": r.session.ID().String(),
			"error":      stopErr.Error(),
		}).Warn("Recording stopped with errors")
	}

	files, err := r.exporter.Export(ctx, snapshot, r.options.Format, r.options.ExportMode, r.session.Filter())
	if err != nil {
		return nil, err
	}
	return files, errors.Join(stopErr, oggErr)
}

// Record captures audio for d or until ctx is done, then exports it.
func (r *Recorder) Record(ctx context.Context, d time.Duration) (map[uint64]*export.AudioFile, error) {
	if err := r.Start(); err != nil {
		return nil, err
	}

	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
	case <-timeout:
	}

	// The parent context may already be cancelled; exporting must still run.
	return r.Stop(context.WithoutCancel(ctx))
}

// Stats returns the session counters.
func (r *Recorder) Stats() voice.Stats {
	return r.session.Stats()
}

func (r *Recorder) closeOgg() error {
	if r.ogg == nil {
		return nil
	}
	err := r.ogg.Close()
	r.ogg = nil
	return errors.Join(err, r.session.ConfigureTap(voice.TapConfig{}))
}

// Purge removes every temporary track and export below workingDir.
func Purge(workingDir string) error {
	return store.Purge(workingDir)
}
