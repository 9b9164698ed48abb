package voice

import (
	"fmt"
	"time"

	"github.com/opd-ai/voxcore/audio"
	"github.com/opd-ai/voxcore/store"
	"github.com/opd-ai/voxcore/timing"
	"github.com/opd-ai/voxcore/transport"
)

// Options configures a recording Session.
type Options struct {
	// WorkingDir holds the .rectmps track directory in file mode.
	WorkingDir string
	// GuildID names temporary track files.
	GuildID uint64
	// StorageMode selects file or memory backed tracks.
	StorageMode store.Mode
	// MinFreeBytes refuses to start a file-mode session on a nearly full disk.
	MinFreeBytes uint64

	// QueueSize is the decode queue capacity. Datagrams arriving while it is
	// full are dropped.
	QueueSize int
	// PollInterval bounds each socket read and therefore Stop latency.
	PollInterval time.Duration
	// ResolveInterval is the retry period for an unmapped SSRC.
	ResolveInterval time.Duration
	// ResolveTimeout drops a frame whose SSRC stays unmapped this long.
	ResolveTimeout time.Duration

	DecoderFactory audio.DecoderFactory
	TimeProvider   TimeProvider
	Timing         timing.Config
}

// NewOptions returns options with the default settings.
func NewOptions() *Options {
	return &Options{
		WorkingDir:      ".",
		StorageMode:     store.ModeFile,
		QueueSize:       1024,
		PollInterval:    transport.DefaultPollInterval,
		ResolveInterval: 50 * time.Millisecond,
		ResolveTimeout:  5 * time.Second,
		DecoderFactory:  audio.DefaultDecoderFactory(),
		TimeProvider:    DefaultTimeProvider{},
		Timing:          timing.DefaultConfig(),
	}
}

// Validate checks the options and fills unset collaborators.
func (o *Options) Validate() error {
	if o.QueueSize <= 0 {
		return fmt.Errorf("%w: queue size %d", ErrInvalidOptions, o.QueueSize)
	}
	if o.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval %v", ErrInvalidOptions, o.PollInterval)
	}
	if o.ResolveInterval <= 0 || o.ResolveTimeout < 0 {
		return fmt.Errorf("%w: resolve interval %v timeout %v", ErrInvalidOptions, o.ResolveInterval, o.ResolveTimeout)
	}
	if o.StorageMode != store.ModeFile && o.StorageMode != store.ModeMemory {
		return fmt.Errorf("%w: storage mode %d", ErrInvalidOptions, o.StorageMode)
	}
	if o.DecoderFactory == nil {
		o.DecoderFactory = audio.DefaultDecoderFactory()
	}
	if o.TimeProvider == nil {
		o.TimeProvider = DefaultTimeProvider{}
	}
	if o.WorkingDir == "" {
		o.WorkingDir = "."
	}
	return nil
}
