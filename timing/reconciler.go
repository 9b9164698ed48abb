package timing

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// DeviationThreshold is the clock disagreement, in percent, above which
// the wall clock is trusted over the codec clock.
const DeviationThreshold = 60

// Kind classifies a silence decision.
type Kind uint8

const (
	// None means no silence precedes the frame.
	None Kind = iota
	// Immediate means Frames units of silence must be written before the frame.
	Immediate
	// Deferred means Frames units of leading silence belong on the track
	// and are applied at export time.
	Deferred
)

// String returns the decision name.
func (k Kind) String() string {
	switch k {
	case Immediate:
		return "immediate"
	case Deferred:
		return "deferred"
	default:
		return "none"
	}
}

// Decision is the outcome of reconciling one frame.
type Decision struct {
	Kind Kind
	// Frames counts silence in FrameSamples units across all channels.
	Frames int
}

// Config holds the audio clock parameters.
type Config struct {
	SampleRate   int
	FrameSamples int
	Channels     int
}

// DefaultConfig returns the 48kHz stereo 20ms configuration used by voice
// servers.
func DefaultConfig() Config {
	return Config{
		SampleRate:   48000,
		FrameSamples: 960,
		Channels:     2,
	}
}

// SpeakerClock is the last observed frame of one speaker.
type SpeakerClock struct {
	LastTimestamp uint32
	LastReceived  time.Time
}

// SessionClock records when the first frame of the session arrived.
type SessionClock struct {
	StartedAt time.Time
}

// Reconciler holds the session clock and one SpeakerClock per user.
type Reconciler struct {
	config   Config
	session  *SessionClock
	speakers map[uint64]*SpeakerClock
}

// NewReconciler creates a Reconciler. Zero fields in config take the
// DefaultConfig values.
func NewReconciler(config Config) *Reconciler {
	defaults := DefaultConfig()
	if config.SampleRate <= 0 {
		config.SampleRate = defaults.SampleRate
	}
	if config.FrameSamples <= 0 {
		config.FrameSamples = defaults.FrameSamples
	}
	if config.Channels <= 0 {
		config.Channels = defaults.Channels
	}
	return &Reconciler{
		config:   config,
		speakers: make(map[uint64]*SpeakerClock),
	}
}

// Reconcile decides how much silence precedes a frame from userID with
// the given codec timestamp and receive time. The speaker clock is always
// updated before returning.
func (r *Reconciler) Reconcile(userID uint64, codecTS uint32, receivedAt time.Time) Decision {
	prev, known := r.speakers[userID]
	r.speakers[userID] = &SpeakerClock{LastTimestamp: codecTS, LastReceived: receivedAt}

	if r.session == nil {
		r.session = &SessionClock{StartedAt: receivedAt}
		logrus.WithFields(logrus.Fields{
			"function": "Reconcile",
			"user_id":  userID,
		}).Debug("Session clock started")
		return Decision{Kind: Immediate}
	}

	if !known {
		return r.joinDecision(userID, receivedAt)
	}
	return r.gapDecision(userID, prev, codecTS, receivedAt)
}

// joinDecision sizes the leading silence of a speaker first heard after
// the session clock started.
func (r *Reconciler) joinDecision(userID uint64, receivedAt time.Time) Decision {
	elapsed := receivedAt.Sub(r.session.StartedAt).Seconds() * float64(r.config.SampleRate)
	gap := elapsed - float64(r.config.FrameSamples)
	frames := r.frames(gap)
	if frames < 0 {
		frames = 0
	}

	logrus.WithFields(logrus.Fields{
		"function":        "Reconcile",
		"user_id":         userID,
		"leading_silence": frames,
	}).Debug("New speaker joined")

	return Decision{Kind: Deferred, Frames: frames}
}

// gapDecision sizes the silence between two frames of the same speaker.
func (r *Reconciler) gapDecision(userID uint64, prev *SpeakerClock, codecTS uint32, receivedAt time.Time) Decision {
	frameSamples := float64(r.config.FrameSamples)
	dCodec := float64(int32(codecTS - prev.LastTimestamp))
	dWall := receivedAt.Sub(prev.LastReceived).Seconds() * float64(r.config.SampleRate)

	gap := dCodec - frameSamples
	source := "codec"
	if dWall != 0 {
		deviation := math.Abs(100 - dCodec*100/dWall)
		if deviation > DeviationThreshold && dCodec != frameSamples {
			gap = dWall - frameSamples
			source = "wall"
		}
	}

	frames := r.frames(gap)
	if frames < 0 {
		return Decision{Kind: None}
	}

	if frames > 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Reconcile",
			"user_id":  userID,
			"frames":   frames,
			"source":   source,
		}).Debug("Silence gap detected")
	}

	return Decision{Kind: Immediate, Frames: frames}
}

func (r *Reconciler) frames(gap float64) int {
	return int(math.Floor(gap/float64(r.config.FrameSamples))) * r.config.Channels
}

// Forget removes the speaker clock of userID.
func (r *Reconciler) Forget(userID uint64) {
	delete(r.speakers, userID)
}

// SessionClock returns the session clock and whether it has started.
func (r *Reconciler) SessionClock() (SessionClock, bool) {
	if r.session == nil {
		return SessionClock{}, false
	}
	return *r.session, true
}

// Clock returns the speaker clock of userID.
func (r *Reconciler) Clock(userID uint64) (SpeakerClock, bool) {
	c, ok := r.speakers[userID]
	if !ok {
		return SpeakerClock{}, false
	}
	return *c, true
}

// Speakers returns the number of tracked speakers.
func (r *Reconciler) Speakers() int {
	return len(r.speakers)
}
