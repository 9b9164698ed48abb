package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxcore/crypto"
	"github.com/opd-ai/voxcore/rtp"
	"github.com/opd-ai/voxcore/store"
	"github.com/opd-ai/voxcore/timing"
	"github.com/opd-ai/voxcore/transport"
)

// State is the lifecycle state of a recording session.
type State uint8

const (
	// StateIdle means the session has never been started.
	StateIdle State = iota
	// StateRecording means frames are being captured.
	StateRecording
	// StatePaused means the socket is drained but frames are discarded.
	StatePaused
	// StateStopped means the last recording was finalized.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}

func (s State) active() bool {
	return s == StateRecording || s == StatePaused
}

// SSRCResolver maps an RTP media source to the user id speaking on it.
type SSRCResolver interface {
	Resolve(ssrc uint32) (userID uint64, ok bool)
}

// VoiceState reports whether the voice connection is ready for media.
type VoiceState interface {
	Connected() bool
}

type secretKey struct {
	scheme crypto.Scheme
	key    [32]byte
}

// run holds everything owned by one Start..Stop cycle.
type run struct {
	cancel     context.CancelFunc
	queue      chan *rtp.Frame
	store      *store.Store
	reconciler *timing.Reconciler
	filter     *store.Filter
	stats      counters
	startedAt  time.Time
	bypassed   atomic.Bool

	ingressDone chan struct{}
	workerDone  chan struct{}
	ingressErr  error
}

// Session records every speaker of one voice connection into a Store.
//
// Two goroutines run while recording: an ingress loop reading the socket
// and a decode worker that owns the Opus decoders, the timing reconciler
// and all store writes.
type Session struct {
	id       uuid.UUID
	conn     transport.PacketReader
	voice    VoiceState
	resolver SSRCResolver
	options  Options

	mu     sync.Mutex
	state  State
	filter *store.Filter
	run    *run

	paused atomic.Bool
	tap    atomic.Value // tapHolder
	key    atomic.Pointer[secretKey]
}

type tapHolder struct {
	tap PipelineTap
}

// NewSession creates an idle session.
//
// Parameters:
//   - conn: Voice UDP socket; never closed by the session
//   - voice: Reports connection readiness
//   - resolver: Maps SSRCs to user ids
//   - options: Session options, nil for NewOptions defaults
//
// Returns:
//   - *Session: New idle session
//   - error: ErrInvalidOptions for missing collaborators or bad settings
func NewSession(conn transport.PacketReader, voice VoiceState, resolver SSRCResolver, options *Options) (*Session, error) {
	if conn == nil || voice == nil || resolver == nil {
		return nil, fmt.Errorf("%w: socket, voice state and resolver are required", ErrInvalidOptions)
	}
	if options == nil {
		options = NewOptions()
	}
	opts := *options
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:       uuid.New(),
		conn:     conn,
		voice:    voice,
		resolver: resolver,
		options:  opts,
		filter:   store.NewFilter(),
	}
	s.tap.Store(tapHolder{tap: NoTap{}})

	logrus.WithFields(logrus.Fields{
		"function":     "NewSession",
		"session_id":   s.id.String(),
		"storage_mode": opts.StorageMode.String(),
		"queue_size":   opts.QueueSize,
	}).Info("Recording session created")

	return s, nil
}

// ID returns the session id used in log fields.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// SetSecretKey installs the negotiated encryption mode and key. It may be
// called at any time; frames read afterwards use the new key.
func (s *Session) SetSecretKey(scheme crypto.Scheme, key [32]byte) {
	s.key.Store(&secretKey{scheme: scheme, key: key})

	fields := logrus.Fields{
		"function":   "SetSecretKey",
		"session_id": s.id.String(),
		"scheme":     scheme.String(),
	}
	for k, v := range crypto.SecureFieldHash(key[:], "key") {
		fields[k] = v
	}
	logrus.WithFields(fields).Debug("Secret key installed")
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins recording into a fresh store. In file mode it returns
// ErrSnapshotInUse while the previous snapshot still holds track files.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.active() {
		return ErrAlreadyRecording
	}
	if !s.voice.Connected() {
		return ErrNotConnected
	}
	if s.key.Load() == nil {
		return fmt.Errorf("%w: no secret key", ErrNotConnected)
	}
	if s.run != nil && s.run.store.Live() {
		return ErrSnapshotInUse
	}

	st, err := store.New(store.Config{
		Mode:         s.options.StorageMode,
		WorkingDir:   s.options.WorkingDir,
		GuildID:      s.options.GuildID,
		MinFreeBytes: s.options.MinFreeBytes,
	})
	if err != nil {
		return fmt.Errorf("create audio store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		cancel:      cancel,
		queue:       make(chan *rtp.Frame, s.options.QueueSize),
		store:       st,
		reconciler:  timing.NewReconciler(s.options.Timing),
		filter:      s.filter.Clone(),
		startedAt:   s.options.TimeProvider.Now(),
		ingressDone: make(chan struct{}),
		workerDone:  make(chan struct{}),
	}
	if s.currentTap().bypasses() {
		r.bypassed.Store(true)
	}

	s.run = r
	s.paused.Store(false)
	s.state = StateRecording

	ingress := transport.NewIngress(s.conn, func(data []byte, _ net.Addr, at time.Time) {
		s.handleDatagram(r, data, at)
	}, transport.IngressConfig{
		PollInterval: s.options.PollInterval,
		Now:          s.options.TimeProvider.Now,
	})

	go func() {
		defer close(r.ingressDone)
		if err := ingress.Run(ctx); err != nil {
			r.ingressErr = err
			logrus.WithFields(logrus.Fields{
				"function":   "Session.Start",
				"session_id": s.id.String(),
				"error":      err.Error(),
			}).Error("Ingress loop terminated")
		}
	}()
	go s.runWorker(ctx, r)

	logrus.WithFields(logrus.Fields{
		"function":   "Start",
		"session_id": s.id.String(),
		"excluded":   r.filter.Len(),
	}).Info("Recording started")

	return nil
}

// Pause discards incoming frames while continuing to drain the socket.
func (s *Session) Pause() error {
	return s.setPaused(true)
}

// Resume continues recording after Pause.
func (s *Session) Resume() error {
	return s.setPaused(false)
}

func (s *Session) setPaused(paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.active() {
		return ErrNotRecording
	}
	s.paused.Store(paused)
	if paused {
		s.state = StatePaused
	} else {
		s.state = StateRecording
	}

	logrus.WithFields(logrus.Fields{
		"function":   "setPaused",
		"session_id": s.id.String(),
		"state":      s.state.String(),
	}).Info("Recording state changed")

	return nil
}

// Stop ends recording, drains frames already queued and returns the
// finalized store. The caller owns the snapshot.
func (s *Session) Stop() (*store.Store, error) {
	// Held through teardown: at most one ingress loop reads the socket.
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.active() {
		return nil, ErrNotRecording
	}
	r := s.run
	s.state = StateStopped
	s.paused.Store(false)

	r.cancel()
	<-r.ingressDone
	// Ingress is the only sender.
	close(r.queue)
	<-r.workerDone

	for _, id := range r.store.ApplyFilter(r.filter) {
		r.reconciler.Forget(id)
	}
	if r.bypassed.Load() {
		r.store.MarkExportUnavailable()
	}
	err := r.store.Finalize()

	stats := r.stats.snapshot()
	logrus.WithFields(logrus.Fields{
		"function":    "Stop",
		"session_id":  s.id.String(),
		"duration":    s.options.TimeProvider.Since(r.startedAt).String(),
		"tracks":      r.store.Len(),
		"received":    stats.Received,
		"written":     stats.Written,
		"queue_drops": stats.QueueDrops,
		"bypassed":    r.bypassed.Load(),
	}).Info("Recording stopped")

	if err != nil {
		return r.store, fmt.Errorf("finalize audio store: %w", err)
	}
	if r.ingressErr != nil && !errors.Is(r.ingressErr, net.ErrClosed) {
		return r.store, r.ingressErr
	}
	return r.store, nil
}

// Stats returns counters for the current or most recent recording.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	r := s.run
	s.mu.Unlock()
	if r == nil {
		return Stats{}
	}
	return r.stats.snapshot()
}

// ExcludeSpeaker drops userID from future recordings.
func (s *Session) ExcludeSpeaker(userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.active() {
		return ErrAlreadyRecording
	}
	s.filter.Add(userID)
	return nil
}

// IncludeSpeaker removes userID from the exclusion filter.
func (s *Session) IncludeSpeaker(userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.active() {
		return ErrAlreadyRecording
	}
	s.filter.Remove(userID)
	return nil
}

// Filter returns a copy of the exclusion filter.
func (s *Session) Filter() *store.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.Clone()
}

// ConfigureTap installs the tap described by config. On error no tap
// remains installed.
func (s *Session) ConfigureTap(config TapConfig) error {
	tap, err := NewTap(config)
	if err != nil {
		s.tap.Store(tapHolder{tap: NoTap{}})
		logrus.WithFields(logrus.Fields{
			"function":   "ConfigureTap",
			"session_id": s.id.String(),
			"error":      err.Error(),
		}).Warn("Tap rejected, cleared existing tap")
		return err
	}
	s.tap.Store(tapHolder{tap: tap})

	s.mu.Lock()
	if tap.bypasses() && s.state.active() {
		s.run.bypassed.Store(true)
	}
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":   "ConfigureTap",
		"session_id": s.id.String(),
		"tap":        fmt.Sprintf("%T", tap),
		"bypass":     tap.bypasses(),
	}).Info("Pipeline tap configured")

	return nil
}

// Tap returns the installed tap.
func (s *Session) Tap() PipelineTap {
	return s.currentTap()
}

func (s *Session) currentTap() PipelineTap {
	return s.tap.Load().(tapHolder).tap
}

// handleDatagram runs on the ingress goroutine for every datagram.
func (s *Session) handleDatagram(r *run, data []byte, receivedAt time.Time) {
	r.stats.received.Add(1)

	if s.paused.Load() {
		r.stats.paused.Add(1)
		return
	}

	tap := s.currentTap()
	if raw, ok := tap.(RawTap); ok {
		raw.Handler(bytes.Clone(data), receivedAt)
		if raw.Bypass {
			r.stats.bypassed.Add(1)
			return
		}
	}

	frame, err := rtp.Classify(data, receivedAt)
	if err != nil {
		if errors.Is(err, rtp.ErrControlPacket) {
			r.stats.control.Add(1)
		} else {
			r.stats.malformed.Add(1)
		}
		return
	}

	secret := s.key.Load()
	if err := frame.Decrypt(secret.scheme, secret.key); err != nil {
		r.stats.decryptFailures.Add(1)
		logrus.WithFields(logrus.Fields{
			"function":   "handleDatagram",
			"session_id": s.id.String(),
			"ssrc":       frame.SSRC,
			"sequence":   frame.Sequence,
			"error":      err.Error(),
		}).Debug("Dropping undecryptable frame")
		return
	}

	if dec, ok := tap.(DecryptedTap); ok {
		dec.Handler(tapFrame(frame))
		if dec.Bypass {
			r.stats.bypassed.Add(1)
			return
		}
	}

	select {
	case r.queue <- frame:
	default:
		r.stats.queueDrops.Add(1)
		logrus.WithFields(logrus.Fields{
			"function":   "handleDatagram",
			"session_id": s.id.String(),
			"ssrc":       frame.SSRC,
			"queue_size": cap(r.queue),
		}).Warn("Decode queue full, dropping frame")
	}
}
