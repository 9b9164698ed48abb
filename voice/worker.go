package voice

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxcore/audio"
	"github.com/opd-ai/voxcore/rtp"
	"github.com/opd-ai/voxcore/timing"
)

// runWorker decodes queued frames in arrival order until the queue is
// closed, then releases every decoder.
func (s *Session) runWorker(ctx context.Context, r *run) {
	w := &worker{
		decoders:   make(map[uint32]audio.Decoder),
		unresolved: make(map[uint32]struct{}),
	}
	defer func() {
		for ssrc, dec := range w.decoders {
			if err := dec.Close(); err != nil {
				logrus.WithFields(logrus.Fields{
					"function":   "runWorker",
					"session_id": s.id.String(),
					"ssrc":       ssrc,
					"error":      err.Error(),
				}).Warn("Failed to close decoder")
			}
		}
		close(r.workerDone)
	}()

	for frame := range r.queue {
		s.processFrame(ctx, r, w, frame)
	}
}

// worker is the state owned by the decode goroutine.
type worker struct {
	decoders map[uint32]audio.Decoder
	// unresolved holds SSRCs that already timed out waiting for a mapping.
	// Their frames are checked once and dropped instead of waiting again.
	unresolved map[uint32]struct{}
}

// processFrame takes one decrypted frame through decode, resolution,
// timing and the store.
func (s *Session) processFrame(ctx context.Context, r *run, w *worker, frame *rtp.Frame) {
	if frame.IsSilence() {
		r.stats.silence.Add(1)
		return
	}

	dec, ok := w.decoders[frame.SSRC]
	if !ok {
		var err error
		dec, err = s.options.DecoderFactory()
		if err != nil {
			r.stats.decodeErrors.Add(1)
			logrus.WithFields(logrus.Fields{
				"function":   "processFrame",
				"session_id": s.id.String(),
				"ssrc":       frame.SSRC,
				"error":      err.Error(),
			}).Error("Failed to create decoder")
			return
		}
		w.decoders[frame.SSRC] = dec
	}

	pcm, err := dec.Decode(frame.Payload)
	if err != nil {
		r.stats.decodeErrors.Add(1)
		logrus.WithFields(logrus.Fields{
			"function":   "processFrame",
			"session_id": s.id.String(),
			"ssrc":       frame.SSRC,
			"sequence":   frame.Sequence,
			"error":      err.Error(),
		}).Debug("Dropping undecodable frame")
		return
	}
	frame.PCM = pcm

	userID, ok := s.resolveSSRC(ctx, w, frame.SSRC)
	if !ok {
		r.stats.unresolved.Add(1)
		return
	}
	frame.UserID = userID
	frame.Resolved = true

	if decoded, ok := s.currentTap().(DecodedTap); ok {
		decoded.Handler(tapFrame(frame))
		if decoded.Bypass {
			r.stats.bypassed.Add(1)
			return
		}
	}

	if r.filter.Contains(userID) {
		r.stats.filtered.Add(1)
		return
	}

	if err := s.record(r, frame); err != nil {
		r.stats.storeErrors.Add(1)
		logrus.WithFields(logrus.Fields{
			"function":   "processFrame",
			"session_id": s.id.String(),
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to write frame")
		return
	}
	r.stats.written.Add(1)
}

// record reconciles the frame against its speaker clock and appends it.
func (s *Session) record(r *run, frame *rtp.Frame) error {
	decision := r.reconciler.Reconcile(frame.UserID, frame.Timestamp, frame.ReceivedAt)

	switch decision.Kind {
	case timing.Deferred:
		if err := r.store.SetLeadingSilence(frame.UserID, decision.Frames); err != nil {
			return err
		}
		return r.store.Write(frame.UserID, 0, frame.PCM)
	case timing.Immediate:
		return r.store.Write(frame.UserID, decision.Frames, frame.PCM)
	default:
		return r.store.Write(frame.UserID, 0, frame.PCM)
	}
}

// resolveSSRC maps ssrc to a user id, retrying every ResolveInterval
// until it succeeds, ResolveTimeout elapses or ctx is done. An SSRC that
// timed out once is only looked up again, never waited on.
func (s *Session) resolveSSRC(ctx context.Context, w *worker, ssrc uint32) (uint64, bool) {
	if id, ok := s.resolver.Resolve(ssrc); ok {
		if _, known := w.unresolved[ssrc]; known {
			delete(w.unresolved, ssrc)
			logrus.WithFields(logrus.Fields{
				"function":   "resolveSSRC",
				"session_id": s.id.String(),
				"ssrc":       ssrc,
				"user_id":    id,
			}).Info("Late SSRC mapping arrived")
		}
		return id, true
	}
	if _, known := w.unresolved[ssrc]; known || ctx.Err() != nil {
		return 0, false
	}

	logrus.WithFields(logrus.Fields{
		"function":   "resolveSSRC",
		"session_id": s.id.String(),
		"ssrc":       ssrc,
	}).Debug("Waiting for SSRC mapping")

	timeout := time.NewTimer(s.options.ResolveTimeout)
	defer timeout.Stop()
	ticker := time.NewTicker(s.options.ResolveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, false
		case <-timeout.C:
			w.unresolved[ssrc] = struct{}{}
			logrus.WithFields(logrus.Fields{
				"function":   "resolveSSRC",
				"session_id": s.id.String(),
				"ssrc":       ssrc,
				"timeout":    s.options.ResolveTimeout.String(),
			}).Warn("No mapping for SSRC, dropping its frames until one arrives")
			return 0, false
		case <-ticker.C:
			if id, ok := s.resolver.Resolve(ssrc); ok {
				return id, true
			}
		}
	}
}
