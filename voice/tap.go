package voice

import (
	"bytes"
	"time"

	"github.com/opd-ai/voxcore/rtp"
)

// PipelineTap observes the receive pipeline at one stage. It is one of
// NoTap, RawTap, DecryptedTap or DecodedTap.
type PipelineTap interface {
	isPipelineTap()
	bypasses() bool
}

// NoTap leaves the pipeline unobserved.
type NoTap struct{}

// RawTap sees every datagram before classification. The slice aliases
// the ingress buffer and must not be retained.
type RawTap struct {
	Handler func(datagram []byte, receivedAt time.Time)
	Bypass  bool
}

// DecryptedTap sees every voice frame after decryption.
type DecryptedTap struct {
	Handler func(frame *rtp.Frame)
	Bypass  bool
}

// DecodedTap sees every frame after decoding and SSRC resolution.
type DecodedTap struct {
	Handler func(frame *rtp.Frame)
	Bypass  bool
}

func (NoTap) isPipelineTap()        {}
func (RawTap) isPipelineTap()       {}
func (DecryptedTap) isPipelineTap() {}
func (DecodedTap) isPipelineTap()   {}

func (NoTap) bypasses() bool          { return false }
func (t RawTap) bypasses() bool       { return t.Bypass }
func (t DecryptedTap) bypasses() bool { return t.Bypass }
func (t DecodedTap) bypasses() bool   { return t.Bypass }

// TapConfig names at most one stage handler. Handlers receive their own
// copy of the datagram or frame and may keep or modify it.
type TapConfig struct {
	OnRaw       func(datagram []byte, receivedAt time.Time)
	OnDecrypted func(frame *rtp.Frame)
	OnDecoded   func(frame *rtp.Frame)
	// Bypass stops frames at the tap instead of recording them. A session
	// that bypassed recording cannot be exported.
	Bypass bool
}

// NewTap builds the tap described by config. More than one handler fails
// with ErrMultipleHandlers; no handler yields NoTap.
func NewTap(config TapConfig) (PipelineTap, error) {
	count := 0
	if config.OnRaw != nil {
		count++
	}
	if config.OnDecrypted != nil {
		count++
	}
	if config.OnDecoded != nil {
		count++
	}

	switch {
	case count > 1:
		return NoTap{}, ErrMultipleHandlers
	case config.OnRaw != nil:
		return RawTap{Handler: config.OnRaw, Bypass: config.Bypass}, nil
	case config.OnDecrypted != nil:
		return DecryptedTap{Handler: config.OnDecrypted, Bypass: config.Bypass}, nil
	case config.OnDecoded != nil:
		return DecodedTap{Handler: config.OnDecoded, Bypass: config.Bypass}, nil
	}
	return NoTap{}, nil
}

// tapFrame copies frame for a tap handler so the pipeline keeps sole
// ownership of the original.
func tapFrame(frame *rtp.Frame) *rtp.Frame {
	c := *frame
	c.Ciphertext = bytes.Clone(frame.Ciphertext)
	c.Payload = bytes.Clone(frame.Payload)
	c.PCM = bytes.Clone(frame.PCM)
	return &c
}
