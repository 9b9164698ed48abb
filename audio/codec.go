package audio

import "errors"

// ErrDecode indicates the codec rejected a packet. The frame is dropped.
var ErrDecode = errors.New("opus decode failed")

// Decoder turns Opus packets from one media source into interleaved
// 48kHz stereo S16LE PCM. Implementations are not safe for concurrent use.
type Decoder interface {
	// Decode decodes one packet with forward error correction disabled.
	Decode(packet []byte) ([]byte, error)
	// Close releases codec resources.
	Close() error
}

// DecoderFactory creates a fresh Decoder for a newly seen SSRC.
type DecoderFactory func() (Decoder, error)

// defaultFactory is replaced by the libopus backend when it is compiled in.
var defaultFactory DecoderFactory = func() (Decoder, error) {
	return NewPionDecoder(), nil
}

// NewDecoder creates a decoder using the default backend for this build.
func NewDecoder() (Decoder, error) {
	return defaultFactory()
}

// DefaultDecoderFactory returns the factory used by NewDecoder.
func DefaultDecoderFactory() DecoderFactory {
	return defaultFactory
}

// Backend names the decoder backend compiled into this build.
var Backend = "pion"
