//go:build libopus

package audio

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/hraban/opus.v2"
)

// maxFrameSamples is 120ms at 48kHz, the longest Opus packet.
const maxFrameSamples = 5760

func init() {
	defaultFactory = func() (Decoder, error) {
		return NewLibopusDecoder()
	}
	Backend = "libopus"
}

// LibopusDecoder decodes Opus through libopus.
type LibopusDecoder struct {
	decoder *opus.Decoder
	pcm     []int16
}

// NewLibopusDecoder creates a 48kHz stereo libopus decoder.
func NewLibopusDecoder() (*LibopusDecoder, error) {
	dec, err := opus.NewDecoder(SampleRate, Channels)
	if err != nil {
		return nil, fmt.Errorf("create libopus decoder: %w", err)
	}
	return &LibopusDecoder{
		decoder: dec,
		pcm:     make([]int16, maxFrameSamples*Channels),
	}, nil
}

// Decode decodes one packet into stereo PCM with FEC disabled.
func (d *LibopusDecoder) Decode(packet []byte) ([]byte, error) {
	n, err := d.decoder.Decode(packet, d.pcm)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "LibopusDecoder.Decode",
			"data_size": len(packet),
			"error":     err.Error(),
		}).Debug("Opus decode failed")
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return Int16ToBytes(d.pcm[:n*Channels]), nil
}

// Close releases decoder resources.
func (d *LibopusDecoder) Close() error {
	return nil
}
