package audio

import (
	"fmt"

	"github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

// pionFrameBytes is one 20ms mono frame at 48kHz, the size pion/opus
// writes for every packet regardless of its SILK bandwidth.
const pionFrameBytes = FrameSamples * SampleWidth

// PionDecoder decodes Opus with the pure Go pion/opus implementation.
//
// pion/opus decodes SILK packets only and emits 48kHz mono PCM. The
// decoder duplicates the channel so its output matches the pipeline
// format. CELT and hybrid packets fail with ErrDecode; build with the
// libopus tag to decode them.
type PionDecoder struct {
	decoder *opus.Decoder
	output  []byte
}

// NewPionDecoder creates a new pion/opus backed decoder.
func NewPionDecoder() *PionDecoder {
	decoder := opus.NewDecoder()
	return &PionDecoder{
		decoder: &decoder,
		output:  make([]byte, pionFrameBytes),
	}
}

// Decode decodes one 20ms packet into 48kHz stereo PCM.
func (d *PionDecoder) Decode(packet []byte) ([]byte, error) {
	if len(packet) == 0 {
		return nil, fmt.Errorf("%w: empty packet", ErrDecode)
	}

	bandwidth, isStereo, err := d.decoder.Decode(packet, d.output)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "PionDecoder.Decode",
			"data_size": len(packet),
			"error":     err.Error(),
		}).Debug("Opus decode failed")
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":  "PionDecoder.Decode",
		"bandwidth": bandwidth.String(),
		"is_stereo": isStereo,
	}).Debug("Opus decode completed")

	return MonoToStereo(d.output), nil
}

// Close releases decoder resources.
func (d *PionDecoder) Close() error {
	return nil
}
