package audio

import "time"

// PCM layout of every decoded frame in the pipeline.
const (
	SampleRate   = 48000
	Channels     = 2
	SampleWidth  = 2 // bytes, signed 16-bit little-endian
	FrameSamples = 960
	// FrameDuration is the duration of one FrameSamples slice.
	FrameDuration = 20 * time.Millisecond
	// FrameBytes is one interleaved stereo frame.
	FrameBytes = FrameSamples * Channels * SampleWidth
)

// SilenceUnitBytes is the size of one unit of inserted silence. The timing
// reconstructor counts silence in FrameSamples blocks per channel, so a
// stereo frame of silence is Channels units.
const SilenceUnitBytes = FrameSamples * SampleWidth

// SilenceBytes returns the byte length of the given number of silence units.
func SilenceBytes(units int) int {
	if units <= 0 {
		return 0
	}
	return units * SilenceUnitBytes
}

// BytesToDuration converts a PCM byte count into its playback duration.
func BytesToDuration(n int64) time.Duration {
	samples := n / (Channels * SampleWidth)
	return time.Duration(samples) * time.Second / SampleRate
}
