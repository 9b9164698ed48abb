package audio

import "encoding/binary"

// Int16ToBytes converts interleaved samples to little-endian bytes.
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*SampleWidth)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(sample))
	}
	return out
}

// BytesToInt16 converts little-endian bytes to samples. A trailing odd
// byte is ignored.
func BytesToInt16(data []byte) []int16 {
	out := make([]int16, len(data)/SampleWidth)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return out
}

// MonoToStereo duplicates each 16-bit mono sample into both channels.
func MonoToStereo(mono []byte) []byte {
	samples := len(mono) / SampleWidth
	out := make([]byte, samples*SampleWidth*2)
	for i := 0; i < samples; i++ {
		lo, hi := mono[i*2], mono[i*2+1]
		out[i*4] = lo
		out[i*4+1] = hi
		out[i*4+2] = lo
		out[i*4+3] = hi
	}
	return out
}
