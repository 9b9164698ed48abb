package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WAVHeaderSize is the length of the canonical RIFF/WAVE header.
const WAVHeaderSize = 44

// WAVHeader is the canonical PCM WAVE header.
type WAVHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // 36 + data length
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // data length
}

// NewWAVHeader returns a header for dataLen bytes of pipeline PCM.
func NewWAVHeader(dataLen uint32) WAVHeader {
	return WAVHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataLen,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   Channels,
		SampleRate:    SampleRate,
		ByteRate:      SampleRate * Channels * SampleWidth,
		BlockAlign:    Channels * SampleWidth,
		BitsPerSample: SampleWidth * 8,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataLen,
	}
}

// WriteWAVHeader writes the header for dataLen bytes of PCM to w.
func WriteWAVHeader(w io.Writer, dataLen int64) error {
	if dataLen < 0 || dataLen > int64(^uint32(0))-36 {
		return fmt.Errorf("wav data length out of range: %d", dataLen)
	}
	header := NewWAVHeader(uint32(dataLen))
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}

// ReadWAVHeader parses a canonical header from r.
func ReadWAVHeader(r io.Reader) (WAVHeader, error) {
	var header WAVHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return header, fmt.Errorf("read wav header: %w", err)
	}
	if string(header.ChunkID[:]) != "RIFF" || string(header.Format[:]) != "WAVE" {
		return header, fmt.Errorf("not a wav stream")
	}
	return header, nil
}
