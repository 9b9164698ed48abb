package rtp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/pion/rtp"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxcore/crypto"
	"github.com/opd-ai/voxcore/limits"
)

const (
	// PayloadTypeOpus is the dynamic payload type voice servers use for Opus.
	PayloadTypeOpus = 0x78

	controlTypeFirst = 200
	controlTypeLast  = 204
)

// SilenceFrame is the three-byte Opus packet clients send when they stop
// talking. It carries no audio and is never decoded.
var SilenceFrame = []byte{0xF8, 0xFF, 0xFE}

// Frame is one voice datagram moving through the receive pipeline.
//
// A Frame is owned by exactly one pipeline stage at a time and is handed
// to the next stage by value over a channel; it is never shared.
type Frame struct {
	Sequence   uint16
	Timestamp  uint32
	SSRC       uint32
	ReceivedAt time.Time

	// Header is the raw RTP header, needed for SchemeEmbedded nonces.
	Header [limits.RTPHeaderSize]byte
	// Ciphertext is everything after the header.
	Ciphertext []byte
	// Payload is the decrypted Opus packet with any header extension removed.
	Payload []byte
	// PCM is the decoded 16-bit little-endian interleaved audio, nil until decoded.
	PCM []byte

	// UserID is the speaker that owns SSRC, valid when Resolved is set.
	UserID   uint64
	Resolved bool
}

// IsControl reports whether the datagram is RTCP control traffic.
func IsControl(datagram []byte) bool {
	return len(datagram) > 1 && datagram[1] >= controlTypeFirst && datagram[1] <= controlTypeLast
}

// Classify parses a raw datagram into a Frame with an unset payload.
//
// Parameters:
//   - datagram: Bytes read from the voice socket; not retained
//   - receivedAt: Monotonic receive time of the datagram
//
// Returns:
//   - *Frame: Classified frame, ready for decryption
//   - error: ErrControlPacket for RTCP, ErrTruncated for short or
//     oversized datagrams
func Classify(datagram []byte, receivedAt time.Time) (*Frame, error) {
	if IsControl(datagram) {
		return nil, ErrControlPacket
	}

	if err := limits.ValidateDatagram(datagram); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Classify",
			"size":     len(datagram),
			"error":    err.Error(),
		}).Debug("Dropping malformed datagram")
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	frame := &Frame{
		Sequence:   binary.BigEndian.Uint16(datagram[2:4]),
		Timestamp:  binary.BigEndian.Uint32(datagram[4:8]),
		SSRC:       binary.BigEndian.Uint32(datagram[8:12]),
		ReceivedAt: receivedAt,
		Ciphertext: bytes.Clone(datagram[limits.RTPHeaderSize:]),
	}
	copy(frame.Header[:], datagram[:limits.RTPHeaderSize])

	return frame, nil
}

// Decrypt fills Payload by opening the ciphertext with the session key.
// Errors wrap crypto.ErrDecryptionFailed or crypto.ErrMalformedExtension.
func (f *Frame) Decrypt(scheme crypto.Scheme, key [32]byte) error {
	payload, err := crypto.DecryptOpus(scheme, f.Header[:], f.Ciphertext, key)
	if err != nil {
		return err
	}
	f.Payload = payload
	return nil
}

// IsSilence reports whether the decrypted payload is the explicit silence marker.
func (f *Frame) IsSilence() bool {
	return bytes.Equal(f.Payload, SilenceFrame)
}

// RTPHeader returns a pion/rtp view of the frame header.
func (f *Frame) RTPHeader() rtp.Header {
	return rtp.Header{
		Version:        f.Header[0] >> 6,
		Padding:        f.Header[0]&0x20 != 0,
		Extension:      f.Header[0]&0x10 != 0,
		Marker:         f.Header[1]&0x80 != 0,
		PayloadType:    f.Header[1] & 0x7f,
		SequenceNumber: f.Sequence,
		Timestamp:      f.Timestamp,
		SSRC:           f.SSRC,
	}
}

// OpusPacket returns the decrypted payload as a pion/rtp packet, suitable
// for container writers that consume RTP.
func (f *Frame) OpusPacket() (*rtp.Packet, error) {
	if f.Payload == nil {
		return nil, ErrNotDecrypted
	}
	header := f.RTPHeader()
	header.Extension = false
	return &rtp.Packet{Header: header, Payload: f.Payload}, nil
}

// MarshalHeader builds the 12-byte RTP header a voice client sends.
func MarshalHeader(sequence uint16, timestamp, ssrc uint32) ([]byte, error) {
	header := rtp.Header{
		Version:        2,
		PayloadType:    PayloadTypeOpus,
		SequenceNumber: sequence,
		Timestamp:      timestamp,
		SSRC:           ssrc,
	}
	raw, err := header.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal RTP header: %w", err)
	}
	if len(raw) != limits.RTPHeaderSize {
		return nil, errors.New("unexpected RTP header size")
	}
	return raw, nil
}

// Seal builds a complete encrypted voice datagram. The voice receive
// path never sends; Seal exists for loopback tooling and tests.
func Seal(scheme crypto.Scheme, key [32]byte, nonce crypto.Nonce, sequence uint16, timestamp, ssrc uint32, opus []byte) ([]byte, error) {
	header, err := MarshalHeader(sequence, timestamp, ssrc)
	if err != nil {
		return nil, err
	}
	ciphertext, err := crypto.Encrypt(scheme, header, opus, key, nonce)
	if err != nil {
		return nil, err
	}
	return append(header, ciphertext...), nil
}
