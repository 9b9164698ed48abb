// Package limits provides centralized size limits for voice datagrams.
// This ensures consistent validation between the socket reader, the
// packet classifier and the decryptor.
package limits

import (
	"errors"
	"fmt"
)

const (
	// RTPHeaderSize is the fixed RTP header carried by every voice datagram.
	// Voice servers never send CSRC lists, so the header is always 12 bytes.
	RTPHeaderSize = 12

	// EncryptionOverhead is the Poly1305 authenticator added by secretbox.Seal.
	EncryptionOverhead = 16 // golang.org/x/crypto/nacl/secretbox.Overhead

	// MinVoiceDatagram is the smallest datagram that can carry an
	// authenticated payload: header plus authenticator.
	MinVoiceDatagram = RTPHeaderSize + EncryptionOverhead

	// MaxDatagram is the largest datagram read from the voice socket.
	// Opus frames at the highest bitrate stay well below this.
	MaxDatagram = 4096

	// MaxOpusPayload bounds a single decrypted Opus packet (RFC 6716 3.4).
	MaxOpusPayload = 1275 * 3
)

var (
	// ErrDatagramEmpty indicates an empty datagram was provided
	ErrDatagramEmpty = errors.New("empty datagram")

	// ErrDatagramTooSmall indicates the datagram cannot hold an RTP header
	ErrDatagramTooSmall = errors.New("datagram too small")

	// ErrDatagramTooLarge indicates datagram exceeds maximum size
	ErrDatagramTooLarge = errors.New("datagram too large")
)

// ValidateSize validates data against the specified minimum and maximum size.
// Returns an error with context including the actual and limit sizes.
func ValidateSize(data []byte, minSize, maxSize int) error {
	if len(data) == 0 {
		return ErrDatagramEmpty
	}
	if len(data) < minSize {
		return fmt.Errorf("%w: size %d below minimum %d", ErrDatagramTooSmall, len(data), minSize)
	}
	if len(data) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrDatagramTooLarge, len(data), maxSize)
	}
	return nil
}

// ValidateDatagram validates a raw datagram read from the voice socket.
func ValidateDatagram(data []byte) error {
	return ValidateSize(data, RTPHeaderSize, MaxDatagram)
}

// ValidateEncryptedPayload validates the ciphertext that follows the RTP header.
func ValidateEncryptedPayload(data []byte) error {
	return ValidateSize(data, EncryptionOverhead, MaxDatagram-RTPHeaderSize)
}
