package crypto

import (
	"encoding/binary"
	"fmt"
)

// Profile marker of a one-byte RTP header extension (RFC 8285).
const (
	extensionMarker0 = 0xBE
	extensionMarker1 = 0xDE
)

// HasHeaderExtension reports whether the plaintext begins with a one-byte
// RTP header extension block.
func HasHeaderExtension(plaintext []byte) bool {
	return len(plaintext) > 4 && plaintext[0] == extensionMarker0 && plaintext[1] == extensionMarker1
}

// StripHeaderExtension removes a leading one-byte header extension block.
// The 16-bit length at offset 2 counts 32-bit words after the 4-byte
// profile/length preamble. Plaintext without the marker is returned as is.
func StripHeaderExtension(plaintext []byte) ([]byte, error) {
	if !HasHeaderExtension(plaintext) {
		return plaintext, nil
	}

	words := int(binary.BigEndian.Uint16(plaintext[2:4]))
	offset := 4 + 4*words
	if offset > len(plaintext) {
		return nil, fmt.Errorf("%w: %d words declared, %d bytes available",
			ErrMalformedExtension, words, len(plaintext)-4)
	}

	return plaintext[offset:], nil
}
