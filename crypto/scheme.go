package crypto

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/opd-ai/voxcore/limits"
)

// Scheme identifies how the 24-byte secretbox nonce is derived for a voice packet.
// The scheme is negotiated once per voice connection.
type Scheme uint8

const (
	// SchemeEmbedded uses the RTP header zero-padded to 24 bytes as the nonce.
	SchemeEmbedded Scheme = iota
	// SchemeSuffix appends a full random nonce to the ciphertext.
	SchemeSuffix
	// SchemeLite appends a 4-byte counter to the ciphertext; the counter is
	// zero-padded to 24 bytes to form the nonce.
	SchemeLite
)

const (
	// NonceSize is the secretbox nonce length.
	NonceSize = 24

	// SuffixNonceSize is the number of trailing ciphertext bytes that carry
	// the nonce under SchemeSuffix.
	SuffixNonceSize = NonceSize

	// LiteNonceSize is the number of trailing ciphertext bytes that carry
	// the nonce counter under SchemeLite.
	LiteNonceSize = 4
)

var schemeNames = map[Scheme]string{
	SchemeEmbedded: "xsalsa20_poly1305",
	SchemeSuffix:   "xsalsa20_poly1305_suffix",
	SchemeLite:     "xsalsa20_poly1305_lite",
}

// String returns the negotiated mode name of the scheme.
func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", uint8(s))
}

// ParseScheme maps a negotiated mode name to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for scheme, schemeName := range schemeNames {
		if schemeName == name {
			return scheme, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedScheme, name)
}

// Overhead returns the number of bytes the scheme adds to a plaintext
// payload: the authenticator plus any nonce suffix.
func (s Scheme) Overhead() int {
	switch s {
	case SchemeSuffix:
		return secretbox.Overhead + SuffixNonceSize
	case SchemeLite:
		return secretbox.Overhead + LiteNonceSize
	default:
		return secretbox.Overhead
	}
}

// HeaderNonce builds the SchemeEmbedded nonce from a 12-byte RTP header.
func HeaderNonce(header []byte) (Nonce, error) {
	var nonce Nonce
	if len(header) != limits.RTPHeaderSize {
		return nonce, fmt.Errorf("%w: got %d bytes", ErrInvalidHeader, len(header))
	}
	copy(nonce[:], header)
	return nonce, nil
}

// LiteNonce builds a SchemeLite nonce from a packet counter. The counter
// occupies the first four bytes, big-endian, as sent on the wire.
func LiteNonce(counter uint32) Nonce {
	var nonce Nonce
	binary.BigEndian.PutUint32(nonce[:LiteNonceSize], counter)
	return nonce
}

// splitNonce separates the sealed box from the nonce for the scheme.
func splitNonce(scheme Scheme, header, ciphertext []byte) (Nonce, []byte, error) {
	var nonce Nonce

	switch scheme {
	case SchemeEmbedded:
		n, err := HeaderNonce(header)
		if err != nil {
			return nonce, nil, err
		}
		return n, ciphertext, nil

	case SchemeSuffix:
		if len(ciphertext) < SuffixNonceSize+secretbox.Overhead {
			return nonce, nil, fmt.Errorf("%w: %d bytes for %s", ErrCiphertextTooShort, len(ciphertext), scheme)
		}
		split := len(ciphertext) - SuffixNonceSize
		copy(nonce[:], ciphertext[split:])
		return nonce, ciphertext[:split], nil

	case SchemeLite:
		if len(ciphertext) < LiteNonceSize+secretbox.Overhead {
			return nonce, nil, fmt.Errorf("%w: %d bytes for %s", ErrCiphertextTooShort, len(ciphertext), scheme)
		}
		split := len(ciphertext) - LiteNonceSize
		copy(nonce[:LiteNonceSize], ciphertext[split:])
		return nonce, ciphertext[:split], nil

	default:
		return nonce, nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}
