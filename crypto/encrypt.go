package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/opd-ai/voxcore/limits"
)

// Nonce is a 24-byte value used for encryption.
type Nonce [NonceSize]byte

// GenerateNonce creates a cryptographically secure random nonce.
func GenerateNonce() (Nonce, error) {
	var nonce Nonce
	_, err := rand.Read(nonce[:])
	if err != nil {
		return Nonce{}, err
	}
	return nonce, nil
}

// Encrypt seals a voice payload for transmission under the given scheme.
//
// The returned bytes follow the RTP header on the wire. For SchemeEmbedded
// the nonce argument is ignored and derived from the header; SchemeSuffix
// appends the full nonce; SchemeLite appends only its first four bytes
// (see LiteNonce).
//
// Parameters:
//   - scheme: Negotiated nonce scheme
//   - header: 12-byte RTP header
//   - plaintext: Payload to seal, optionally prefixed by a header extension
//   - key: Session secret key
//   - nonce: Nonce for the suffix and lite schemes
//
// Returns:
//   - []byte: Ciphertext including any nonce suffix
//   - error: Any error that occurred during encryption
func Encrypt(scheme Scheme, header, plaintext []byte, key [32]byte, nonce Nonce) ([]byte, error) {
	logger := NewLogger("Encrypt").WithField("scheme", scheme.String())

	if len(header) != limits.RTPHeaderSize {
		logger.WithField("header_size", len(header)).Debug("Rejecting invalid header")
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidHeader, len(header))
	}

	switch scheme {
	case SchemeEmbedded:
		headerNonce, err := HeaderNonce(header)
		if err != nil {
			return nil, err
		}
		return secretbox.Seal(nil, plaintext, (*[24]byte)(&headerNonce), &key), nil

	case SchemeSuffix:
		out := secretbox.Seal(nil, plaintext, (*[24]byte)(&nonce), &key)
		return append(out, nonce[:SuffixNonceSize]...), nil

	case SchemeLite:
		var liteNonce Nonce
		copy(liteNonce[:LiteNonceSize], nonce[:LiteNonceSize])
		out := secretbox.Seal(nil, plaintext, (*[24]byte)(&liteNonce), &key)
		return append(out, liteNonce[:LiteNonceSize]...), nil

	default:
		logger.Warn("Unsupported scheme")
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}
