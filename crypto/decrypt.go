package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

// Decrypt opens a voice payload sealed under the given scheme and returns
// the plaintext exactly as it was sealed. It is the inverse of Encrypt.
//
// Parameters:
//   - scheme: Negotiated nonce scheme
//   - header: 12-byte RTP header of the datagram
//   - ciphertext: Datagram bytes that follow the header
//   - key: Session secret key
//
// Returns:
//   - []byte: Plaintext
//   - error: ErrDecryptionFailed (possibly wrapping ErrCiphertextTooShort)
//     when the datagram cannot be authenticated
func Decrypt(scheme Scheme, header, ciphertext []byte, key [32]byte) ([]byte, error) {
	nonce, box, err := splitNonce(scheme, header, ciphertext)
	if err != nil {
		if errors.Is(err, ErrUnsupportedScheme) || errors.Is(err, ErrInvalidHeader) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	out, ok := secretbox.Open(nil, box, (*[24]byte)(&nonce), &key)
	if !ok {
		NewLogger("Decrypt").
			WithField("scheme", scheme.String()).
			WithField("ciphertext_size", len(ciphertext)).
			Debug("Authenticator mismatch")
		return nil, fmt.Errorf("%w: message authentication failed", ErrDecryptionFailed)
	}

	return out, nil
}

// DecryptOpus opens a voice payload and strips any one-byte RTP header
// extension, returning the bare Opus packet.
func DecryptOpus(scheme Scheme, header, ciphertext []byte, key [32]byte) ([]byte, error) {
	plaintext, err := Decrypt(scheme, header, ciphertext, key)
	if err != nil {
		return nil, err
	}
	return StripHeaderExtension(plaintext)
}
