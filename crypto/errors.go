package crypto

import "errors"

// Sentinel errors for crypto package operations.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrDecryptionFailed indicates the authenticator did not verify.
	// The offending datagram is dropped; the session continues.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrCiphertextTooShort indicates the ciphertext cannot contain the
	// nonce suffix and authenticator required by the scheme.
	ErrCiphertextTooShort = errors.New("ciphertext too short")

	// ErrInvalidHeader indicates the RTP header is not 12 bytes.
	ErrInvalidHeader = errors.New("invalid RTP header length")

	// ErrUnsupportedScheme indicates an unknown encryption scheme.
	ErrUnsupportedScheme = errors.New("unsupported encryption scheme")

	// ErrMalformedExtension indicates a one-byte RTP header extension whose
	// declared length runs past the end of the payload.
	ErrMalformedExtension = errors.New("malformed RTP header extension")
)
