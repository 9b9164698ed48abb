// Package crypto implements voice payload decryption for the voxcore SDK.
//
// Voice datagrams are sealed with XSalsa20-Poly1305 (NaCl secretbox) under a
// per-connection key delivered by the gateway. Three nonce schemes are
// negotiated by the voice server:
//
//   - [SchemeEmbedded]: the 12-byte RTP header, zero-padded to 24 bytes
//   - [SchemeSuffix]: a random 24-byte nonce appended to the ciphertext
//   - [SchemeLite]: a 4-byte counter appended to the ciphertext, zero-padded
//
// # Decryption
//
//	opus, err := crypto.DecryptOpus(crypto.SchemeLite, header, ciphertext, key)
//	if errors.Is(err, crypto.ErrDecryptionFailed) {
//	    // drop this datagram and continue
//	}
//
// DecryptOpus also removes a leading one-byte RTP header extension
// (profile 0xBEDE) so the result is a bare Opus packet. [Decrypt] returns
// the plaintext verbatim and is the exact inverse of [Encrypt].
//
// # Logging
//
// Functions log through [LoggerHelper], which tags entries with the
// function and package names. Keys are never logged, only the short
// fingerprint from [SecureFieldHash].
package crypto
