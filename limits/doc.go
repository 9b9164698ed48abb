// Package limits provides centralized size constants and validation functions
// for voice datagrams.
//
// # Size Hierarchy
//
//   - RTPHeaderSize (12 bytes): fixed RTP header, no CSRC list.
//   - MinVoiceDatagram (28 bytes): header plus the Poly1305 authenticator.
//     Anything shorter cannot authenticate and is dropped before decryption.
//   - MaxDatagram (4096 bytes): read buffer size for the voice socket.
//
// # Validation Functions
//
//	if err := limits.ValidateDatagram(buf[:n]); err != nil {
//	    // drop the datagram, keep reading
//	}
//
// The errors are sentinels and can be matched with errors.Is:
//
//   - ErrDatagramEmpty
//   - ErrDatagramTooSmall
//   - ErrDatagramTooLarge
package limits
