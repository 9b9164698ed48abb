// Package rtp classifies voice datagrams and carries them through the
// receive pipeline as [Frame] values.
//
// Voice servers multiplex RTP media and RTCP control traffic on one UDP
// socket. [Classify] discards control datagrams (payload types 200-204 in
// the second byte), validates sizes against the limits package, and parses
// the fixed 12-byte RTP header:
//
//	frame, err := rtp.Classify(buf[:n], time.Now())
//	if errors.Is(err, rtp.ErrControlPacket) {
//	    continue
//	}
//	if err := frame.Decrypt(crypto.SchemeLite, key); err != nil {
//	    continue // one bad datagram never ends the session
//	}
//
// The header is parsed at fixed offsets rather than through the pion/rtp
// unmarshaller because voice servers set the extension bit while the
// extension itself is encrypted inside the payload. [Frame.RTPHeader]
// exposes a pion/rtp view of the same fields.
package rtp
