package rtp

import "errors"

var (
	// ErrControlPacket indicates an RTCP datagram. No frame is produced.
	ErrControlPacket = errors.New("control packet")

	// ErrTruncated indicates a datagram too short to carry an RTP header.
	ErrTruncated = errors.New("truncated datagram")

	// ErrNotDecrypted indicates an operation that needs the decrypted payload.
	ErrNotDecrypted = errors.New("frame payload not decrypted")
)
