package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxcore/limits"
)

// DefaultPollInterval bounds how long a single socket read may block, and
// therefore how quickly the ingress loop notices cancellation.
const DefaultPollInterval = 10 * time.Millisecond

// PacketReader is the read side of a datagram socket. Every
// net.PacketConn satisfies it.
type PacketReader interface {
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	SetReadDeadline(t time.Time) error
}

// DatagramHandler receives one datagram. data aliases the ingress buffer
// and is only valid for the duration of the call.
type DatagramHandler func(data []byte, addr net.Addr, receivedAt time.Time)

// IngressConfig configures an Ingress loop.
type IngressConfig struct {
	// PollInterval is the read deadline applied to each read.
	PollInterval time.Duration
	// BufferSize is the receive buffer length. Longer datagrams are truncated
	// by the kernel and rejected by the classifier.
	BufferSize int
	// Now supplies receive timestamps. Defaults to time.Now. Read deadlines
	// always use the system clock.
	Now func() time.Time
}

// Ingress reads datagrams from a socket and hands them to a handler on
// the calling goroutine.
type Ingress struct {
	conn    PacketReader
	handler DatagramHandler
	config  IngressConfig
}

// NewIngress creates an ingress loop over conn.
//
// Parameters:
//   - conn: Socket to read; the loop never closes it
//   - handler: Called for every datagram in arrival order
//   - config: Poll and buffer settings; zero values take defaults
//
// Returns:
//   - *Ingress: Loop ready to Run
func NewIngress(conn PacketReader, handler DatagramHandler, config IngressConfig) *Ingress {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.BufferSize <= 0 {
		config.BufferSize = limits.MaxDatagram + 1
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Ingress{
		conn:    conn,
		handler: handler,
		config:  config,
	}
}

// Run reads until ctx is cancelled or the socket fails. Cancellation is
// observed within one poll interval and returns nil.
func (i *Ingress) Run(ctx context.Context) error {
	buffer := make([]byte, i.config.BufferSize)

	logrus.WithFields(logrus.Fields{
		"function":      "Ingress.Run",
		"poll_interval": i.config.PollInterval,
		"buffer_size":   i.config.BufferSize,
	}).Debug("Ingress loop started")

	for {
		select {
		case <-ctx.Done():
			logrus.WithFields(logrus.Fields{
				"function": "Ingress.Run",
			}).Debug("Ingress loop stopped")
			return nil
		default:
		}

		if err := i.readOne(buffer); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// readOne performs a single bounded read. Timeouts and oversized reads
// are not errors.
func (i *Ingress) readOne(buffer []byte) error {
	_ = i.conn.SetReadDeadline(time.Now().Add(i.config.PollInterval))

	n, addr, err := i.conn.ReadFrom(buffer)
	if err != nil {
		return i.handleReadError(err)
	}

	i.handler(buffer[:n], addr, i.config.Now())
	return nil
}

// handleReadError separates transient read errors from fatal ones.
func (i *Ingress) handleReadError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nil
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Err != nil && opErr.Err.Error() == "message too long" {
		logrus.WithFields(logrus.Fields{
			"function": "Ingress.readOne",
			"error":    err.Error(),
		}).Debug("Discarding oversized datagram")
		return nil
	}
	if errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("voice socket closed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Ingress.readOne",
		"error":    err.Error(),
	}).Error("Voice socket read failed")
	return fmt.Errorf("voice socket read: %w", err)
}

// ListenUDP opens a UDP socket for the voice receive path.
func ListenUDP(address string) (net.PacketConn, error) {
	conn, err := net.ListenPacket("udp", address)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", address, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "ListenUDP",
		"local_addr": conn.LocalAddr().String(),
	}).Info("Voice socket listening")

	return conn, nil
}
