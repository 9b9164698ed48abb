package voice

import "sync/atomic"

// Stats counts what happened to received datagrams.
type Stats struct {
	Received        uint64
	Paused          uint64
	Control         uint64
	Malformed       uint64
	DecryptFailures uint64
	Bypassed        uint64
	QueueDrops      uint64
	Silence         uint64
	DecodeErrors    uint64
	Unresolved      uint64
	Filtered        uint64
	Written         uint64
	StoreErrors     uint64
}

type counters struct {
	received        atomic.Uint64
	paused          atomic.Uint64
	control         atomic.Uint64
	malformed       atomic.Uint64
	decryptFailures atomic.Uint64
	bypassed        atomic.Uint64
	queueDrops      atomic.Uint64
	silence         atomic.Uint64
	decodeErrors    atomic.Uint64
	unresolved      atomic.Uint64
	filtered        atomic.Uint64
	written         atomic.Uint64
	storeErrors     atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Received:        c.received.Load(),
		Paused:          c.paused.Load(),
		Control:         c.control.Load(),
		Malformed:       c.malformed.Load(),
		DecryptFailures: c.decryptFailures.Load(),
		Bypassed:        c.bypassed.Load(),
		QueueDrops:      c.queueDrops.Load(),
		Silence:         c.silence.Load(),
		DecodeErrors:    c.decodeErrors.Load(),
		Unresolved:      c.unresolved.Load(),
		Filtered:        c.filtered.Load(),
		Written:         c.written.Load(),
		StoreErrors:     c.storeErrors.Load(),
	}
}
