package crypto

import (
	"crypto/subtle"
	"errors"
	"runtime"
)

// SecureWipe overwrites data with zeros. It returns an error for nil data.
func SecureWipe(data []byte) error {
	if data == nil {
		return errors.New("cannot wipe nil data")
	}

	zeros := make([]byte, len(data))
	subtle.ConstantTimeCopy(1, data, zeros)

	// Keep the store observable so it is not optimized away.
	runtime.KeepAlive(data)
	return nil
}

// ZeroBytes wipes data and ignores the nil error.
func ZeroBytes(data []byte) {
	_ = SecureWipe(data)
}

// WipeKey erases a transport key once it is no longer needed.
func WipeKey(key *[32]byte) {
	if key == nil {
		return
	}
	ZeroBytes(key[:])
}
