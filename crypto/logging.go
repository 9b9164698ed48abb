package crypto

import (
	"encoding/hex"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

// fingerprintBytes is the length of the key fingerprint shown in logs.
const fingerprintBytes = 4

// LoggerHelper provides standardized logging functionality for the crypto package
type LoggerHelper struct {
	function string
	fields   logrus.Fields
}

// NewLogger creates a new logger helper with standardized fields
func NewLogger(function string) *LoggerHelper {
	return &LoggerHelper{
		function: function,
		fields: logrus.Fields{
			"function": function,
			"package":  "crypto",
		},
	}
}

// WithField adds a custom field to the logger
func (l *LoggerHelper) WithField(key string, value interface{}) *LoggerHelper {
	l.fields[key] = value
	return l
}

// Debug logs a debug message
func (l *LoggerHelper) Debug(message string) {
	logrus.WithFields(l.fields).Debug(message)
}

// Warn logs a warning message
func (l *LoggerHelper) Warn(message string) {
	logrus.WithFields(l.fields).Warn(message)
}

// SecureFieldHash returns log fields that identify sensitive data without
// revealing it: a truncated BLAKE2b-256 fingerprint and the length.
func SecureFieldHash(data []byte, name string) logrus.Fields {
	fingerprint := "nil"
	if len(data) > 0 {
		sum := blake2b.Sum256(data)
		fingerprint = hex.EncodeToString(sum[:fingerprintBytes])
	}

	return logrus.Fields{
		name + "_fingerprint": fingerprint,
		name + "_size":        len(data),
	}
}
