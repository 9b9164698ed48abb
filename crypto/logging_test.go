package crypto

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestLogger captures JSON log output for the duration of the test.
func setupTestLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	out, formatter, level := logrus.StandardLogger().Out, logrus.StandardLogger().Formatter, logrus.GetLevel()
	logrus.SetOutput(buf)
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		logrus.SetOutput(out)
		logrus.SetFormatter(formatter)
		logrus.SetLevel(level)
	})
	return buf
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("Decrypt")
	assert.Equal(t, "Decrypt", logger.function)
	assert.Equal(t, "Decrypt", logger.fields["function"])
	assert.Equal(t, "crypto", logger.fields["package"])
}

func TestLoggerHelperWithField(t *testing.T) {
	logger := NewLogger("Encrypt").
		WithField("scheme", "lite").
		WithField("size", 12)

	assert.Equal(t, "lite", logger.fields["scheme"])
	assert.Equal(t, 12, logger.fields["size"])
}

func TestLoggerHelperLevels(t *testing.T) {
	tests := []struct {
		level string
		log   func(*LoggerHelper, string)
	}{
		{"debug", (*LoggerHelper).Debug},
		{"warning", (*LoggerHelper).Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := setupTestLogger(t)
			tt.log(NewLogger("TestFunction"), "hello")

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "hello", entry["msg"])
			assert.Equal(t, "TestFunction", entry["function"])
			assert.Equal(t, "crypto", entry["package"])
		})
	}
}

func TestSecureFieldHash(t *testing.T) {
	key := []byte{0xDE, 0xAD, 0xBE, 0xEF, 5, 6, 7, 8}

	fields := SecureFieldHash(key, "key")
	fingerprint, ok := fields["key_fingerprint"].(string)
	require.True(t, ok)
	assert.Len(t, fingerprint, 2*fingerprintBytes)
	assert.NotEqual(t, "deadbeef", fingerprint)
	assert.Equal(t, len(key), fields["key_size"])
	assert.Equal(t, fields, SecureFieldHash(key, "key"))

	other := SecureFieldHash([]byte{0xDE, 0xAD, 0xBE, 0xEF, 5, 6, 7, 9}, "key")
	assert.NotEqual(t, fingerprint, other["key_fingerprint"])

	empty := SecureFieldHash(nil, "key")
	assert.Equal(t, "nil", empty["key_fingerprint"])
	assert.Equal(t, 0, empty["key_size"])
	_, leaked := fields["key_preview"]
	assert.False(t, leaked)
}
