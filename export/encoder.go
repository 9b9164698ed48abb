package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxcore/audio"
)

// maxStderr bounds the encoder diagnostics kept for error messages.
const maxStderr = 4096

// Encoder runs an ffmpeg-compatible executable over raw pipeline PCM.
type Encoder struct {
	path string
}

// NewEncoder locates the encoder executable.
//
// Parameters:
//   - path: Executable name or path, resolved through PATH
//
// Returns:
//   - *Encoder: Encoder bound to the resolved executable
//   - error: ErrEncoderUnavailable when the executable is missing
func NewEncoder(path string) (*Encoder, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NewEncoder",
			"path":     path,
			"error":    err.Error(),
		}).Error("Encoder executable not found")
		return nil, fmt.Errorf("%w: %s: %w", ErrEncoderUnavailable, path, err)
	}
	return &Encoder{path: resolved}, nil
}

// Path returns the resolved executable path.
func (e *Encoder) Path() string {
	return e.path
}

// Args returns the encoder arguments for format. An empty output streams
// the encoded bytes to stdout.
func Args(format Format, output string) []string {
	info := formats[format]
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "s16le",
		"-ar", strconv.Itoa(audio.SampleRate),
		"-ac", strconv.Itoa(audio.Channels),
		"-i", "pipe:0",
	}
	if info.codec != "" {
		args = append(args, "-c:a", info.codec)
	}
	args = append(args, "-f", info.muxer)
	if output == "" {
		args = append(args, info.stream...)
		return append(args, "pipe:1")
	}
	return append(args, "-y", output)
}

// Encode streams pcm through the encoder. With an empty output the encoded
// bytes are returned; otherwise they are written to output.
func (e *Encoder) Encode(ctx context.Context, format Format, pcm io.Reader, output string) ([]byte, error) {
	if !format.NeedsEncoder() {
		return nil, fmt.Errorf("%w: %s is not an encoder format", ErrUnknownFormat, format)
	}

	cmd := exec.CommandContext(ctx, e.path, Args(format, output)...)
	cmd.Stdin = pcm

	var stdout bytes.Buffer
	if output == "" {
		cmd.Stdout = &stdout
	}
	stderr := &tailBuffer{limit: maxStderr}
	cmd.Stderr = stderr

	logrus.WithFields(logrus.Fields{
		"function": "Encoder.Encode",
		"format":   format.String(),
		"output":   output,
	}).Debug("Starting encoder")

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s exited with status %d: %s",
				ErrEncoderFailed, format, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: %w", ErrEncoderFailed, err)
	}

	if output != "" {
		return nil, nil
	}
	return stdout.Bytes(), nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.limit {
		t.buf = t.buf[len(t.buf)-t.limit:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
