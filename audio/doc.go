// Package audio provides Opus decoding and PCM helpers for the voice
// receive pipeline.
//
// The receive pipeline:
//
//	Opus packet → Decoder (one per SSRC) → 48kHz stereo S16LE PCM → store
//
// Two decoder backends are available:
//
//   - pion/opus (default): pure Go, no cgo. Decodes SILK-only packets;
//     mono output is duplicated to both channels.
//   - libopus via gopkg.in/hraban/opus.v2: enabled with the "libopus"
//     build tag. Handles every Opus mode. Requires libopus and cgo.
//
// Decoder state (packet-loss-concealment history, SILK LPC state) belongs
// to a single media source. Never share a Decoder between SSRCs.
//
// The package also writes the canonical 44-byte WAV header used by the
// export pipeline.
package audio
