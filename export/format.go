package export

import (
	"fmt"
	"strings"
)

// Format is an export container.
type Format uint8

const (
	FormatRaw Format = iota
	FormatWAV
	FormatMP3
	FormatOgg
	FormatFLAC
	FormatM4A
	FormatMKA
	FormatMKV
	FormatMP4
)

type formatInfo struct {
	name   string
	muxer  string
	codec  string
	stream []string // extra output flags for non-seekable output
}

var formats = map[Format]formatInfo{
	FormatRaw:  {name: "raw"},
	FormatWAV:  {name: "wav"},
	FormatMP3:  {name: "mp3", muxer: "mp3", codec: "libmp3lame"},
	FormatOgg:  {name: "ogg", muxer: "ogg", codec: "libopus"},
	FormatFLAC: {name: "flac", muxer: "flac", codec: "flac"},
	FormatM4A:  {name: "m4a", muxer: "ipod", codec: "aac", stream: []string{"-movflags", "frag_keyframe+empty_moov"}},
	FormatMKA:  {name: "mka", muxer: "matroska", codec: "libopus"},
	FormatMKV:  {name: "mkv", muxer: "matroska", codec: "libopus"},
	FormatMP4:  {name: "mp4", muxer: "mp4", codec: "aac", stream: []string{"-movflags", "frag_keyframe+empty_moov"}},
}

// String returns the format name, which is also its file extension.
func (f Format) String() string {
	if info, ok := formats[f]; ok {
		return info.name
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// Extension returns the file extension used for exported files.
func (f Format) Extension() string {
	if f == FormatRaw {
		return "pcm"
	}
	return f.String()
}

// NeedsEncoder reports whether the format is produced by the external encoder.
func (f Format) NeedsEncoder() bool {
	return f != FormatRaw && f != FormatWAV
}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if name == "pcm" {
		return FormatRaw, nil
	}
	for f, info := range formats {
		if info.name == name {
			return f, nil
		}
	}
	return FormatRaw, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Formats returns every supported format in declaration order.
func Formats() []Format {
	return []Format{FormatRaw, FormatWAV, FormatMP3, FormatOgg, FormatFLAC, FormatM4A, FormatMKA, FormatMKV, FormatMP4}
}
