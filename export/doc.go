// Package export turns a finalized recording snapshot into one audio file
// per speaker.
//
// Supported formats:
//
//   - raw: the 48kHz stereo S16LE track as recorded
//   - wav: the track behind a 44-byte RIFF header, no re-encoding
//   - mp3, ogg, flac, m4a, mka, mkv, mp4: the track streamed through an
//     external encoder process (ffmpeg by default)
//
// In memory mode each AudioFile holds its bytes; in file mode it names a
// file under the working directory's .rectmps directory. Closing an
// AudioFile deletes every temporary file it owns, including the
// speaker's recorded track.
//
// Tracks are never mixed. A speaker who joined after the session started
// carries its leading silence on the AudioFile so that a consumer can
// align the tracks:
//
//	files, err := export.Export(ctx, snapshot, export.FormatWAV, store.ModeMemory, nil)
//	for userID, f := range files {
//	    offset := f.LeadingSilenceBytes()
//	    ...
//	    f.Close()
//	}
package export
