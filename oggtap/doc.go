// Package oggtap stores each speaker's Opus stream without decoding it.
//
// A Recorder is a decrypted-frame handler for voice.TapConfig. It writes
// the Opus payloads of every SSRC into its own Ogg/Opus container, which
// is far cheaper than decoding and keeps the original codec quality:
//
//	rec := oggtap.NewRecorder(oggtap.FileSink(dir, "guild-42"))
//	session.ConfigureTap(voice.TapConfig{OnDecrypted: rec.HandleFrame, Bypass: true})
//	...
//	session.Stop()
//	rec.Close()
//
// The explicit silence marker is never written.
package oggtap
