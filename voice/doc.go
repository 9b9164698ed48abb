// Package voice implements the recording session of a voice connection.
//
// A Session reads encrypted RTP datagrams from the voice socket, decrypts
// them with the negotiated scheme, decodes each speaker's Opus stream,
// reconstructs silence from codec and wall clocks, and appends audio to
// one track per speaker:
//
//	ingress goroutine                 decode worker goroutine
//	socket → classify → decrypt → ⟶ queue ⟶ decode → resolve → reconcile → store
//
// Lifecycle:
//
//	Idle → Recording ⇄ Paused → Stopped → Recording ...
//
// Stop drains the frames already queued, applies the speaker filter and
// returns the finalized store, which the export package turns into audio
// files:
//
//	session, err := voice.NewSession(conn, vc, speakers, voice.NewOptions())
//	session.SetSecretKey(crypto.SchemeLite, key)
//	if err := session.Start(); err != nil {
//	    return err
//	}
//	...
//	snapshot, err := session.Stop()
//
// Individual bad datagrams never end a session. Undecryptable, malformed
// or undecodable frames are counted in Stats and dropped.
//
// # Pipeline taps
//
// A single PipelineTap may observe the raw, decrypted or decoded stage.
// With Bypass set, frames stop at the tap and are not recorded, and the
// snapshot returned by Stop cannot be exported.
package voice
