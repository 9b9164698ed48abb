// Package voxcore records the speakers of a voice channel into
// per-speaker audio files.
//
// A voice server sends one encrypted Opus stream per speaker over a
// single UDP socket. voxcore decrypts and decodes those streams, rebuilds
// the silence between and before each speaker's talk spurts, and exports
// one time-aligned track per speaker as raw PCM, WAV or any container
// ffmpeg can produce.
//
// # Getting Started
//
//	options := voxcore.NewOptions()
//	options.Session.GuildID = 42
//	options.Format = export.FormatFLAC
//
//	rec, err := voxcore.New(conn, state, resolver, options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rec.SetSecretKey(crypto.SchemeLite, key)
//
//	if err := rec.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	time.Sleep(time.Minute)
//
//	files, err := rec.Stop(ctx)
//	for userID, file := range files {
//	    fmt.Println(userID, file.Path)
//	    defer file.Close()
//	}
//
// conn is any transport.PacketReader, usually the voice UDP socket.
// state and resolver come from the voice gateway; package gateway
// provides both for discordgo connections.
//
// # Packages
//
//   - [voice]: recording session state machine, ingress and decode worker
//   - [timing]: silence reconstruction from codec and wall clocks
//   - [store]: per-speaker PCM tracks in memory or temp files
//   - [export]: raw, WAV and ffmpeg encoded output
//   - [crypto]: transport decryption
//   - [rtp]: datagram classification
//   - [audio]: Opus decoding and PCM helpers
//   - [oggtap]: Opus passthrough into Ogg containers
//   - [gateway]: discordgo adapter
//
// # Temporary Files
//
// File mode writes tracks to <WorkingDir>/.rectmps/<guild>.<user>.tmp.
// Call AudioFile.Close on every exported file, or Purge the working
// directory, to remove them.
package voxcore
