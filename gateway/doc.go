// Package gateway adapts a discordgo voice connection to the recording
// session.
//
// The voice gateway announces which user speaks on which SSRC through
// speaking updates. A SpeakerTable collects those announcements and
// serves them as a voice.SSRCResolver:
//
//	conn := gateway.NewConnection(vc)
//	conn.Attach()
//	session, err := voice.NewSession(udp, conn, conn.Speakers(), options)
package gateway
