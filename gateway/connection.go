package gateway

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// Connection wraps a discordgo voice connection as a voice.VoiceState.
type Connection struct {
	vc       *discordgo.VoiceConnection
	speakers *SpeakerTable
}

// NewConnection wraps vc with an empty speaker table.
func NewConnection(vc *discordgo.VoiceConnection) *Connection {
	return &Connection{
		vc:       vc,
		speakers: NewSpeakerTable(),
	}
}

// Attach registers the speaker table for vc's speaking updates.
func (c *Connection) Attach() {
	c.vc.AddHandler(c.speakers.HandleSpeakingUpdate)
}

// Speakers returns the SSRC table fed by Attach.
func (c *Connection) Speakers() *SpeakerTable {
	return c.speakers
}

// Connected reports whether the voice connection finished its handshake.
func (c *Connection) Connected() bool {
	if c.vc == nil {
		return false
	}
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.Ready
}

// GuildID returns the numeric guild id used to name track files.
func (c *Connection) GuildID() (uint64, error) {
	if c.vc == nil {
		return 0, fmt.Errorf("guild id: no voice connection")
	}
	c.vc.RLock()
	raw := c.vc.GuildID
	c.vc.RUnlock()

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("guild id %q: %w", raw, err)
	}
	return id, nil
}
