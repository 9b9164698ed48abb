package gateway

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// ErrInvalidUserID indicates a speaking update with a non-numeric user id.
var ErrInvalidUserID = errors.New("invalid user id")

// SpeakerTable maps SSRCs to user ids. It is safe for concurrent use.
type SpeakerTable struct {
	mu    sync.RWMutex
	users map[uint32]uint64
}

// NewSpeakerTable creates an empty table.
func NewSpeakerTable() *SpeakerTable {
	return &SpeakerTable{users: make(map[uint32]uint64)}
}

// Set records that userID speaks on ssrc, replacing any earlier mapping.
func (t *SpeakerTable) Set(ssrc uint32, userID uint64) {
	t.mu.Lock()
	t.users[ssrc] = userID
	t.mu.Unlock()
}

// Delete forgets the mapping of ssrc.
func (t *SpeakerTable) Delete(ssrc uint32) {
	t.mu.Lock()
	delete(t.users, ssrc)
	t.mu.Unlock()
}

// DeleteUser forgets every SSRC owned by userID.
func (t *SpeakerTable) DeleteUser(userID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ssrc, id := range t.users {
		if id == userID {
			delete(t.users, ssrc)
		}
	}
}

// Resolve returns the user speaking on ssrc.
func (t *SpeakerTable) Resolve(ssrc uint32) (uint64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.users[ssrc]
	return id, ok
}

// Len returns the number of mapped SSRCs.
func (t *SpeakerTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.users)
}

// Update applies one speaking update.
func (t *SpeakerTable) Update(update *discordgo.VoiceSpeakingUpdate) error {
	userID, err := strconv.ParseUint(update.UserID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, update.UserID)
	}
	t.Set(uint32(update.SSRC), userID)
	return nil
}

// HandleSpeakingUpdate is a discordgo voice speaking handler.
func (t *SpeakerTable) HandleSpeakingUpdate(vc *discordgo.VoiceConnection, update *discordgo.VoiceSpeakingUpdate) {
	if err := t.Update(update); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "SpeakerTable.HandleSpeakingUpdate",
			"ssrc":     update.SSRC,
			"error":    err.Error(),
		}).Warn("Ignoring speaking update")
		return
	}

	fields := logrus.Fields{
		"function": "SpeakerTable.HandleSpeakingUpdate",
		"ssrc":     update.SSRC,
		"user_id":  update.UserID,
		"speaking": update.Speaking,
	}
	if vc != nil {
		fields["guild_id"] = vc.GuildID
	}
	logrus.WithFields(fields).Debug("SSRC mapped")
}
