package gateway

import (
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeakerTable(t *testing.T) {
	table := NewSpeakerTable()

	_, ok := table.Resolve(1)
	assert.False(t, ok)

	table.Set(1, 100)
	table.Set(2, 200)
	table.Set(3, 100)

	id, ok := table.Resolve(1)
	assert.True(t, ok)
	assert.Equal(t, uint64(100), id)
	assert.Equal(t, 3, table.Len())

	table.Set(1, 300)
	id, _ = table.Resolve(1)
	assert.Equal(t, uint64(300), id)

	table.Delete(2)
	_, ok = table.Resolve(2)
	assert.False(t, ok)

	table.DeleteUser(100)
	_, ok = table.Resolve(3)
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len())
}

func TestSpeakerTableUpdate(t *testing.T) {
	tests := []struct {
		name    string
		update  discordgo.VoiceSpeakingUpdate
		wantErr bool
		want    uint64
	}{
		{"numeric id", discordgo.VoiceSpeakingUpdate{UserID: "80351110224678912", SSRC: 12}, false, 80351110224678912},
		{"empty id", discordgo.VoiceSpeakingUpdate{UserID: "", SSRC: 13}, true, 0},
		{"name instead of id", discordgo.VoiceSpeakingUpdate{UserID: "alice", SSRC: 14}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewSpeakerTable()
			err := table.Update(&tt.update)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidUserID)
				assert.Equal(t, 0, table.Len())
				return
			}
			require.NoError(t, err)
			id, ok := table.Resolve(uint32(tt.update.SSRC))
			assert.True(t, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestHandleSpeakingUpdate(t *testing.T) {
	table := NewSpeakerTable()
	vc := &discordgo.VoiceConnection{GuildID: "42"}

	table.HandleSpeakingUpdate(vc, &discordgo.VoiceSpeakingUpdate{UserID: "7", SSRC: 99, Speaking: true})
	table.HandleSpeakingUpdate(nil, &discordgo.VoiceSpeakingUpdate{UserID: "bad", SSRC: 98})

	id, ok := table.Resolve(99)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), id)
	_, ok = table.Resolve(98)
	assert.False(t, ok)
}

func TestSpeakerTableConcurrent(t *testing.T) {
	table := NewSpeakerTable()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				table.Set(uint32(n*100+j), uint64(n))
				table.Resolve(uint32(j))
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 800, table.Len())
}

func TestConnection(t *testing.T) {
	vc := &discordgo.VoiceConnection{GuildID: "1234"}
	conn := NewConnection(vc)

	assert.False(t, conn.Connected())
	vc.Lock()
	vc.Ready = true
	vc.Unlock()
	assert.True(t, conn.Connected())

	id, err := conn.GuildID()
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), id)
	assert.NotNil(t, conn.Speakers())

	bad := NewConnection(&discordgo.VoiceConnection{GuildID: "guild"})
	_, err = bad.GuildID()
	assert.Error(t, err)

	var none Connection
	assert.False(t, none.Connected())
	_, err = none.GuildID()
	assert.Error(t, err)
}
