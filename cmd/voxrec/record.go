package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opd-ai/voxcore"
	"github.com/opd-ai/voxcore/crypto"
	"github.com/opd-ai/voxcore/export"
	"github.com/opd-ai/voxcore/gateway"
	"github.com/opd-ai/voxcore/store"
	"github.com/opd-ai/voxcore/transport"
)

func newRecordCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a voice UDP stream until interrupted or the duration elapses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runRecord(ctx, cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", "0.0.0.0:0", "UDP address receiving voice datagrams")
	flags.String("key", "", "hex encoded 32 byte transport key")
	flags.String("scheme", crypto.SchemeLite.String(), "encryption mode")
	flags.String("format", export.FormatWAV.String(), "export format")
	flags.String("storage", store.ModeFile.String(), "track storage: file or memory")
	flags.Uint64("guild", 0, "guild id used to name track files")
	flags.Uint64("min-free", 0, "minimum free bytes in the working directory")
	flags.Duration("duration", 0, "stop after this long, 0 records until interrupted")
	flags.String("ogg-dir", "", "also store each speaker's Opus stream as Ogg in this directory")
	flags.String("encoder", "ffmpeg", "ffmpeg compatible encoder executable")
	flags.Int("parallelism", 4, "concurrent per-speaker exports")
	flags.StringSlice("speaker", nil, "ssrc=user mapping, repeatable")
	return cmd
}

// connectedSocket reports a bound UDP socket as a ready voice connection.
type connectedSocket struct{}

func (connectedSocket) Connected() bool { return true }

func runRecord(ctx context.Context, cmd *cobra.Command, v *viper.Viper) error {
	options, err := recorderOptions(v)
	if err != nil {
		return err
	}
	scheme, err := crypto.ParseScheme(v.GetString("scheme"))
	if err != nil {
		return err
	}
	key, err := parseKey(v.GetString("key"))
	if err != nil {
		return err
	}
	speakers, err := parseSpeakers(v.GetStringSlice("speaker"))
	if err != nil {
		return err
	}

	conn, err := transport.ListenUDP(v.GetString("listen"))
	if err != nil {
		return err
	}
	defer conn.Close()

	rec, err := voxcore.New(conn, connectedSocket{}, speakers, options)
	if err != nil {
		return err
	}
	rec.SetSecretKey(scheme, key)
	crypto.WipeKey(&key)

	logrus.WithFields(logrus.Fields{
		"function": "runRecord",
		"listen":   conn.LocalAddr().String(),
		"scheme":   scheme.String(),
		"format":   options.Format.String(),
		"speakers": speakers.Len(),
	}).Info("Recording")

	files, err := rec.Record(ctx, v.GetDuration("duration"))
	if err != nil {
		return err
	}

	ids := make([]uint64, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", id, files[id].Path)
	}

	stats := rec.Stats()
	logrus.WithFields(logrus.Fields{
		"function":    "runRecord",
		"received":    stats.Received,
		"written":     stats.Written,
		"queue_drops": stats.QueueDrops,
		"unresolved":  stats.Unresolved,
		"files":       len(files),
	}).Info("Recording exported")
	return nil
}

func recorderOptions(v *viper.Viper) (*voxcore.Options, error) {
	format, err := export.ParseFormat(v.GetString("format"))
	if err != nil {
		return nil, err
	}
	mode, err := store.ParseMode(v.GetString("storage"))
	if err != nil {
		return nil, err
	}

	options := voxcore.NewOptions()
	options.Format = format
	options.OggDir = v.GetString("ogg-dir")
	options.Session.WorkingDir = v.GetString("working-dir")
	options.Session.GuildID = v.GetUint64("guild")
	options.Session.StorageMode = mode
	options.Session.MinFreeBytes = v.GetUint64("min-free")
	options.Export.EncoderPath = v.GetString("encoder")
	options.Export.Parallelism = v.GetInt("parallelism")
	return options, nil
}

func parseKey(s string) ([32]byte, error) {
	var key [32]byte
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		crypto.ZeroBytes(raw)
		return key, fmt.Errorf("decode key: %w", err)
	}
	if len(raw) != len(key) {
		crypto.ZeroBytes(raw)
		return key, fmt.Errorf("key must be %d bytes, got %d", len(key), len(raw))
	}
	copy(key[:], raw)
	crypto.ZeroBytes(raw)
	return key, nil
}

func parseSpeakers(pairs []string) (*gateway.SpeakerTable, error) {
	table := gateway.NewSpeakerTable()
	for _, pair := range pairs {
		ssrcText, userText, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("speaker %q: want ssrc=user", pair)
		}
		ssrc, err := strconv.ParseUint(strings.TrimSpace(ssrcText), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("speaker %q: ssrc: %w", pair, err)
		}
		userID, err := strconv.ParseUint(strings.TrimSpace(userText), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("speaker %q: user: %w", pair, err)
		}
		table.Set(uint32(ssrc), userID)
	}
	return table, nil
}
