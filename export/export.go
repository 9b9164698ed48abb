package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/voxcore/audio"
	"github.com/opd-ai/voxcore/store"
)

// Options configures an Exporter.
type Options struct {
	// EncoderPath is the ffmpeg-compatible executable for encoder formats.
	EncoderPath string
	// Parallelism bounds concurrent per-speaker exports.
	Parallelism int
	// WorkingDir receives file-mode exports under its .rectmps directory.
	// Empty uses the snapshot's working dir.
	WorkingDir string
}

// NewOptions returns the default export options.
func NewOptions() *Options {
	return &Options{
		EncoderPath: "ffmpeg",
		Parallelism: 4,
	}
}

// Exporter converts snapshots into AudioFiles.
type Exporter struct {
	options Options
}

// NewExporter creates an exporter. A nil options uses NewOptions.
func NewExporter(options *Options) *Exporter {
	if options == nil {
		options = NewOptions()
	}
	opts := *options
	if opts.EncoderPath == "" {
		opts.EncoderPath = "ffmpeg"
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	return &Exporter{options: opts}
}

// Export converts snapshot with the default options.
func Export(ctx context.Context, snapshot *store.Store, format Format, mode store.Mode, filter *store.Filter) (map[uint64]*AudioFile, error) {
	return NewExporter(nil).Export(ctx, snapshot, format, mode, filter)
}

// Export applies filter to snapshot and exports every remaining track.
//
// Parameters:
//   - ctx: Cancels running encoders
//   - snapshot: Store returned by a stopped session
//   - format: Output container
//   - mode: ModeMemory returns bytes, ModeFile returns file paths
//   - filter: Speakers to drop before exporting, may be nil
//
// Returns:
//   - map[uint64]*AudioFile: One file per user id
//   - error: ErrExportUnavailable, ErrEncoderUnavailable, ErrEncoderFailed
//     or an I/O error. No files are returned on error.
func (e *Exporter) Export(ctx context.Context, snapshot *store.Store, format Format, mode store.Mode, filter *store.Filter) (map[uint64]*AudioFile, error) {
	if snapshot.ExportUnavailable() {
		return nil, ErrExportUnavailable
	}
	if _, ok := formats[format]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}

	var encoder *Encoder
	if format.NeedsEncoder() {
		var err error
		if encoder, err = NewEncoder(e.options.EncoderPath); err != nil {
			return nil, err
		}
	}

	if err := snapshot.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize snapshot: %w", err)
	}
	removed := snapshot.ApplyFilter(filter)

	job := &exportJob{
		format:  format,
		mode:    mode,
		encoder: encoder,
		guildID: snapshot.Config().GuildID,
		dir:     e.outputDir(snapshot),
	}

	logrus.WithFields(logrus.Fields{
		"function": "Export",
		"format":   format.String(),
		"mode":     mode.String(),
		"tracks":   snapshot.Len(),
		"filtered": len(removed),
	}).Info("Starting export")

	var mu sync.Mutex
	files := make(map[uint64]*AudioFile)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.options.Parallelism)
	for _, userID := range snapshot.UserIDs() {
		track, ok := snapshot.Get(userID)
		if !ok {
			continue
		}
		g.Go(func() error {
			file, err := job.run(gctx, track)
			if err != nil {
				return fmt.Errorf("export user %d: %w", track.UserID(), err)
			}
			mu.Lock()
			files[track.UserID()] = file
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, f := range files {
			f.discardOutput()
		}
		logrus.WithFields(logrus.Fields{
			"function": "Export",
			"format":   format.String(),
			"error":    err.Error(),
		}).Error("Export failed")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Export",
		"format":   format.String(),
		"files":    len(files),
	}).Info("Export completed")

	return files, nil
}

func (e *Exporter) outputDir(snapshot *store.Store) string {
	if e.options.WorkingDir != "" {
		return store.TempDir(e.options.WorkingDir)
	}
	return store.TempDir(snapshot.Config().WorkingDir)
}

// exportJob holds the settings shared by every track of one Export call.
type exportJob struct {
	format  Format
	mode    store.Mode
	encoder *Encoder
	guildID uint64
	dir     string
}

func (j *exportJob) outputPath(userID uint64) string {
	name := strconv.FormatUint(j.guildID, 10) + "." + strconv.FormatUint(userID, 10) + "." + j.format.Extension()
	return filepath.Join(j.dir, name)
}

func (j *exportJob) run(ctx context.Context, track *store.Track) (*AudioFile, error) {
	file := &AudioFile{
		UserID:         track.UserID(),
		Format:         j.format,
		LeadingSilence: track.LeadingSilence(),
		track:          track,
	}

	switch j.format {
	case FormatRaw:
		return file, j.exportRaw(file, track)
	case FormatWAV:
		return file, j.exportWAV(file, track)
	default:
		return file, j.exportEncoded(ctx, file, track)
	}
}

func (j *exportJob) exportRaw(file *AudioFile, track *store.Track) error {
	if j.mode == store.ModeMemory {
		data, err := track.Bytes()
		if err != nil {
			return err
		}
		file.data = data
		return nil
	}

	if track.Mode() == store.ModeFile {
		file.Path = track.Path()
		return nil
	}

	return j.writeFile(file, func(w io.Writer) error {
		data, err := track.Bytes()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
}

func (j *exportJob) exportWAV(file *AudioFile, track *store.Track) error {
	size := track.Size()

	if j.mode == store.ModeMemory {
		pcm, err := track.Bytes()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		buf.Grow(audio.WAVHeaderSize + len(pcm))
		if err := audio.WriteWAVHeader(&buf, int64(len(pcm))); err != nil {
			return err
		}
		buf.Write(pcm)
		file.data = buf.Bytes()
		return nil
	}

	return j.writeFile(file, func(w io.Writer) error {
		if err := audio.WriteWAVHeader(w, size); err != nil {
			return err
		}
		r, err := track.Open()
		if err != nil {
			return err
		}
		defer r.Close()
		_, err = io.Copy(w, r)
		return err
	})
}

func (j *exportJob) exportEncoded(ctx context.Context, file *AudioFile, track *store.Track) error {
	r, err := track.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	if j.mode == store.ModeMemory {
		data, err := j.encoder.Encode(ctx, j.format, r, "")
		if err != nil {
			return err
		}
		file.data = data
		return nil
	}

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := j.outputPath(track.UserID())
	if _, err := j.encoder.Encode(ctx, j.format, r, path); err != nil {
		_ = os.Remove(path)
		return err
	}
	file.Path = path
	return nil
}

// writeFile creates the export file of file.UserID and fills it.
func (j *exportJob) writeFile(file *AudioFile, fill func(io.Writer) error) error {
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := j.outputPath(file.UserID)
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := fill(out); err != nil {
		out.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write export: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close export: %w", err)
	}
	file.Path = path
	return nil
}
