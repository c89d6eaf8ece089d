// Package frames extracts still frames from a local video file at
// model-identified key moments.
package frames

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ostegm/contractor-app/internal/runner"
	"github.com/ostegm/contractor-app/pkg/project"
)

// Decoder produces one PNG-encoded frame at the given timestamp. Injected
// so tests can substitute a fake without invoking a real external process.
type Decoder interface {
	DecodeFrame(ctx context.Context, videoPath string, timestampSeconds float64) ([]byte, error)
}

// FFmpegDecoder shells out to ffmpeg, seeking to the timestamp and piping a
// single representative thumbnail frame to stdout. No frame file is written
// to disk.
type FFmpegDecoder struct {
	FFmpeg string
	Runner runner.Runner
}

func NewFFmpegDecoder(ffmpegPath string, r runner.Runner) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegDecoder{FFmpeg: ffmpegPath, Runner: r}
}

func (d *FFmpegDecoder) DecodeFrame(ctx context.Context, videoPath string, timestampSeconds float64) ([]byte, error) {
	stdout, stderr, err := d.Runner.Run(ctx, d.FFmpeg,
		"-ss", strconv.FormatFloat(timestampSeconds, 'f', -1, 64),
		"-i", videoPath,
		"-vf", "thumbnail",
		"-vframes", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	)
	if err != nil {
		return nil, fmt.Errorf("decode frame at %.2fs: %w: %s", timestampSeconds, err, stderr)
	}
	if len(stdout) == 0 {
		return nil, fmt.Errorf("decode frame at %.2fs: empty output", timestampSeconds)
	}
	return stdout, nil
}

// Extractor pulls one frame per key moment.
type Extractor struct {
	decoder Decoder
	log     *slog.Logger
}

func NewExtractor(decoder Decoder, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{decoder: decoder, log: logger}
}

// ExtractFrames decodes one frame for each key moment, in the given order.
// A failed moment is logged and skipped: later moments are independent and
// still valuable, so one bad timestamp never aborts the set. The result
// contains exactly the successfully decoded moments, in original order.
func (e *Extractor) ExtractFrames(ctx context.Context, videoPath string, moments []project.KeyMoment) ([]project.ExtractedFrame, error) {
	if len(moments) == 0 {
		e.log.Info("frames.extract.no_moments", "video", videoPath)
		return nil, nil
	}

	extracted := make([]project.ExtractedFrame, 0, len(moments))
	for _, moment := range moments {
		name := moment.Filename()
		data, err := e.decoder.DecodeFrame(ctx, videoPath, moment.TimestampSeconds)
		if err != nil {
			e.log.Warn("frames.extract.moment_failed",
				"video", videoPath,
				"frame", name,
				"timestamp_s", moment.TimestampSeconds,
				"error", err,
			)
			continue
		}
		e.log.Debug("frames.extract.moment_ok", "frame", name, "bytes", len(data))
		extracted = append(extracted, project.ExtractedFrame{
			Moment:   moment,
			PNG:      data,
			Filename: name,
		})
	}

	e.log.Info("frames.extract.ok", "video", videoPath, "requested", len(moments), "extracted", len(extracted))
	return extracted, nil
}
