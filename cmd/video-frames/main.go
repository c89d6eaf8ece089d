package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ostegm/contractor-app/internal/common"
	"github.com/ostegm/contractor-app/internal/fetch"
	"github.com/ostegm/contractor-app/internal/frames"
	"github.com/ostegm/contractor-app/internal/llm/gemini"
	"github.com/ostegm/contractor-app/internal/pipeline"
	"github.com/ostegm/contractor-app/internal/runner"
	"github.com/ostegm/contractor-app/internal/storage"
	"github.com/ostegm/contractor-app/pkg/project"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		url  = flag.String("url", "", "source URL of the video (required)")
		name = flag.String("name", "walkthrough.mp4", "display name for the video")
		desc = flag.String("description", "", "caller-supplied description of the video")
		out  = flag.String("out", "analysis.json", "output path for the analysis JSON")
	)
	flag.Parse()

	if *url == "" {
		printError("Error: --url is required\n")
		os.Exit(1)
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if err := cfg.ValidateVideo(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	geminiClient, err := gemini.NewClient(gemini.Config{
		APIKey:          cfg.Video.APIKey,
		BaseURL:         cfg.Video.BaseURL,
		Model:           cfg.Video.Model,
		PollInterval:    cfg.Video.PollInterval,
		PollMaxAttempts: cfg.Video.PollMaxAttempts,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize video analysis client", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewHTTPUploader(cfg.Storage.BaseURL, cfg.Storage.APIKey, cfg.Storage.Bucket)
	if err != nil {
		logger.Error("failed to initialize frame storage", "error", err)
		os.Exit(1)
	}

	fetcher := fetch.NewClient(logger)
	extractor := frames.NewExtractor(frames.NewFFmpegDecoder(cfg.Video.FFmpegPath, runner.New(logger)), logger)

	pipe := pipeline.NewVideoPipeline(fetcher, geminiClient, geminiClient, extractor, store, cfg.Video.TempDir, logger)

	result, err := pipe.Run(ctx, pipeline.VideoRequest{
		Video: project.InputDescriptor{
			Name:        *name,
			Type:        "video/mp4",
			Description: *desc,
			SourceURL:   *url,
		},
	})
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}

	type frameOutput struct {
		Filename    string  `json:"filename"`
		TimestampS  float64 `json:"timestamp_s"`
		Description string  `json:"description"`
		StorageRef  string  `json:"storage_ref"`
	}
	output := struct {
		Analysis project.VideoAnalysis `json:"analysis"`
		Frames   []frameOutput         `json:"frames"`
	}{Analysis: result.Analysis}
	for _, f := range result.Frames {
		output.Frames = append(output.Frames, frameOutput{
			Filename:    f.Name,
			TimestampS:  frameTimestamp(result.Analysis.KeyMoments, f.Name),
			Description: f.Description,
			StorageRef:  f.SourceURL,
		})
	}

	outputJSON, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		logger.Error("failed to marshal analysis", "error", err)
		os.Exit(1)
	}
	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create output directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}
	if err := os.WriteFile(*out, outputJSON, 0o644); err != nil {
		logger.Error("failed to write analysis", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("video analysis complete",
		"key_moments", len(result.Analysis.KeyMoments),
		"frames_uploaded", len(result.Frames),
		"output", *out)

	fmt.Printf("Video analysis complete!\n")
	fmt.Printf("- Key moments: %d\n", len(result.Analysis.KeyMoments))
	fmt.Printf("- Frames uploaded: %d\n", len(result.Frames))
	fmt.Printf("- Output: %s\n", *out)
}

// frameTimestamp looks up the key moment matching an uploaded frame name.
func frameTimestamp(moments []project.KeyMoment, filename string) float64 {
	for _, m := range moments {
		if m.Filename() == filename {
			return m.TimestampSeconds
		}
	}
	return 0
}
