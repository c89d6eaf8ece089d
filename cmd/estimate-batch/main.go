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
	"github.com/ostegm/contractor-app/internal/export"
	"github.com/ostegm/contractor-app/internal/fetch"
	"github.com/ostegm/contractor-app/internal/llm/openai"
	"github.com/ostegm/contractor-app/internal/normalize"
	"github.com/ostegm/contractor-app/internal/pdfrender"
	"github.com/ostegm/contractor-app/internal/pipeline"
	"github.com/ostegm/contractor-app/internal/runner"
	"github.com/ostegm/contractor-app/internal/transcribe"
	"github.com/ostegm/contractor-app/pkg/project"
)

// manifest is the on-disk input format: the project files to process plus
// optional revision context.
type manifest struct {
	ProjectInfo      string                    `json:"project_info,omitempty"`
	Files            []project.InputDescriptor `json:"files"`
	PriorEstimate    *project.Estimate         `json:"prior_estimate,omitempty"`
	RequestedChanges string                    `json:"requested_changes,omitempty"`
}

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		input  = flag.String("input", "", "path to JSON manifest of project files (required)")
		outDir = flag.String("out", ".", "directory to write estimate.json, assessment.txt and estimate.xlsx")
	)
	flag.Parse()

	if *input == "" {
		printError("Error: --input is required\n")
		os.Exit(1)
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		logger.Error("failed to read manifest", "path", *input, "error", err)
		os.Exit(1)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Error("failed to parse manifest", "path", *input, "error", err)
		os.Exit(1)
	}
	if len(m.Files) == 0 {
		printError("Error: manifest contains no files\n")
		os.Exit(1)
	}

	openaiClient := openai.NewClient(openai.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	fetcher := fetch.NewClient(logger)
	rasterizer := pdfrender.NewRasterizer(pdfrender.Config{
		Pdftoppm:     cfg.PDF.PdftoppmPath,
		DPI:          cfg.PDF.DPI,
		MaxDimension: cfg.PDF.MaxDimension,
	}, runner.New(logger), logger)
	transcriber := transcribe.NewWhisperTranscriber(openaiClient.Raw(), logger)
	normalizer := normalize.NewNormalizer(fetcher, rasterizer, transcriber, logger)

	pipe := pipeline.NewDocumentPipeline(normalizer, openaiClient, openaiClient, logger)

	result, err := pipe.Run(ctx, pipeline.DocumentRequest{
		ProjectInfo:      m.ProjectInfo,
		Files:            m.Files,
		PriorEstimate:    m.PriorEstimate,
		RequestedChanges: m.RequestedChanges,
	})
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("failed to create output directory", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	estimateJSON, err := json.MarshalIndent(result.Estimate, "", "  ")
	if err != nil {
		logger.Error("failed to marshal estimate", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outDir, "estimate.json"), estimateJSON, 0o644); err != nil {
		logger.Error("failed to write estimate.json", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outDir, "assessment.txt"), []byte(result.Assessment), 0o644); err != nil {
		logger.Error("failed to write assessment.txt", "error", err)
		os.Exit(1)
	}

	xlsxBytes, err := export.NewService(logger).ExportEstimateXLSX(result.Estimate)
	if err != nil {
		logger.Error("failed to export XLSX", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(filepath.Join(*outDir, "estimate.xlsx"), xlsxBytes, 0o644); err != nil {
		logger.Error("failed to write estimate.xlsx", "error", err)
		os.Exit(1)
	}

	logger.Info("estimate complete",
		"files", len(m.Files),
		"items", len(result.Estimate.EstimateItems),
		"total_min", result.Estimate.EstimatedTotalMin,
		"total_max", result.Estimate.EstimatedTotalMax,
		"output_dir", *outDir)

	fmt.Printf("Estimate complete!\n")
	fmt.Printf("- Line items: %d\n", len(result.Estimate.EstimateItems))
	fmt.Printf("- Total range: %.0f - %.0f\n", result.Estimate.EstimatedTotalMin, result.Estimate.EstimatedTotalMax)
	fmt.Printf("- Output: %s\n", *outDir)
}
