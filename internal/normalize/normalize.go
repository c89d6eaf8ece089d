// Package normalize turns caller-supplied file descriptors into canonical,
// model-ready input files.
package normalize

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ostegm/contractor-app/constants"
	"github.com/ostegm/contractor-app/internal/transcribe"
	"github.com/ostegm/contractor-app/pkg/project"
)

// batchParallelism bounds concurrent descriptor processing in NormalizeAll.
const batchParallelism = 4

// ContentFetcher retrieves remote descriptor content.
type ContentFetcher interface {
	FetchBinary(ctx context.Context, url, expectedTypePrefix string) ([]byte, error)
	FetchText(ctx context.Context, url, expectedTypePrefix string) (string, error)
}

// Rasterizer expands PDF bytes into page-level image files.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfBytes []byte, originalName, originalDescription string) ([]project.InputFile, error)
}

// Normalizer dispatches each descriptor on its resolved media category and
// produces zero or more canonical input files.
type Normalizer struct {
	fetcher     ContentFetcher
	rasterizer  Rasterizer
	transcriber transcribe.Transcriber
	log         *slog.Logger
}

func NewNormalizer(fetcher ContentFetcher, rasterizer Rasterizer, transcriber transcribe.Transcriber, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{fetcher: fetcher, rasterizer: rasterizer, transcriber: transcriber, log: logger}
}

// Normalize processes one descriptor. Video and unsupported types yield
// zero files with a recorded warning; every other failure is fatal for the
// descriptor. A descriptor with no source URL always fails, regardless of
// type.
func (n *Normalizer) Normalize(ctx context.Context, d project.InputDescriptor) ([]project.InputFile, error) {
	category := d.Category()
	n.log.Debug("normalize.start", "file", d.Name, "type", d.Type, "category", string(category))

	if d.SourceURL == "" {
		return nil, fmt.Errorf("file %s has no source url, cannot process", d.Name)
	}

	switch category {
	case constants.MediaPDF:
		return n.normalizePDF(ctx, d)
	case constants.MediaImage:
		return n.normalizeImage(ctx, d)
	case constants.MediaAudio:
		return n.normalizeAudio(ctx, d)
	case constants.MediaText:
		return n.normalizeText(ctx, d)
	case constants.MediaVideo:
		// Video has its own dedicated pipeline.
		n.log.Warn("normalize.skip", "file", d.Name, "type", d.Type, "reason", "video excluded from document pipeline")
		return nil, nil
	default:
		n.log.Warn("normalize.skip", "file", d.Name, "type", d.Type, "reason", "unsupported media type")
		return nil, nil
	}
}

// NormalizeAll processes descriptors with bounded parallelism, rejoining
// results in input order so prompts to the assessment model stay
// deterministic. Strict-fail: the first failed descriptor fails the whole
// batch, since a partially-assessed project is worse than a clearly failed
// one.
func (n *Normalizer) NormalizeAll(ctx context.Context, descriptors []project.InputDescriptor) ([]project.InputFile, error) {
	results := make([][]project.InputFile, len(descriptors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchParallelism)
	for i, d := range descriptors {
		i, d := i, d
		g.Go(func() error {
			files, err := n.Normalize(gctx, d)
			if err != nil {
				return fmt.Errorf("normalize %s: %w", d.Name, err)
			}
			results[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []project.InputFile
	for _, files := range results {
		out = append(out, files...)
	}
	n.log.Info("normalize.batch.ok", "descriptors", len(descriptors), "files", len(out))
	return out, nil
}

func (n *Normalizer) normalizePDF(ctx context.Context, d project.InputDescriptor) ([]project.InputFile, error) {
	pdfBytes, err := n.fetcher.FetchBinary(ctx, d.SourceURL, "application/pdf")
	if err != nil {
		return nil, err
	}
	pages, err := n.rasterizer.Rasterize(ctx, pdfBytes, d.Name, d.Description)
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func (n *Normalizer) normalizeImage(ctx context.Context, d project.InputDescriptor) ([]project.InputFile, error) {
	data, err := n.fetcher.FetchBinary(ctx, d.SourceURL, "image/")
	if err != nil {
		return nil, err
	}
	return []project.InputFile{
		project.NewImageFile(d.Name, d.Type, d.Description, d.SourceURL, data),
	}, nil
}

// normalizeAudio fetches the audio and replaces it with its transcript:
// transcription is a terminal transform, so the canonical file is retyped
// to plain text and never carries an audio slot.
func (n *Normalizer) normalizeAudio(ctx context.Context, d project.InputDescriptor) ([]project.InputFile, error) {
	data, err := n.fetcher.FetchBinary(ctx, d.SourceURL, "audio/")
	if err != nil {
		return nil, err
	}
	transcript, err := n.transcriber.Transcribe(ctx, data, d.Type)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	n.log.Info("normalize.audio.transcribed", "file", d.Name, "transcript_len", len(transcript))
	return []project.InputFile{
		project.NewTextFile(d.Name, constants.MIMETextPlain, d.Description, d.SourceURL, transcript),
	}, nil
}

func (n *Normalizer) normalizeText(ctx context.Context, d project.InputDescriptor) ([]project.InputFile, error) {
	text, err := n.fetcher.FetchText(ctx, d.SourceURL, "text/")
	if err != nil {
		return nil, err
	}
	return []project.InputFile{
		project.NewTextFile(d.Name, d.Type, d.Description, d.SourceURL, text),
	}, nil
}
