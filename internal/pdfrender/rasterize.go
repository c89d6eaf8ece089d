// Package pdfrender turns PDF bytes into an ordered sequence of page
// images ready for the assessment model.
package pdfrender

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/ostegm/contractor-app/constants"
	"github.com/ostegm/contractor-app/internal/runner"
	"github.com/ostegm/contractor-app/pkg/project"
)

// Config holds rasterization settings.
type Config struct {
	Pdftoppm string // path to the pdftoppm binary
	DPI      int    // render resolution, 150 balances legibility and upload size
	// MaxDimension bounds page width/height in pixels; larger renders are
	// downscaled with Lanczos before encoding. Zero disables the bound.
	MaxDimension int
}

// Rasterizer renders every page of a PDF to a PNG-encoded canonical file.
type Rasterizer struct {
	cfg    Config
	runner runner.Runner
	log    *slog.Logger
}

func NewRasterizer(cfg Config, r runner.Runner, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	return &Rasterizer{cfg: cfg, runner: r, log: logger}
}

// Rasterize renders every page of pdfBytes at the configured DPI. Each page
// is named from the sanitized original base name plus a 1-based page suffix
// and described with a page-scoped description so downstream prompts retain
// traceability to the source document. Zero rendered pages is a fatal error
// for the file; a page that encodes to zero bytes is skipped with a warning.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfBytes []byte, originalName, originalDescription string) ([]project.InputFile, error) {
	tmpDir, err := os.MkdirTemp("", "ca-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.log.Warn("pdf.tmpdir.remove_failed", "dir", tmpDir, "error", err)
		}
	}()

	pdfPath := filepath.Join(tmpDir, "source.pdf")
	if err := os.WriteFile(pdfPath, pdfBytes, 0o600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", r.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("rasterize %s: %w: %s", originalName, err, errb)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdf file %s converted to zero pages", originalName)
	}

	baseName := sanitizeBaseName(originalName)
	sourceDesc := originalDescription
	if sourceDesc == "" {
		sourceDesc = originalName
	}

	pages := make([]project.InputFile, 0, len(matches))
	for i, path := range matches {
		pageNum := i + 1
		data, err := r.loadPage(path)
		if err != nil {
			return nil, fmt.Errorf("read page %d of %s: %w", pageNum, originalName, err)
		}
		if len(data) == 0 {
			r.log.Warn("pdf.page.empty", "file", originalName, "page", pageNum)
			continue
		}

		page := project.NewImageFile(
			fmt.Sprintf("%s_page_%d.png", baseName, pageNum),
			constants.MIMEImagePNG,
			fmt.Sprintf("Page %d of PDF document: %s", pageNum, sourceDesc),
			"", // derived pages have no independent remote location
			data,
		)
		pages = append(pages, page)
	}

	r.log.Info("pdf.rasterize.ok", "file", originalName, "pages", len(pages), "dpi", r.cfg.DPI)
	return pages, nil
}

// loadPage reads one rendered page, downscaling it when it exceeds the
// configured dimension bound.
func (r *Rasterizer) loadPage(path string) ([]byte, error) {
	if r.cfg.MaxDimension <= 0 {
		return os.ReadFile(path)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Dx() > r.cfg.MaxDimension || bounds.Dy() > r.cfg.MaxDimension {
		img = imaging.Fit(img, r.cfg.MaxDimension, r.cfg.MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
