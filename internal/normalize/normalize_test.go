package normalize

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ostegm/contractor-app/constants"
	"github.com/ostegm/contractor-app/pkg/project"
)

type fakeFetcher struct {
	binary map[string][]byte
	text   map[string]string
}

func (f *fakeFetcher) FetchBinary(ctx context.Context, url, prefix string) ([]byte, error) {
	if data, ok := f.binary[url]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("fetch %s: status 404", url)
}

func (f *fakeFetcher) FetchText(ctx context.Context, url, prefix string) (string, error) {
	if text, ok := f.text[url]; ok {
		return text, nil
	}
	return "", fmt.Errorf("fetch %s: status 404", url)
}

type fakeRasterizer struct {
	pagesPerPDF int
	err         error
}

func (f *fakeRasterizer) Rasterize(ctx context.Context, pdfBytes []byte, name, desc string) ([]project.InputFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	var pages []project.InputFile
	for i := 1; i <= f.pagesPerPDF; i++ {
		pages = append(pages, project.NewImageFile(
			fmt.Sprintf("%s_page_%d.png", strings.TrimSuffix(name, ".pdf"), i),
			constants.MIMEImagePNG,
			fmt.Sprintf("Page %d of PDF document: %s", i, name),
			"",
			[]byte("page"),
		))
	}
	return pages, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, mediaType string) (string, error) {
	return f.text, f.err
}

func newTestNormalizer(fetcher *fakeFetcher, rasterizer *fakeRasterizer, transcriber *fakeTranscriber) *Normalizer {
	if fetcher == nil {
		fetcher = &fakeFetcher{}
	}
	if rasterizer == nil {
		rasterizer = &fakeRasterizer{pagesPerPDF: 1}
	}
	if transcriber == nil {
		transcriber = &fakeTranscriber{text: "transcript"}
	}
	return NewNormalizer(fetcher, rasterizer, transcriber, nil)
}

func TestNormalizeMissingSourceURLIsFatal(t *testing.T) {
	n := newTestNormalizer(nil, nil, nil)
	_, err := n.Normalize(context.Background(), project.InputDescriptor{Name: "notes.txt", Type: "text/plain"})
	if err == nil {
		t.Fatal("expected error for descriptor without source url")
	}
	if !strings.Contains(err.Error(), "no source url") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeMissingSourceURLFatalEvenForVideo(t *testing.T) {
	n := newTestNormalizer(nil, nil, nil)
	_, err := n.Normalize(context.Background(), project.InputDescriptor{Name: "walk.mp4", Type: "video/mp4"})
	if err == nil {
		t.Fatal("expected error for video descriptor without source url")
	}
}

func TestNormalizeText(t *testing.T) {
	n := newTestNormalizer(&fakeFetcher{text: map[string]string{"https://x/notes.md": "scope notes"}}, nil, nil)
	files, err := n.Normalize(context.Background(), project.InputDescriptor{
		Name: "notes.md", Type: "text/markdown", Description: "scope", SourceURL: "https://x/notes.md",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	f := files[0]
	if f.Text != "scope notes" || f.MIMEType != "text/markdown" || f.SourceURL != "https://x/notes.md" {
		t.Fatalf("unexpected file: %+v", f)
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("invalid file: %v", err)
	}
}

func TestNormalizeImage(t *testing.T) {
	n := newTestNormalizer(&fakeFetcher{binary: map[string][]byte{"https://x/wall.jpg": []byte("jpegbytes")}}, nil, nil)
	files, err := n.Normalize(context.Background(), project.InputDescriptor{
		Name: "wall.jpg", Type: "image/jpeg", SourceURL: "https://x/wall.jpg",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(files) != 1 || files[0].Image == nil {
		t.Fatalf("expected a single image file, got %+v", files)
	}
	if string(files[0].Image.Data) != "jpegbytes" {
		t.Fatalf("image bytes = %q", files[0].Image.Data)
	}
}

func TestNormalizeAudioBecomesPlainText(t *testing.T) {
	n := newTestNormalizer(
		&fakeFetcher{binary: map[string][]byte{"https://x/memo.mp3": []byte("mp3")}},
		nil,
		&fakeTranscriber{text: "replace the water heater"},
	)
	files, err := n.Normalize(context.Background(), project.InputDescriptor{
		Name: "memo.mp3", Type: "audio/mpeg", SourceURL: "https://x/memo.mp3",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	f := files[0]
	if f.MIMEType != constants.MIMETextPlain {
		t.Errorf("transcribed audio should be retyped to plain text, got %q", f.MIMEType)
	}
	if f.Text != "replace the water heater" {
		t.Errorf("text = %q", f.Text)
	}
	if f.Audio != nil {
		t.Error("audio slot should be empty after transcription")
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("invalid file: %v", err)
	}
}

func TestNormalizeAudioTranscriptionFailureIsFatal(t *testing.T) {
	n := newTestNormalizer(
		&fakeFetcher{binary: map[string][]byte{"https://x/memo.mp3": []byte("mp3")}},
		nil,
		&fakeTranscriber{err: fmt.Errorf("model unavailable")},
	)
	_, err := n.Normalize(context.Background(), project.InputDescriptor{
		Name: "memo.mp3", Type: "audio/mpeg", SourceURL: "https://x/memo.mp3",
	})
	if err == nil {
		t.Fatal("expected transcription failure to be fatal")
	}
}

func TestNormalizePDFFansOut(t *testing.T) {
	n := newTestNormalizer(
		&fakeFetcher{binary: map[string][]byte{"https://x/plans.pdf": []byte("%PDF")}},
		&fakeRasterizer{pagesPerPDF: 3},
		nil,
	)
	files, err := n.Normalize(context.Background(), project.InputDescriptor{
		Name: "plans.pdf", Type: "application/pdf", SourceURL: "https://x/plans.pdf",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 page files, got %d", len(files))
	}
}

func TestNormalizeVideoAndUnsupportedYieldNothing(t *testing.T) {
	n := newTestNormalizer(nil, nil, nil)
	for _, mime := range []string{"video/mp4", "application/zip"} {
		files, err := n.Normalize(context.Background(), project.InputDescriptor{
			Name: "f", Type: mime, SourceURL: "https://x/f",
		})
		if err != nil {
			t.Fatalf("Normalize(%s): %v", mime, err)
		}
		if len(files) != 0 {
			t.Fatalf("Normalize(%s): expected zero files, got %d", mime, len(files))
		}
	}
}

func TestNormalizeAllPreservesInputOrder(t *testing.T) {
	fetcher := &fakeFetcher{
		binary: map[string][]byte{
			"https://x/a.pdf": []byte("%PDF"),
			"https://x/b.jpg": []byte("jpg"),
		},
		text: map[string]string{"https://x/c.txt": "notes"},
	}
	n := newTestNormalizer(fetcher, &fakeRasterizer{pagesPerPDF: 2}, nil)

	files, err := n.NormalizeAll(context.Background(), []project.InputDescriptor{
		{Name: "a.pdf", Type: "application/pdf", SourceURL: "https://x/a.pdf"},
		{Name: "skip.mp4", Type: "video/mp4", SourceURL: "https://x/skip.mp4"},
		{Name: "b.jpg", Type: "image/jpeg", SourceURL: "https://x/b.jpg"},
		{Name: "c.txt", Type: "text/plain", SourceURL: "https://x/c.txt"},
	})
	if err != nil {
		t.Fatalf("NormalizeAll: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	want := []string{"a_page_1.png", "a_page_2.png", "b.jpg", "c.txt"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestNormalizeAllStrictFail(t *testing.T) {
	fetcher := &fakeFetcher{text: map[string]string{"https://x/good.txt": "ok"}}
	n := newTestNormalizer(fetcher, nil, nil)

	_, err := n.NormalizeAll(context.Background(), []project.InputDescriptor{
		{Name: "good.txt", Type: "text/plain", SourceURL: "https://x/good.txt"},
		{Name: "missing.jpg", Type: "image/jpeg", SourceURL: "https://x/missing.jpg"},
	})
	if err == nil {
		t.Fatal("expected batch failure when one descriptor fails")
	}
	if !strings.Contains(err.Error(), "missing.jpg") {
		t.Fatalf("error should name the failing descriptor: %v", err)
	}
}
