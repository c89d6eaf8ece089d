// Package transcribe converts audio content to plain text.
package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Transcriber turns audio bytes into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mediaType string) (string, error)
}

// WhisperTranscriber implements Transcriber against the Whisper API.
type WhisperTranscriber struct {
	cli *openai.Client
	log *slog.Logger
}

func NewWhisperTranscriber(cli *openai.Client, logger *slog.Logger) *WhisperTranscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &WhisperTranscriber{cli: cli, log: logger}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, mediaType string) (string, error) {
	resp, err := w.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio" + extensionFor(mediaType),
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("empty transcription result")
	}
	w.log.Info("transcribe.ok", "media_type", mediaType, "audio_bytes", len(audio), "text_len", len(text))
	return text, nil
}

// extensionFor picks a filename extension for the upload; the API keys the
// decoder off the name.
func extensionFor(mediaType string) string {
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".mp3"
}
