// Package gemini implements video upload, readiness polling, and analysis
// against the generative language Files API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ostegm/contractor-app/internal/common"
	"github.com/ostegm/contractor-app/internal/llm"
	"github.com/ostegm/contractor-app/pkg/project"
)

const stateActive = "ACTIVE"

// Config holds client settings for the video analysis service.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// PollInterval and PollMaxAttempts bound the upload readiness poll.
	// The poll must terminate: an unbounded loop here is a liveness bug.
	PollInterval    time.Duration
	PollMaxAttempts int
}

// Client implements llm.VideoUploader and llm.VideoAnalyzer.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "video analysis API key is required", common.ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash-preview-04-17"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = 60
	}
	return &Client{cfg: cfg, httpClient: &http.Client{}, log: logger}, nil
}

type fileInfo struct {
	Name  string `json:"name"`
	URI   string `json:"uri"`
	State string `json:"state"`
}

// Upload pushes the local video file and polls until the remote copy is
// ACTIVE. Returns common.ErrActivationTimeout when the attempt bound is
// exhausted first.
func (c *Client) Upload(ctx context.Context, localPath string) (llm.FileRef, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return llm.FileRef{}, fmt.Errorf("read video: %w", err)
	}

	url := fmt.Sprintf("%s/upload/v1beta/files?key=%s", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return llm.FileRef{}, err
	}
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	req.Header.Set("Content-Type", "video/mp4")

	raw, err := c.do(req)
	if err != nil {
		return llm.FileRef{}, fmt.Errorf("upload video: %w", err)
	}

	var uploaded struct {
		File fileInfo `json:"file"`
	}
	if err := json.Unmarshal(raw, &uploaded); err != nil {
		return llm.FileRef{}, fmt.Errorf("decode upload response: %w", err)
	}
	c.log.Info("gemini.upload.ok", "name", uploaded.File.Name, "state", uploaded.File.State, "bytes", len(data))

	return c.waitActive(ctx, uploaded.File)
}

func (c *Client) waitActive(ctx context.Context, f fileInfo) (llm.FileRef, error) {
	for attempt := 0; f.State != stateActive; attempt++ {
		if attempt >= c.cfg.PollMaxAttempts {
			return llm.FileRef{}, fmt.Errorf("file %s not active after %d attempts: %w",
				f.Name, c.cfg.PollMaxAttempts, common.ErrActivationTimeout)
		}
		c.log.Debug("gemini.poll", "name", f.Name, "state", f.State, "attempt", attempt+1)

		select {
		case <-ctx.Done():
			return llm.FileRef{}, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}

		refreshed, err := c.getFile(ctx, f.Name)
		if err != nil {
			return llm.FileRef{}, fmt.Errorf("poll file %s: %w", f.Name, err)
		}
		f = refreshed
	}
	c.log.Info("gemini.file.active", "name", f.Name, "uri", f.URI)
	return llm.FileRef{Name: f.Name, URI: f.URI, State: f.State}, nil
}

func (c *Client) getFile(ctx context.Context, name string) (fileInfo, error) {
	url := fmt.Sprintf("%s/v1beta/%s?key=%s", strings.TrimRight(c.cfg.BaseURL, "/"), name, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fileInfo{}, err
	}
	raw, err := c.do(req)
	if err != nil {
		return fileInfo{}, err
	}
	var f fileInfo
	if err := json.Unmarshal(raw, &f); err != nil {
		return fileInfo{}, fmt.Errorf("decode file info: %w", err)
	}
	return f, nil
}

// Delete removes the remote file. Called after analysis so uploads do not
// accumulate against the service quota.
func (c *Client) Delete(ctx context.Context, ref llm.FileRef) error {
	url := fmt.Sprintf("%s/v1beta/%s?key=%s", strings.TrimRight(c.cfg.BaseURL, "/"), ref.Name, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("delete file %s: %w", ref.Name, err)
	}
	c.log.Info("gemini.file.deleted", "name", ref.Name)
	return nil
}

// AnalyzeVideo asks the model for a detailed description of the uploaded
// video plus ordered key moments, as JSON validated against the analysis
// schema.
func (c *Client) AnalyzeVideo(ctx context.Context, ref llm.FileRef, videoName, videoDescription string) (project.VideoAnalysis, error) {
	schema := llm.BuildVideoAnalysisJSONSchema()
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return project.VideoAnalysis{}, fmt.Errorf("marshal schema: %w", err)
	}

	prompt := buildAnalysisPrompt(videoName, videoDescription, string(schemaJSON))
	body := map[string]any{
		"contents": []map[string]any{{
			"parts": []map[string]any{
				{"file_data": map[string]any{"file_uri": ref.URI, "mime_type": "video/mp4"}},
				{"text": prompt},
			},
		}},
		"generationConfig": map[string]any{"responseMimeType": "application/json"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return project.VideoAnalysis{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return project.VideoAnalysis{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return project.VideoAnalysis{}, fmt.Errorf("analyze video: %w", err)
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return project.VideoAnalysis{}, fmt.Errorf("decode analysis response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return project.VideoAnalysis{}, fmt.Errorf("no candidates in analysis response")
	}

	content := []byte(strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text))
	if err := llm.ValidateJSONAgainstSchema(schema, content); err != nil {
		return project.VideoAnalysis{}, fmt.Errorf("analysis schema validation failed: %w", err)
	}

	var analysis project.VideoAnalysis
	if err := json.Unmarshal(content, &analysis); err != nil {
		return project.VideoAnalysis{}, fmt.Errorf("unmarshal analysis: %w", err)
	}

	c.log.Info("gemini.analyze.ok", "video", videoName, "key_moments", len(analysis.KeyMoments), "description_len", len(analysis.Description))
	return analysis, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("gemini response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}

func buildAnalysisPrompt(videoName, videoDescription, schemaJSON string) string {
	var b strings.Builder
	b.WriteString("Analyze this construction site walkthrough video in detail. ")
	b.WriteString("Describe the spaces, existing conditions, visible measurements, materials, and anything relevant to a cost estimate. ")
	b.WriteString("Identify the key moments worth capturing as still frames, each with its timestamp in seconds and a short description.\n\n")
	fmt.Fprintf(&b, "Video name: %s\n", videoName)
	if videoDescription != "" {
		fmt.Fprintf(&b, "Video description: %s\n", videoDescription)
	}
	b.WriteString("\nReturn ONLY JSON matching this schema:\n")
	b.WriteString(schemaJSON)
	return b.String()
}
