package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ostegm/contractor-app/internal/common"
	"github.com/ostegm/contractor-app/internal/llm"
)

func writeTempVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "v.mp4")
	if err := os.WriteFile(path, []byte("videobytes"), 0o600); err != nil {
		t.Fatalf("write temp video: %v", err)
	}
	return path
}

func newTestClient(t *testing.T, baseURL string, maxAttempts int) *Client {
	t.Helper()
	c, err := NewClient(Config{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		PollInterval:    time.Millisecond,
		PollMaxAttempts: maxAttempts,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Config{}, nil); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestUploadPollsUntilActive(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			if r.Header.Get("X-Goog-Upload-Protocol") != "raw" {
				t.Errorf("upload protocol header = %q", r.Header.Get("X-Goog-Upload-Protocol"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"file": map[string]string{"name": "files/v1", "uri": "uri/v1", "state": "PROCESSING"},
			})
		case r.Method == http.MethodGet:
			state := "PROCESSING"
			if polls.Add(1) >= 2 {
				state = "ACTIVE"
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"name": "files/v1", "uri": "uri/v1", "state": state})
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 10)
	ref, err := c.Upload(context.Background(), writeTempVideo(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ref.Name != "files/v1" || ref.State != "ACTIVE" {
		t.Fatalf("ref = %+v", ref)
	}
	if polls.Load() < 2 {
		t.Fatalf("expected at least 2 polls, got %d", polls.Load())
	}
}

func TestUploadActivationTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"file": map[string]string{"name": "files/v1", "uri": "uri/v1", "state": "PROCESSING"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"name": "files/v1", "uri": "uri/v1", "state": "PROCESSING"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 3)
	_, err := c.Upload(context.Background(), writeTempVideo(t))
	if err == nil {
		t.Fatal("expected activation timeout")
	}
	if !errors.Is(err, common.ErrActivationTimeout) {
		t.Fatalf("expected ErrActivationTimeout, got: %v", err)
	}
}

func TestDelete(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 1)
	if err := c.Delete(context.Background(), llm.FileRef{Name: "files/v1"}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/v1beta/files/v1" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
}

func TestAnalyzeVideo(t *testing.T) {
	analysisJSON := `{"description":"kitchen walkthrough","key_moments":[{"timestamp_s":5,"description":"cracked tile"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": analysisJSON}},
				},
			}},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 1)
	analysis, err := c.AnalyzeVideo(context.Background(), llm.FileRef{Name: "files/v1", URI: "uri/v1"}, "walk.mp4", "site walkthrough")
	if err != nil {
		t.Fatalf("AnalyzeVideo: %v", err)
	}
	if analysis.Description != "kitchen walkthrough" {
		t.Errorf("description = %q", analysis.Description)
	}
	if len(analysis.KeyMoments) != 1 || analysis.KeyMoments[0].TimestampSeconds != 5 {
		t.Errorf("key moments = %+v", analysis.KeyMoments)
	}
}

func TestAnalyzeVideoRejectsNonConformingJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": `{"summary":"wrong shape"}`}},
				},
			}},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 1)
	if _, err := c.AnalyzeVideo(context.Background(), llm.FileRef{URI: "uri/v1"}, "walk.mp4", ""); err == nil {
		t.Fatal("expected schema validation failure")
	}
}

func TestAnalyzeVideoNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 1)
	if _, err := c.AnalyzeVideo(context.Background(), llm.FileRef{URI: "uri/v1"}, "walk.mp4", ""); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}
