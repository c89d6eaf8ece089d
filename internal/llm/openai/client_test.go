package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ostegm/contractor-app/internal/llm"
	"github.com/ostegm/contractor-app/pkg/project"
)

func chatServer(t *testing.T, content string, capture *[]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if capture != nil {
			*capture, _ = io.ReadAll(r.Body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{Model: "gpt-4.1", APIKey: "test", BaseURL: baseURL + "/v1"}, nil)
}

func TestAssess(t *testing.T) {
	var body []byte
	srv := chatServer(t, "A kitchen remodel with water damage in the northeast corner.", &body)
	defer srv.Close()

	c := newTestClient(srv.URL)
	got, err := c.Assess(context.Background(), llm.AssessRequest{
		ProjectInfo: "1960s ranch house",
		Files: []project.InputFile{
			project.NewTextFile("notes.txt", "text/plain", "homeowner notes", "https://x/notes.txt", "replace cabinets"),
			project.NewImageFile("wall.png", "image/png", "", "", []byte{1, 2, 3}),
		},
	})
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if !strings.Contains(got, "kitchen remodel") {
		t.Fatalf("assessment = %q", got)
	}

	payload := string(body)
	if !strings.Contains(payload, "1960s ranch house") {
		t.Error("project info missing from request")
	}
	if !strings.Contains(payload, "replace cabinets") {
		t.Error("text file content missing from request")
	}
	if !strings.Contains(payload, "data:image/png;base64,") {
		t.Error("image not rendered as data URL")
	}
}

func TestAssessRendersEmptyTextFile(t *testing.T) {
	var body []byte
	srv := chatServer(t, "assessment", &body)
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Assess(context.Background(), llm.AssessRequest{
		Files: []project.InputFile{
			project.NewTextFile("blank.txt", "text/plain", "intentionally empty notes", "https://x/blank.txt", ""),
		},
	})
	if err != nil {
		t.Fatalf("Assess with empty text file: %v", err)
	}
	if !strings.Contains(string(body), "blank.txt") {
		t.Error("empty text file not rendered as a text part")
	}
}

func TestAssessEmptyResponseIsError(t *testing.T) {
	srv := chatServer(t, "   ", nil)
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Assess(context.Background(), llm.AssessRequest{
		Files: []project.InputFile{project.NewTextFile("n", "text/plain", "", "", "x")},
	})
	if err == nil {
		t.Fatal("expected error for empty assessment")
	}
}

func TestGenerateEstimate(t *testing.T) {
	estimateJSON := `{
		"project_description": "Deck rebuild",
		"estimated_total_min": 8000,
		"estimated_total_max": 12000,
		"confidence_level": "Medium",
		"key_considerations": ["railing code compliance"],
		"estimate_items": [
			{"description": "Framing", "category": "Carpentry", "cost_range_min": 3000, "cost_range_max": 4500}
		],
		"next_steps": ["site visit"],
		"missing_information": [],
		"key_risks": ["rot in ledger board"]
	}`
	var body []byte
	srv := chatServer(t, estimateJSON, &body)
	defer srv.Close()

	c := newTestClient(srv.URL)
	est, raw, err := c.GenerateEstimate(context.Background(), llm.EstimateRequest{Assessment: "deck rebuild assessment"})
	if err != nil {
		t.Fatalf("GenerateEstimate: %v", err)
	}
	if est.ProjectDescription != "Deck rebuild" || est.ConfidenceLevel != project.ConfidenceMedium {
		t.Fatalf("estimate = %+v", est)
	}
	if len(raw) == 0 {
		t.Error("raw JSON not returned")
	}
	if !strings.Contains(string(body), "json_object") {
		t.Error("JSON response format not requested")
	}
}

func TestGenerateEstimateRevisionPrompt(t *testing.T) {
	estimateJSON := `{
		"project_description": "x",
		"estimated_total_min": 1,
		"estimated_total_max": 2,
		"confidence_level": "Low",
		"key_considerations": [],
		"estimate_items": [],
		"next_steps": [],
		"missing_information": [],
		"key_risks": []
	}`
	var body []byte
	srv := chatServer(t, estimateJSON, &body)
	defer srv.Close()

	c := newTestClient(srv.URL)
	prior := &project.Estimate{ProjectDescription: "original scope", EstimatedTotalMin: 100, EstimatedTotalMax: 200}
	_, _, err := c.GenerateEstimate(context.Background(), llm.EstimateRequest{
		Assessment:       "a",
		PriorEstimate:    prior,
		RequestedChanges: "drop the skylight",
	})
	if err != nil {
		t.Fatalf("GenerateEstimate: %v", err)
	}
	payload := string(body)
	if !strings.Contains(payload, "original scope") {
		t.Error("prior estimate missing from prompt")
	}
	if !strings.Contains(payload, "drop the skylight") {
		t.Error("requested changes missing from prompt")
	}
}

func TestGenerateEstimateRejectsNonConformingJSON(t *testing.T) {
	srv := chatServer(t, `{"total": 5000}`, nil)
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, raw, err := c.GenerateEstimate(context.Background(), llm.EstimateRequest{Assessment: "a"})
	if err == nil {
		t.Fatal("expected schema validation failure")
	}
	if !strings.Contains(string(raw), "total") {
		t.Error("raw content should be returned for diagnostics")
	}
}
