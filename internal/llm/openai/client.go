package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ostegm/contractor-app/internal/llm"
	"github.com/ostegm/contractor-app/pkg/project"
)

// Assess renders the canonical files as multimodal chat parts, in input
// order, and returns the synthesized project assessment text.
func (c *Client) Assess(ctx context.Context, req llm.AssessRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.assess.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"files", len(req.Files),
		"has_project_info", req.ProjectInfo != "",
	)

	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: buildAssessIntro(req),
	}}
	for _, f := range req.Files {
		p, err := filePart(f)
		if err != nil {
			return "", fmt.Errorf("render file %s: %w", f.Name, err)
		}
		parts = append(parts, p...)
	}

	cctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.cli.CreateChatCompletion(cctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: assessSystemPrompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		c.log.Error("llm.assess.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("assessment call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in assessment response")
	}

	assessment := strings.TrimSpace(resp.Choices[0].Message.Content)
	if assessment == "" {
		return "", fmt.Errorf("empty assessment response")
	}
	c.log.Info("llm.assess.ok", "req_id", rid, "len", len(assessment), "elapsed_ms", time.Since(start).Milliseconds())
	return assessment, nil
}

// GenerateEstimate extracts a structured estimate from an assessment. Model
// output is validated against the estimate schema before unmarshal.
func (c *Client) GenerateEstimate(ctx context.Context, req llm.EstimateRequest) (project.Estimate, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.estimate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"assessment_len", len(req.Assessment),
		"has_prior", req.PriorEstimate != nil,
		"has_changes", req.RequestedChanges != "",
	)

	schema := llm.BuildEstimateJSONSchema()
	user, err := buildEstimateUserPrompt(req)
	if err != nil {
		return project.Estimate{}, nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.cli.CreateChatCompletion(cctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: estimateSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
			{Role: openai.ChatMessageRoleSystem, Content: "JSON Schema:\n" + mustJSON(schema)},
		},
	})
	if err != nil {
		c.log.Error("llm.estimate.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return project.Estimate{}, nil, fmt.Errorf("estimate call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return project.Estimate{}, nil, fmt.Errorf("no choices in estimate response")
	}

	raw := []byte(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err := llm.ValidateJSONAgainstSchema(schema, raw); err != nil {
		c.log.Error("llm.estimate.schema_validation_failed", "req_id", rid, "error", err, "content", string(raw))
		return project.Estimate{}, raw, fmt.Errorf("schema validation failed: %w", err)
	}

	var out project.Estimate
	if err := json.Unmarshal(raw, &out); err != nil {
		return project.Estimate{}, raw, fmt.Errorf("unmarshal estimate: %w", err)
	}

	c.log.Info("llm.estimate.ok",
		"req_id", rid,
		"total_min", out.EstimatedTotalMin,
		"total_max", out.EstimatedTotalMax,
		"confidence", string(out.ConfidenceLevel),
		"items", len(out.EstimateItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, raw, nil
}

func buildAssessIntro(req llm.AssessRequest) string {
	var b strings.Builder
	b.WriteString("CURRENT PROJECT INFORMATION:\n")
	if req.ProjectInfo != "" {
		b.WriteString(req.ProjectInfo)
	} else {
		b.WriteString("(none provided)")
	}
	b.WriteString("\n\nAVAILABLE MEDIA FOR INCREASING UNDERSTANDING:\n")
	for i, f := range req.Files {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, f.Name, f.MIMEType)
		if f.Description != "" {
			b.WriteString(": " + f.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// filePart renders one canonical file as chat parts. Audio never reaches
// this point: transcription retypes it to text during normalization.
func filePart(f project.InputFile) ([]openai.ChatMessagePart, error) {
	switch {
	case f.HasText():
		return []openai.ChatMessagePart{{
			Type: openai.ChatMessagePartTypeText,
			Text: fmt.Sprintf("--- File: %s ---\n%s", f.Name, f.Text),
		}}, nil
	case f.Image != nil:
		dataURL := fmt.Sprintf("data:%s;base64,%s", f.Image.MediaType, base64.StdEncoding.EncodeToString(f.Image.Data))
		return []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: fmt.Sprintf("--- Image: %s ---", f.Name),
			},
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported content slot (mime type %s)", f.MIMEType)
	}
}

func buildEstimateUserPrompt(req llm.EstimateRequest) (string, error) {
	var b strings.Builder
	b.WriteString("Please analyze the following construction project assessment and generate a structured estimate:\n\n")
	b.WriteString(req.Assessment)
	if req.PriorEstimate != nil {
		prior, err := json.Marshal(req.PriorEstimate)
		if err != nil {
			return "", fmt.Errorf("marshal prior estimate: %w", err)
		}
		b.WriteString("\n\nEXISTING ESTIMATE (revise rather than starting over):\n")
		b.Write(prior)
	}
	if req.RequestedChanges != "" {
		b.WriteString("\n\nREQUESTED CHANGES:\n")
		b.WriteString(req.RequestedChanges)
	}
	return b.String(), nil
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
