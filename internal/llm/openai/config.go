package openai

import (
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds client settings for the assessment/estimation model.
type Config struct {
	Model       string
	APIKey      string
	BaseURL     string // optional override for compatible endpoints
	Temperature float32
	Timeout     time.Duration
}

// Client implements llm.Assessor and llm.Estimator against the OpenAI chat
// completions API.
type Client struct {
	cfg Config
	cli *openai.Client
	log *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Client{cfg: cfg, cli: openai.NewClientWithConfig(clientCfg), log: logger}
}

// Raw exposes the underlying API client for collaborators that share the
// same credentials, such as the Whisper transcriber.
func (c *Client) Raw() *openai.Client {
	return c.cli
}
