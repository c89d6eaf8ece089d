// Package fetch retrieves raw bytes or text from remote URLs with
// content-type verification.
package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"
)

// maxErrorBody caps how much of a failed response body is carried in the
// returned error.
const maxErrorBody = 2 << 10

// Client performs single-attempt GETs. No retries; failures propagate to
// the caller.
type Client struct {
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{httpClient: &http.Client{}, log: logger}
}

// FetchBinary downloads the URL and returns the raw bytes. A non-2xx status
// is fatal. If expectedTypePrefix is non-empty and the response content type
// does not start with it, a warning is logged but the fetch still succeeds;
// callers that need strict enforcement must check themselves.
func (c *Client) FetchBinary(ctx context.Context, url, expectedTypePrefix string) ([]byte, error) {
	body, _, err := c.get(ctx, url, expectedTypePrefix)
	return body, err
}

// FetchText downloads the URL and returns its body as text. Content that is
// not valid UTF-8 is returned base64-encoded rather than failing, since the
// caller only asked for text-shaped output.
func (c *Client) FetchText(ctx context.Context, url, expectedTypePrefix string) (string, error) {
	body, _, err := c.get(ctx, url, expectedTypePrefix)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(body) {
		c.log.Warn("fetch.text.not_utf8", "url", url, "bytes", len(body))
		return base64.StdEncoding.EncodeToString(body), nil
	}
	return string(body), nil
}

// Download streams the URL to destPath. Used for video sources, which are
// too large to hold in memory alongside the rest of the run.
func (c *Client) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(url, resp)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		// a failed transfer must not leave a partial file behind
		if rmErr := os.Remove(destPath); rmErr != nil {
			c.log.Warn("fetch.download.cleanup_failed", "dest", destPath, "error", rmErr)
		}
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	c.log.Info("fetch.download.ok", "url", url, "dest", destPath, "bytes", n)
	return nil
}

func (c *Client) get(ctx context.Context, url, expectedTypePrefix string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", statusError(url, resp)
	}

	contentType := resp.Header.Get("Content-Type")
	if expectedTypePrefix != "" && !strings.HasPrefix(contentType, expectedTypePrefix) {
		c.log.Warn("fetch.mime_mismatch",
			"url", url,
			"expected_prefix", expectedTypePrefix,
			"got", contentType,
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read body from %s: %w", url, err)
	}
	c.log.Debug("fetch.ok", "url", url, "content_type", contentType, "bytes", len(body))
	return body, contentType, nil
}

func statusError(url string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("fetch %s: status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
}
