package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ostegm/contractor-app/internal/common"
)

// HTTPUploader writes objects to a bucket-scoped HTTP object-store API
// (supabase-storage style: POST {base}/object/{bucket}/{key}).
type HTTPUploader struct {
	baseURL    string
	apiKey     string
	bucket     string
	httpClient *http.Client
}

// NewHTTPUploader fails fast on missing configuration: returning frames
// nobody can retrieve is worse than failing the run up front.
func NewHTTPUploader(baseURL, apiKey, bucket string) (*HTTPUploader, error) {
	if baseURL == "" || apiKey == "" || bucket == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "storage url, key and bucket are required", common.ErrNotConfigured)
	}
	return &HTTPUploader{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		bucket:     bucket,
		httpClient: &http.Client{},
	}, nil
}

// Put uploads the object and returns its bucket-relative reference.
func (u *HTTPUploader) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", u.baseURL, u.bucket, strings.TrimLeft(key, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, r)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "3600")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Sprintf("%s/%s", u.bucket, strings.TrimLeft(key, "/")), nil
}
