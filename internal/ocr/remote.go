/**
 * Remote engine - PaddleOCR-compatible HTTP recognition service.
 *
 * The wire result varies across server versions: a list of
 * [polygon, [text, score]] pairs or a dict of parallel arrays. Both decode
 * through layout.NormalizePage, so this client never special-cases schema.
 */

package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docuflow/ocr-service/internal/layout"
	"github.com/docuflow/ocr-service/internal/logging"
)

// RemoteEngine calls a PaddleOCR-compatible HTTP recognition service.
type RemoteEngine struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// RemoteConfig holds remote engine configuration.
type RemoteConfig struct {
	BaseURL string
	Timeout time.Duration
}

// remoteRequest is the recognition request body.
type remoteRequest struct {
	Image string `json:"image"` // Base64 encoded page image
}

// remoteResponse wraps the raw per-page result; Result is decoded permissively
// because the schema differs across server versions.
type remoteResponse struct {
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}

// NewRemoteEngine creates a client for a remote recognition service.
func NewRemoteEngine(cfg *RemoteConfig) (*RemoteEngine, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote OCR base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &RemoteEngine{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logging.NewLogger("remote-ocr"),
	}, nil
}

// Name implements Engine.
func (r *RemoteEngine) Name() string {
	return "remote"
}

// RecognizePage implements Engine.
func (r *RemoteEngine) RecognizePage(ctx context.Context, image []byte) ([]layout.Segment, error) {
	reqBody, err := json.Marshal(remoteRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recognition request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/predict", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create recognition request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read recognition response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recognition service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed remoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode recognition response: %w", err)
	}

	var raw any
	if len(parsed.Result) > 0 {
		dec := json.NewDecoder(bytes.NewReader(parsed.Result))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode recognition result: %w", err)
		}
	}

	segments := layout.NormalizePage(raw)
	r.logger.Debug("Recognition completed", "segments", len(segments))
	return segments, nil
}

// HealthCheck verifies the remote service responds.
func (r *RemoteEngine) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote OCR unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote OCR unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
