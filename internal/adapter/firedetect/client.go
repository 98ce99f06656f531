// Package firedetect is the HTTP client for the external fire detection
// service. It posts the raw uploaded image and reads back a verdict plus a
// confidence score.
package firedetect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/SurjaPal/FirePredict/internal/domain"
)

// Client implements domain.FireDetector against the detector's /detect
// endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a detector client. endpoint is the full URL of the
// detection route, for example http://localhost:5000/detect.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "firedetect"),
	}
}

// DetectFire sends the image as a multipart form and returns the detector's
// verdict. Any transport or decode failure is returned to the caller; the
// pipeline decides whether that aborts the upload.
func (c *Client) DetectFire(ctx context.Context, image []byte, contentType string) (domain.DetectionScore, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", "upload")
	if err != nil {
		return domain.DetectionScore{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return domain.DetectionScore{}, fmt.Errorf("write image part: %w", err)
	}
	if err := writer.WriteField("content_type", contentType); err != nil {
		return domain.DetectionScore{}, fmt.Errorf("write content type field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.DetectionScore{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return domain.DetectionScore{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.DetectionScore{}, fmt.Errorf("detector request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return domain.DetectionScore{}, fmt.Errorf("detector error: status %d: %s", resp.StatusCode, respBody)
	}

	var detectorResp response
	if err := json.NewDecoder(resp.Body).Decode(&detectorResp); err != nil {
		return domain.DetectionScore{}, fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug("detector verdict",
		"is_fire", detectorResp.IsFire,
		"confidence", detectorResp.Confidence,
	)
	return domain.DetectionScore{
		IsFire:     detectorResp.IsFire,
		Confidence: detectorResp.Confidence,
	}, nil
}

// Detector API response type.

type response struct {
	IsFire     bool    `json:"is_fire"`
	Confidence float64 `json:"confidence"`
}
