package proctor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Detection is one detected object in a frame.
type Detection struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ObjectDetector finds objects in a camera frame. Close releases the
// model; Detect must not be called after Close.
type ObjectDetector interface {
	Detect(ctx context.Context, frame []byte) ([]Detection, error)
	Close() error
}

// HTTPDetector sends frames to an external inference service and reads
// back the detections. The service owns the model lifecycle; Close here
// is a no-op beyond dropping the connection pool.
type HTTPDetector struct {
	url        string
	httpClient *http.Client
}

func NewHTTPDetector(url string) *HTTPDetector {
	return &HTTPDetector{
		url: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (d *HTTPDetector) Detect(ctx context.Context, frame []byte) ([]Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("inference status %d: %s", resp.StatusCode, string(snippet))
	}

	var detections []Detection
	if err := json.NewDecoder(resp.Body).Decode(&detections); err != nil {
		return nil, fmt.Errorf("decode detections: %w", err)
	}
	return detections, nil
}

func (d *HTTPDetector) Close() error {
	d.httpClient.CloseIdleConnections()
	return nil
}
