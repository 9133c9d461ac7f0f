package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPClient implementa Classifier contra la API REST de TensorFlow Serving.
type HTTPClient struct {
	baseURL    string
	model      string
	classNames []string
	client     *http.Client
	logger     *zap.Logger
}

// NewHTTPClient construye un cliente apuntando a {baseURL}/v1/models/{model}:predict.
func NewHTTPClient(baseURL, model string, classNames []string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if len(classNames) == 0 {
		classNames = DefaultClassNames
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		classNames: classNames,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *HTTPClient) Classify(ctx context.Context, image []byte) (Prediction, error) {
	if len(image) == 0 {
		return Prediction{}, ErrEmptyImage
	}

	reqBody := predictRequest{
		Instances: []predictInstance{
			{Image: imageBytes{B64: base64.StdEncoding.EncodeToString(image)}},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Prediction{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s:predict", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return Prediction{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		c.logger.Warn("classifier error status", zap.Int("status", resp.StatusCode), zap.ByteString("body", truncate(respBody, 512)))
		return Prediction{}, fmt.Errorf("%w: status=%d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("classifier rejected image", zap.Int("status", resp.StatusCode), zap.ByteString("body", truncate(respBody, 512)))
		return Prediction{}, fmt.Errorf("classifier http error: status=%d", resp.StatusCode)
	}

	var pr predictResponse
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return Prediction{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if pr.Error != "" {
		return Prediction{}, fmt.Errorf("classifier api error: %s", pr.Error)
	}
	if len(pr.Predictions) == 0 {
		return Prediction{}, fmt.Errorf("classifier empty response")
	}
	return c.pick(pr.Predictions[0])
}

// pick elige la clase de mayor probabilidad.
func (c *HTTPClient) pick(scores []float64) (Prediction, error) {
	if len(scores) != len(c.classNames) {
		return Prediction{}, fmt.Errorf("classifier returned %d scores for %d classes", len(scores), len(c.classNames))
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return Prediction{Class: c.classNames[best], Confidence: scores[best]}, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

type predictRequest struct {
	Instances []predictInstance `json:"instances"`
}

type predictInstance struct {
	Image imageBytes `json:"image_bytes"`
}

type imageBytes struct {
	B64 string `json:"b64"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}
