package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gomcpgo/replicate/pkg/metrics"
	"github.com/rs/zerolog"
)

// maxLoggedBody caps how much of a body is written to debug logs
const maxLoggedBody = 1000

// Transport performs authenticated requests against the Replicate API and
// decodes JSON responses into out. Paths are relative to the configured base
// URL, e.g. "/predictions".
type Transport interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Config holds configuration for creating an HTTPTransport
type Config struct {
	BaseURL    string
	ProxyURL   string
	Token      string
	Headers    map[string]string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// HTTPTransport handles HTTP communication with the Replicate API
type HTTPTransport struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Ensure HTTPTransport implements the Transport interface
var _ Transport = (*HTTPTransport)(nil)

// New creates a new HTTP transport. When a proxy URL is configured every
// request goes to "<proxy>/<base><path>".
func New(cfg Config) (*HTTPTransport, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ProxyURL != "" {
		baseURL = strings.TrimRight(cfg.ProxyURL, "/") + "/" + baseURL
	}

	headers := make(map[string]string, len(cfg.Headers)+3)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if cfg.Token != "" {
		headers["Authorization"] = "Token " + cfg.Token
	}
	headers["Content-Type"] = "application/json"
	headers["Accept"] = "application/json"

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No client timeout: predictions are bounded by the caller's context
		httpClient = &http.Client{}
	}

	return &HTTPTransport{
		baseURL:    baseURL,
		headers:    headers,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}, nil
}

// BaseURL returns the effective URL prefix, including any proxy
func (t *HTTPTransport) BaseURL() string {
	return t.baseURL
}

// Get performs a GET request and decodes the JSON response into out
func (t *HTTPTransport) Get(ctx context.Context, path string, out any) error {
	return t.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response into out
func (t *HTTPTransport) Post(ctx context.Context, path string, body, out any) error {
	return t.do(ctx, http.MethodPost, path, body, out)
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body, out any) error {
	url := t.baseURL + path

	var reqBody []byte
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = data
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}

	evt := t.logger.Debug().Str("method", method).Str("url", url)
	if reqBody != nil {
		evt = evt.Str("body", truncate(reqBody))
	}
	evt.Msg("request")

	start := time.Now()
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		metrics.ObserveRequest(method, 0, time.Since(start))
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	metrics.ObserveRequest(method, resp.StatusCode, duration)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	t.logger.Debug().
		Int("status", resp.StatusCode).
		Int64("duration_ms", duration.Milliseconds()).
		Str("body", truncate(respBody)).
		Msg("response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(method, path, resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Method: method, Path: path, Body: respBody, Err: err}
	}
	return nil
}

func truncate(b []byte) string {
	if len(b) > maxLoggedBody {
		return fmt.Sprintf("[%d bytes - too large to log]", len(b))
	}
	return string(b)
}
