package recordsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/jwalitptl/records-portal/pkg/errors"
	"github.com/jwalitptl/records-portal/pkg/metrics"
)

const maxBodySize = 1 << 20

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the records API. Every call is a single attempt; non-2xx
// answers come back as *errors.AppError carrying the status and the server's
// detail message, transport failures as errors.ErrUnavailable.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
	metrics    *metrics.Metrics
}

func NewClient(cfg Config, log zerolog.Logger, m *metrics.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		metrics:    m,
	}
}

// WithHTTPClient swaps the underlying transport.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// detailOf extracts a string detail. FastAPI validation errors carry a list
// instead, which is not shown to users.
func detailOf(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err != nil {
		return ""
	}
	return s
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveAPI(op, "network_error", time.Since(start))
		c.log.Warn().Err(err).Str("operation", op).Str("method", method).Str("path", path).Msg("records api unreachable")
		return apperrors.NewUnavailable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	elapsed := time.Since(start)
	c.metrics.ObserveAPI(op, strconv.Itoa(resp.StatusCode), elapsed)
	if err != nil {
		return apperrors.NewUnavailable(fmt.Errorf("failed to read %s response: %w", op, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := detailOf(raw)
		c.log.Warn().
			Str("operation", op).
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("detail", detail).
			Dur("latency", elapsed).
			Msg("records api returned error status")
		return apperrors.NewUpstream(resp.StatusCode, detail)
	}

	c.log.Debug().
		Str("operation", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", elapsed).
		Msg("records api call")

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
