// Package gateway calls the external text validation engine over HTTP.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/newsproof/validation-api/internal/core/domain"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 1 << 20
	retryBase        = 100 * time.Millisecond

	msgUnavailable = "validation service unavailable"
	msgBadResponse = "validation service returned an invalid response"
)

// Config configures the Client.
type Config struct {
	URL     string
	Timeout time.Duration
	// Retries is how many extra attempts follow a transport failure or a
	// 502/503/504 answer.
	Retries int
}

// Client implements ports.ValidationGateway.
type Client struct {
	url     string
	http    *http.Client
	retries uint64
	log     zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		url:     cfg.URL,
		http:    &http.Client{Timeout: timeout},
		retries: uint64(retries),
		log:     log,
	}
}

type analyzeRequest struct {
	Text   string  `json:"text"`
	Source *string `json:"source"`
}

type errorItem struct {
	Msg string `json:"msg"`
}

type errorResponse struct {
	Errors []errorItem `json:"errors"`
	Error  string      `json:"error"`
}

// Analyze posts text to the engine. Every failure is a *domain.GatewayError.
func (c *Client) Analyze(ctx context.Context, text string, source *string) (*domain.Analysis, error) {
	body, err := json.Marshal(analyzeRequest{Text: text, Source: source})
	if err != nil {
		return nil, &domain.GatewayError{Msg: msgBadResponse}
	}

	var analysis *domain.Analysis
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(retryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		a, err := c.post(ctx, body)
		if err != nil {
			var gwErr *domain.GatewayError
			if errors.As(err, &gwErr) && !retryable(gwErr.StatusCode) {
				return err
			}
			c.log.Warn().Err(err).Msg("validation engine call failed, retrying")
			return retry.RetryableError(err)
		}
		analysis = a
		return nil
	})
	if err != nil {
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) {
			return nil, gwErr
		}
		return nil, &domain.GatewayError{Msg: msgUnavailable}
	}
	return analysis, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*domain.Analysis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.GatewayError{Msg: msgUnavailable}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("url", c.url).Msg("validation engine unreachable")
		return nil, &domain.GatewayError{Msg: msgUnavailable}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.GatewayError{StatusCode: resp.StatusCode, Msg: msgUnavailable}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.GatewayError{StatusCode: resp.StatusCode, Msg: firstMessage(raw, resp.StatusCode)}
	}

	var analysis domain.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		c.log.Error().Err(err).Int("status", resp.StatusCode).Msg("undecodable validation engine response")
		return nil, &domain.GatewayError{StatusCode: resp.StatusCode, Msg: msgBadResponse}
	}
	if analysis.Reasons == nil {
		analysis.Reasons = []string{}
	}
	return &analysis, nil
}

func firstMessage(raw []byte, status int) string {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil {
		for _, e := range er.Errors {
			if e.Msg != "" {
				return e.Msg
			}
		}
		if er.Error != "" {
			return er.Error
		}
	}
	return fmt.Sprintf("validation service error (status %d)", status)
}

func retryable(status int) bool {
	switch status {
	case 0, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
