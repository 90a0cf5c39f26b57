// Package openai adapts the OpenAI audio endpoints to the kiosk's speech
// ports: transcription for customer utterances and speech synthesis for
// prompts.
package openai

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"talk2order/internal/infra"
)

type config struct {
	baseURL string
	timeout time.Duration
	retry   infra.RetryConfig
}

// Option configures a client.
type Option func(*config)

func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

func WithRetry(cfg infra.RetryConfig) Option {
	return func(c *config) {
		c.retry = cfg
	}
}

func newClient(apiKey string, opts []Option) (oai.Client, infra.RetryConfig) {
	cfg := &config{
		timeout: 30 * time.Second,
		retry:   infra.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(cfg)
	}

	// Retries are driven by infra.WithRetry, not the SDK.
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return oai.NewClient(reqOpts...), cfg.retry
}

// classify marks non-retryable API errors as permanent.
func classify(op string, err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) && !infra.IsRetryableHTTPStatus(apiErr.StatusCode) {
		return infra.Permanent(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
