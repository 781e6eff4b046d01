package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fx-rates-pipeline/internal/model"
)

// ClientOptions parameterise the provider client.
type ClientOptions struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	UserAgent     string
}

// Client fetches quote payloads from the exchange-rate provider with bounded
// retry. 4xx responses are terminal; timeouts and 5xx are retried.
type Client struct {
	opts    ClientOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewClient constructs a provider client.
func NewClient(opts ClientOptions, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 5 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://v6.exchangerate-api.com/v6"
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "provider_client").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type terminalError struct{ err error }

func (e terminalError) Error() string { return e.err.Error() }
func (e terminalError) Unwrap() error { return e.err }

// FetchLatest retrieves the latest quote mapping for the base currency.
func (c *Client) FetchLatest(ctx context.Context, baseCurrency string) (model.ProviderResponse, error) {
	if c.opts.APIKey == "" {
		return model.ProviderResponse{}, errors.New("provider api key not configured")
	}
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	if len(base) != 3 {
		return model.ProviderResponse{}, fmt.Errorf("invalid base currency %q", baseCurrency)
	}

	endpoint := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, c.opts.APIKey, base)
	masked := strings.Replace(endpoint, c.opts.APIKey, "***", 1)

	var lastErr error
	for attempt := 1; attempt <= c.opts.RetryAttempts; attempt++ {
		c.logger.Info().
			Str("url", masked).
			Int("attempt", attempt).
			Int("max_attempts", c.opts.RetryAttempts).
			Msg("requesting latest rates")

		resp, err := c.fetchOnce(ctx, endpoint, base)
		if err == nil {
			c.logger.Info().
				Str("base_currency", base).
				Int("num_rates", len(resp.ConversionRates)).
				Msg("rates collected")
			return resp, nil
		}

		lastErr = err
		var terminal terminalError
		if errors.As(err, &terminal) {
			return model.ProviderResponse{}, terminal.err
		}

		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("provider request failed")

		if attempt < c.opts.RetryAttempts {
			select {
			case <-ctx.Done():
				return model.ProviderResponse{}, ctx.Err()
			case <-time.After(c.opts.RetryDelay):
			}
		}
	}

	return model.ProviderResponse{}, fmt.Errorf("provider fetch failed after %d attempts: %w", c.opts.RetryAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, endpoint, base string) (model.ProviderResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.ProviderResponse{}, terminalError{err}
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return model.ProviderResponse{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ProviderResponse{}, err
	}

	if resp.StatusCode != http.StatusOK {
		httpErr := fmt.Errorf("provider returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return model.ProviderResponse{}, terminalError{httpErr}
		}
		return model.ProviderResponse{}, httpErr
	}

	var parsed model.ProviderResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return model.ProviderResponse{}, fmt.Errorf("decode provider response: %w", err)
	}

	if err := validateResponse(parsed, base); err != nil {
		return model.ProviderResponse{}, terminalError{err}
	}

	return parsed, nil
}

func validateResponse(resp model.ProviderResponse, base string) error {
	if resp.Result != "success" {
		return fmt.Errorf("provider reported result %q", resp.Result)
	}
	if resp.BaseCode == "" {
		return errors.New("provider response missing base_code")
	}
	if resp.BaseCode != base {
		return fmt.Errorf("provider returned base %q, requested %q", resp.BaseCode, base)
	}
	if len(resp.ConversionRates) == 0 {
		return errors.New("provider response contains no conversion rates")
	}
	return nil
}

var _ RateFetcher = (*Client)(nil)
