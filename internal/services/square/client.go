package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalogsync/internal/config"
	"catalogsync/internal/logger"
	apperrors "catalogsync/pkg/errors"
)

type Client struct {
	baseURL     string
	accessToken string
	apiVersion  string
	maxRetries  int
	httpClient  *http.Client
	logger      *logger.Logger
	backoff     func(attempt int, resp *http.Response) time.Duration
}

// NewClient builds a Square REST client. The request timeout is owned here,
// so a hung upstream surfaces as an error instead of blocking the run.
func NewClient(cfg config.SquareConfig, logger *logger.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		maxRetries:  cfg.MaxRetries,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:  logger,
		backoff: retryDelay,
	}
}

// do sends one API call, retrying throttling and 5xx responses. The final
// failure is returned as a *TransportError carrying status and detail.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &apperrors.TransportError{Op: op, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return &apperrors.TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		req.Header.Set("Square-Version", c.apiVersion)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() == nil && attempt < c.maxRetries {
				c.logger.Debug("%s: request error, retrying (attempt %d): %v", op, attempt+1, err)
				if sleepErr := sleepWithContext(ctx, c.backoff(attempt, nil)); sleepErr == nil {
					continue
				}
			}
			return &apperrors.TransportError{Op: op, Err: fmt.Errorf("failed to make request: %w", err)}
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return &apperrors.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < c.maxRetries {
				delay := c.backoff(attempt, resp)
				c.logger.Debug("%s: status %d, retrying in %s", op, resp.StatusCode, delay)
				if sleepErr := sleepWithContext(ctx, delay); sleepErr == nil {
					continue
				}
			}
			return &apperrors.TransportError{Op: op, StatusCode: resp.StatusCode, Detail: errorDetail(respBody)}
		}

		if out == nil {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return &apperrors.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
		return nil
	}
}

// errorDetail pulls the first Square error detail out of a failure body,
// falling back to the trimmed body.
func errorDetail(body []byte) string {
	var parsed struct {
		Errors []APIError `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		return formatAPIErrors(parsed.Errors)
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > 500 {
		detail = detail[:500]
	}
	return detail
}

func formatAPIErrors(errs []APIError) string {
	first := errs[0]
	detail := first.Detail
	if detail == "" {
		detail = first.Code
	}
	if first.Category != "" {
		detail = first.Category + ": " + detail
	}
	return detail
}
