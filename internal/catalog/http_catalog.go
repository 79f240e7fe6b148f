package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/revisit/internal/repetition"
)

// HTTPCatalog calls the catalog service's REST API.
type HTTPCatalog struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

func NewHTTPCatalog(baseURL, apiKey string, timeout time.Duration, retryAttempts uint) *HTTPCatalog {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPCatalog{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
	}
}

func (c *HTTPCatalog) Close() error {
	return c.httpClient.Close()
}

type completedItemsResponse struct {
	Items []item `json:"items"`
}

type statusError struct {
	statusCode int
	body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.statusCode, e.body)
}

// CompletedItems retries server errors, rate limiting and network failures.
// Other client errors fail immediately.
func (c *HTTPCatalog) CompletedItems(ctx context.Context, userID string) ([]repetition.ReviewableRef, error) {
	var result []item
	if err := retry.Do(
		func() error {
			items, err := c.completedItems(ctx, userID)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				slog.Default().Info("retrying catalog request", "user_id", userID, "error", err)
				return err
			}
			result = items
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return nil, fmt.Errorf("fetch completed items of %s: %w", userID, err)
	}
	return toRefs(result)
}

func (c *HTTPCatalog) completedItems(ctx context.Context, userID string) ([]item, error) {
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("userID", userID).
		SetResult(&completedItemsResponse{}).
		Get("/users/{userID}/completed-items")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.IsError() {
		return nil, &statusError{statusCode: response.StatusCode(), body: response.String()}
	}

	body, ok := response.Result().(*completedItemsResponse)
	if !ok || body == nil {
		return nil, fmt.Errorf("unexpected response body: %s", response.String())
	}
	slog.Default().Debug("catalog response", "user_id", userID, "items", len(body.Items))
	return body.Items, nil
}

func isRetryableError(err error) bool {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.statusCode >= http.StatusInternalServerError ||
			statusErr.statusCode == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
