package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"reshape/internal/config"
	"reshape/internal/logger"
	"reshape/internal/models"
	"reshape/pkg/utils"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

const defaultPageSize = 100

// maxPages bounds pagination against an upstream that never returns a short page.
const maxPages = 10000

// APIClient pages through the upstream API with config-driven retry logic.
type APIClient struct {
	client   *http.Client
	retry    *config.RetryPolicy
	log      *logger.Logger
	BaseURL  string
	PageSize int
}

// NewAPIClient creates a client for baseURL.
func NewAPIClient(baseURL string, pageSize int, retry *config.RetryPolicy, log *logger.Logger) *APIClient {
	if log == nil {
		log = logger.Discard()
	}

	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	return &APIClient{
		client:   &http.Client{Timeout: retry.GetTimeout()},
		retry:    retry,
		log:      log,
		BaseURL:  baseURL,
		PageSize: pageSize,
	}
}

// Fetch downloads all three collections.
func (c *APIClient) Fetch(ctx context.Context) (*models.RawDataset, error) {
	ds := &models.RawDataset{}

	var err error
	if ds.Users, err = fetchAll[models.RawUser](ctx, c, Users); err != nil {
		return nil, err
	}

	if ds.Products, err = fetchAll[models.RawProduct](ctx, c, Products); err != nil {
		return nil, err
	}

	if ds.Carts, err = fetchAll[models.RawCart](ctx, c, Carts); err != nil {
		return nil, err
	}

	return ds, nil
}

// fetchAll requests pages until one comes back shorter than the page size.
func fetchAll[T any](ctx context.Context, c *APIClient, entity string) ([]T, error) {
	all := []T{}

	for page := 0; page < maxPages; page++ {
		url, err := utils.PageURL(c.BaseURL, entity, c.PageSize, page*c.PageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to build url for %s: %w", entity, err)
		}

		body, err := c.get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s page %d: %w", entity, page, err)
		}

		records, err := decodeCollection[T](body, entity)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s page %d: %w", entity, page, err)
		}

		all = append(all, records...)

		if len(records) < c.PageSize {
			break
		}
	}

	c.log.Info("fetched raw source", "source", entity, "records", len(all))

	return all, nil
}

// get performs one GET with retries on transport errors and retryable statuses.
func (c *APIClient) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.retry.GetRetryDelay(attempt)); err != nil {
				return nil, err
			}
		}

		body, retryable, err := c.do(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, c.retry.MaxAttempts, err)
		if !retryable || ctx.Err() != nil {
			break
		}

		c.log.Debug("retrying request", "url", url, "attempt", attempt, "error", err)
	}

	return nil, lastErr
}

func (c *APIClient) do(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = utils.BuildHeaders(nil)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, isRetryableStatus(resp.StatusCode), fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	if !json.Valid(body) {
		return nil, false, fmt.Errorf("response from %s is not JSON", url)
	}

	return body, false, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusBadGateway,
		http.StatusInternalServerError:
		return true
	}

	return false
}
