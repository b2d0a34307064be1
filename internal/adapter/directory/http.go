// Package directory resolves employee records from the external HR directory.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/domain"
)

const (
	defaultRequestTimeout = 5 * time.Second
	defaultMaxElapsed     = 3 * time.Second
	maxBodyBytes          = 1 << 20
)

// HTTPDirectory implements usecase.EmployeeDirectory against the directory
// service's GET /employees/{id} endpoint.
type HTTPDirectory struct {
	baseURL    string
	client     *http.Client
	logger     zerolog.Logger
	maxElapsed time.Duration
}

// Option configures an HTTPDirectory.
type Option func(*HTTPDirectory)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(d *HTTPDirectory) { d.client = c }
}

// WithMaxElapsed bounds the total time spent retrying one lookup.
func WithMaxElapsed(d time.Duration) Option {
	return func(h *HTTPDirectory) { h.maxElapsed = d }
}

// NewHTTPDirectory creates a directory client rooted at baseURL.
func NewHTTPDirectory(baseURL string, logger zerolog.Logger, opts ...Option) *HTTPDirectory {
	d := &HTTPDirectory{
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: defaultRequestTimeout},
		logger:     logger,
		maxElapsed: defaultMaxElapsed,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// GetEmployee fetches one employee. Unknown IDs are domain.ErrEmployeeNotFound;
// transport failures and 5xx answers are retried. Every failure other than
// not-found is reported as
// domain.ErrEmployeeDirectoryUnavailable.
func (d *HTTPDirectory) GetEmployee(ctx context.Context, employeeID string) (*domain.Employee, error) {
	endpoint := d.baseURL + "/employees/" + url.PathEscape(employeeID)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = d.maxElapsed

	var employee *domain.Employee
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		e, err := d.fetch(ctx, endpoint)
		if err == nil {
			employee = e
			return nil
		}
		if errors.Is(err, domain.ErrEmployeeNotFound) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		d.logger.Debug().Err(err).Str("employee_id", employeeID).Int("attempt", attempt).Msg("directory lookup failed")
		return err
	}, backoff.WithContext(b, ctx))

	switch {
	case err == nil:
		return employee, nil
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrEmployeeDirectoryUnavailable, err)
	}
}

func (d *HTTPDirectory) fetch(ctx context.Context, endpoint string) (*domain.Employee, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrEmployeeNotFound
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, backoff.Permanent(fmt.Errorf("directory returned %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("directory returned %d", resp.StatusCode)
	}

	var employee domain.Employee
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&employee); err != nil {
		return nil, fmt.Errorf("decode employee: %w", err)
	}
	if employee.ID == "" {
		return nil, fmt.Errorf("directory returned an employee without id")
	}
	return &employee, nil
}
