package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrNotFound is returned when a remote resource does not exist.
var ErrNotFound = errors.New("knowledge: not found")

const userAgent = "wordray/1.0 (https://github.com/japaniel/wordray)"

// client is a rate-limited HTTP client shared by the sources of one run.
type client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// ClientOptions configures outbound requests.
type ClientOptions struct {
	// RequestsPerSecond caps the request rate; zero means unlimited.
	RequestsPerSecond float64
	Timeout           time.Duration
}

func newClient(opts ClientOptions) *client {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (c *client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("knowledge: GET %s: %s", url, resp.Status)
	}
	return resp.Body, nil
}

func (c *client) getJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("knowledge: decode %s: %w", url, err)
	}
	return nil
}
