// internal/adapters/baidu/client.go
package baidu

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

	"hotelmap/internal/adapters/observability"
	"hotelmap/internal/domain"
)

// Client calls the Baidu Place API v3 district search.
// It never retries: every error other than an empty match is final.
type Client struct {
	base  string
	hc    *http.Client
	key   string
	delay time.Duration
}

func New(base, key string, timeout, delay time.Duration) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if base == "" {
		return nil, fmt.Errorf("API base URL is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		hc:    &http.Client{Timeout: timeout},
		key:   key,
		delay: delay,
	}, nil
}

// ProviderError is a non-zero status reported in the response body
// (invalid key, quota exhausted, permission denied, bad parameters).
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("baidu: status %d: %s", e.Status, e.Message)
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error %d", e.Code)
	}
	return fmt.Sprintf("HTTP error %d: %s", e.Code, e.Body)
}

var ErrMalformed = errors.New("baidu: malformed response")

type regionResponse struct {
	Status  *int             `json:"status"`
	Message string           `json:"message"`
	Results []map[string]any `json:"results"`
}

// Search returns the best POI for the query restricted to its city.
// After every completed call, hit or miss, it waits the configured delay.
func (c *Client) Search(ctx context.Context, q domain.HotelQuery) (map[string]any, error) {
	params := url.Values{}
	params.Set("query", q.Text())
	params.Set("region", q.City)
	params.Set("region_limit", "true")
	params.Set("filter", "industry_type:hotel")
	params.Set("scope", "1")
	params.Set("page_size", "1")
	params.Set("output", "json")
	params.Set("ak", c.key)

	var out regionResponse
	if err := c.get(ctx, c.base+"/region?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	defer sleepCtx(ctx, c.delay)

	if out.Status == nil {
		return nil, fmt.Errorf("%w: missing status", ErrMalformed)
	}
	if *out.Status != 0 {
		return nil, &ProviderError{Status: *out.Status, Message: out.Message}
	}
	if len(out.Results) == 0 || out.Results[0] == nil {
		return nil, domain.ErrNoResults
	}
	return out.Results[0], nil
}

// get performs one GET and decodes the JSON body into out.
// Numbers are kept as json.Number so pass-through payloads stay exact.
func (c *Client) get(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hotelmap/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("baidu", "region", 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// url.Error carries the full URL, which includes the key
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("place search request failed: %w", uerr.Err)
		}
		return fmt.Errorf("place search request failed: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("baidu", "region", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
