package util

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/scrape/types"
)

const UserAgent = "JobTier/1.0 (+https://github.com/jobtier)"

// DefaultTimeout bounds each adapter request.
const DefaultTimeout = 20 * time.Second

func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// JSONRequest describes one API call made by an adapter.
type JSONRequest struct {
	Method  string
	URL     string
	Body    any
	Headers map[string]string
}

// DoJSON performs req and decodes a 2xx body into out. Transport failures
// and non-2xx statuses come back as source-unavailable errors, bad bodies as
// parse failures, all tagged with platform p.
func DoJSON(ctx context.Context, hc *http.Client, lim *HostLimiter, p domain.Platform, req JSONRequest, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return types.Unavailable(p, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	hr, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return types.Unavailable(p, err)
	}
	hr.Header.Set("User-Agent", UserAgent)
	hr.Header.Set("Accept", "application/json")
	if req.Body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		hr.Header.Set(k, v)
	}

	if err := lim.WaitURL(ctx, req.URL); err != nil {
		return types.Unavailable(p, err)
	}

	res, err := hc.Do(hr)
	if err != nil {
		return types.Unavailable(p, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
		return types.BadStatus(p, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return types.Unavailable(p, err)
		}
		return types.ParseFailure(p, err)
	}
	return nil
}
