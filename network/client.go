// Package network provides the shared fasthttp client used by the guard
// client and every HTTP-speaking provider adapter (Groq, Together, MistralAI,
// OpenAI-compatible chat endpoints). The Gateway builds one Client and
// reuses it across concurrent pipeline invocations (spec.md §5: "HTTP
// connection pools per provider are process-wide"); the catalog loader
// keeps a separate Client for its pricing-document fetch.
package network

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxConns    = 200
	DefaultIdleTimeout = 30 * time.Second
)

// Client is a thin, reusable JSON-over-HTTP wrapper around fasthttp.
type Client struct {
	fast    *fasthttp.Client
	timeout time.Duration
}

// New builds a Client with the given per-request timeout. A zero timeout
// falls back to DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		fast: &fasthttp.Client{
			MaxConnsPerHost:     DefaultMaxConns,
			MaxIdleConnDuration: DefaultIdleTimeout,
		},
		timeout: timeout,
	}
}

// PostJSON marshals reqBody, POSTs it to url with the given extra headers,
// and unmarshals a 2xx response body into respBody (which may be nil to
// discard the body). Non-2xx responses are returned as an error carrying the
// status code and raw body for the caller to classify.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, reqBody, respBody any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if reqBody != nil {
		payload, err := sonic.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		req.SetBody(payload)
	}

	deadline := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining > 0 && remaining < deadline {
			deadline = remaining
		}
	}

	if err := c.fast.DoDeadline(req, resp, time.Now().Add(deadline)); err != nil {
		return fmt.Errorf("http request to %s: %w", url, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return &HTTPStatusError{URL: url, Status: status, Body: string(resp.Body())}
	}

	if respBody != nil {
		if err := sonic.Unmarshal(resp.Body(), respBody); err != nil {
			return fmt.Errorf("unmarshal response body from %s: %w", url, err)
		}
	}
	return nil
}

// GetJSON issues a GET to url and unmarshals a 2xx response body into
// respBody. Used for read-only fetches (e.g. the catalog's remote pricing
// document) where there is no request payload to send.
func (c *Client) GetJSON(ctx context.Context, url string, respBody any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining > 0 && remaining < deadline {
			deadline = remaining
		}
	}

	if err := c.fast.DoDeadline(req, resp, time.Now().Add(deadline)); err != nil {
		return fmt.Errorf("http request to %s: %w", url, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return &HTTPStatusError{URL: url, Status: status, Body: string(resp.Body())}
	}

	if respBody != nil {
		if err := sonic.Unmarshal(resp.Body(), respBody); err != nil {
			return fmt.Errorf("unmarshal response body from %s: %w", url, err)
		}
	}
	return nil
}

// HTTPStatusError is returned for any non-2xx HTTP response.
type HTTPStatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.URL, e.Status, e.Body)
}
