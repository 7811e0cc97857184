// Package httpclient is the transport contract the online billing adapters
// consume. Vendors signal failures through status codes, headers and bodies,
// so non-2xx responses are returned as data, not errors; only transport
// failures (DNS, TLS, timeout) become errors.
package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
)

// Request represents an HTTP request
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Success reports a 2xx status.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Header returns a single response header value.
func (r *Response) Header(key string) string {
	return r.Headers[http.CanonicalHeaderKey(key)]
}

// Client interface for making HTTP requests
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// DefaultTimeout applies when no timeout is configured. A vendor timeout is
// surfaced to callers as an ordinary failed request.
const DefaultTimeout = 30 * time.Second

// DefaultClient implements the Client interface over net/http.
type DefaultClient struct {
	client *http.Client
}

// NewDefaultClient creates a DefaultClient with the default timeout.
func NewDefaultClient() *DefaultClient {
	return NewDefaultClientWithTimeout(DefaultTimeout)
}

// NewDefaultClientWithTimeout creates a DefaultClient with a custom timeout.
func NewDefaultClientWithTimeout(timeout time.Duration) *DefaultClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DefaultClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Send makes an HTTP request and returns the response, whatever its status.
func (c *DefaultClient) Send(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Could not build the vendor request").
			Mark(ierr.ErrHTTPClient)
	}
	if req.Body != nil {
		httpReq.ContentLength = int64(len(req.Body))
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("The billing vendor could not be reached").
			WithReportableDetails(map[string]any{"url": req.URL}).
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Reading the vendor response failed").
			Mark(ierr.ErrHTTPClient)
	}

	headers := make(map[string]string)
	for k, v := range resp.Header {
		if len(v) > 0 {
			headers[http.CanonicalHeaderKey(k)] = v[0]
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       respBody,
	}, nil
}
