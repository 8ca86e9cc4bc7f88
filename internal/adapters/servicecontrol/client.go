// Package servicecontrol implements the HTTP clients for the ServiceControl errors and monitoring APIs.
package servicecontrol

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vshulcz/scbridge/internal/domain"
	"github.com/vshulcz/scbridge/internal/misc"
)

const defaultTimeout = 10 * time.Second

// maxPooledBuffer keeps one unusually large monitoring payload from pinning memory.
const maxPooledBuffer = 1 << 20

var bufferPool = misc.NewPool(
	func() *bytes.Buffer { return new(bytes.Buffer) },
	misc.WithDiscard(func(b *bytes.Buffer) bool { return b.Cap() > maxPooledBuffer }),
)

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return "upstream status: " + e.Status
}

type baseClient struct {
	base *url.URL
	hc   *http.Client
}

func newBaseClient(addr string, hc *http.Client) (*baseClient, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("%w: empty base address", domain.ErrInvalidArgument)
	}
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	u, err := url.Parse(normalizeBase(addr))
	if err != nil {
		return nil, fmt.Errorf("%w: base address %q: %v", domain.ErrInvalidArgument, addr, err)
	}
	return &baseClient{base: u, hc: hc}, nil
}

func normalizeBase(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return strings.TrimRight(s, "/")
	}
	return "http://" + strings.TrimRight(s, "/")
}

func (c *baseClient) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

// do sends the request and returns the response only for 2xx statuses.
func (c *baseClient) do(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if err := checkHTTPStatus(resp); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func checkHTTPStatus(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return nil
}

// readBody copies the (possibly gzipped) body into buf.
func readBody(resp *http.Response, buf *bytes.Buffer) error {
	var r io.Reader = resp.Body
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Encoding")), "gzip") {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("bad gzip: %w", err)
		}
		defer func() {
			_ = gr.Close()
		}()
		r = gr
	}
	if _, err := buf.ReadFrom(r); err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return nil
}
