package servicecontrol

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vshulcz/scbridge/internal/ports"
)

const (
	errorsPath       = "api/errors"
	totalCountHeader = "Total-Count"
)

// ErrorsClient reads the unresolved failed-message count from the ServiceControl API.
type ErrorsClient struct {
	*baseClient
}

var _ ports.FailureCounter = (*ErrorsClient)(nil)

// NewErrorsClient normalizes the base address; a nil hc gets a 10s timeout client.
func NewErrorsClient(addr string, hc *http.Client) (*ErrorsClient, error) {
	bc, err := newBaseClient(addr, hc)
	if err != nil {
		return nil, err
	}
	return &ErrorsClient{baseClient: bc}, nil
}

// UnresolvedFailedMessages issues HEAD api/errors?status=unresolved and reads Total-Count.
// A missing or unparsable header counts as zero.
func (c *ErrorsClient) UnresolvedFailedMessages(ctx context.Context) (n int64, retErr error) {
	resp, err := c.do(ctx, http.MethodHead, errorsPath, url.Values{"status": {"unresolved"}})
	if err != nil {
		return 0, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		if cerr := resp.Body.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("close response body: %w", cerr)
		}
	}()

	v := strings.TrimSpace(resp.Header.Get(totalCountHeader))
	if v == "" {
		return 0, nil
	}
	n, err = strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}
