package zippyshare

import (
	"context"
	"io"
	"net/http"
	"strings"

	"zippyfetch/internal"
)

const (
	siteURL  = "https://www.zippyshare.com"
	loginURL = siteURL + "/services/login"

	// pages are small HTML documents; anything larger is not one of them
	maxPageSize = 8 << 20
)

// Doer sends HTTP requests. *utils.HTTPClient and *http.Client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

func newRequest(ctx context.Context, step, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, internal.NewTransportError(step, 0, err).WithURL(url)
	}
	return req, nil
}

// send performs req and turns network failures and error statuses into
// transport errors tagged with step
func send(client Doer, step string, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, internal.NewTransportError(step, 0, err).WithURL(req.URL.String())
	}
	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, internal.NewTransportError(step, resp.StatusCode, nil).WithURL(req.URL.String())
	}
	return resp, nil
}

// readPage reads and closes a text response body
func readPage(step string, resp *http.Response) (string, error) {
	defer resp.Body.Close()

	var b strings.Builder
	if _, err := io.Copy(&b, io.LimitReader(resp.Body, maxPageSize)); err != nil {
		return "", internal.NewTransportError(step, 0, err)
	}
	return b.String(), nil
}

// discard drains and closes a response whose body is not needed
func discard(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
