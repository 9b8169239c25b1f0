package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultBaseURL is the REST root of the ViaggiaTreno service.
const DefaultBaseURL = "http://www.viaggiatreno.it/infomobilita/resteasy/viaggiatreno"

// acceptHeader asks for JSON where available and plain text everywhere else.
const acceptHeader = "application/json; charset=utf-8, text/*; charset=utf-8"

// DefaultTimeout bounds one whole request, retries excluded.
const DefaultTimeout = 30 * time.Second

// RetryPolicy controls recovery from the upstream's temporary rate ban.
// Only RetryableStatus is ever retried; every other non-OK status fails the
// call immediately.
type RetryPolicy struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	RetryableStatus int
}

// DefaultRetryPolicy matches the observed upstream behavior: a 403 means
// "back off", and the ban usually lifts well within two minutes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     10,
		BaseDelay:       4 * time.Second,
		MaxDelay:        120 * time.Second,
		RetryableStatus: http.StatusForbidden,
	}
}

// Client issues GET requests against the ViaggiaTreno REST API
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      RetryPolicy
}

// NewClient creates a client with the production base URL and defaults.
func NewClient() *Client {
	return NewClientWith(DefaultBaseURL, DefaultTimeout, DefaultRetryPolicy())
}

// NewClientWith creates a client with an injected base URL, timeout and retry
// policy. Tests point baseURL at an httptest server.
func NewClientWith(baseURL string, timeout time.Duration, retry RetryPolicy) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		retry:      retry,
	}
}

// Get performs one logical call to {baseURL}/{endpoint}/{args...}, backing off
// and retrying while the upstream answers with the rate-ban status.
func (c *Client) Get(endpoint string, args ...any) (Response, error) {
	path := joinPath(endpoint, args...)
	reqURL := c.baseURL + "/" + path

	bo := &backoff.ExponentialBackOff{
		InitialInterval:     c.retry.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         c.retry.MaxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	bo.Reset()

	for attempt := 1; ; attempt++ {
		req, err := http.NewRequest(http.MethodGet, reqURL, nil)
		if err != nil {
			return Response{}, fmt.Errorf("building request for %s: %w", path, err)
		}
		req.Header.Set("Accept", acceptHeader)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return Response{}, &NetworkError{Path: path, Err: err}
		}

		if resp.StatusCode == c.retry.RetryableStatus && attempt < c.retry.MaxAttempts {
			resp.Body.Close()
			time.Sleep(bo.NextBackOff())
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return Response{}, &RequestError{Status: resp.StatusCode, Path: path}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return Response{}, &NetworkError{Path: path, Err: err}
		}

		return Response{contentType: resp.Header.Get("Content-Type"), body: body}, nil
	}
}

// joinPath interpolates the endpoint arguments as escaped path segments.
func joinPath(endpoint string, args ...any) string {
	segments := make([]string, 0, len(args)+1)
	segments = append(segments, endpoint)
	for _, arg := range args {
		segments = append(segments, url.PathEscape(fmt.Sprint(arg)))
	}
	return strings.Join(segments, "/")
}

// Response is one upstream body. The service answers with JSON for most
// endpoints and pipe-delimited text (or a bare scalar) for the autocomplete
// ones; the Content-Type header tells them apart. An empty body is a valid
// response meaning "nothing found", not a failure.
type Response struct {
	contentType string
	body        []byte
}

// IsJSON reports whether the upstream declared the body as JSON.
func (r Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.contentType), "application/json")
}

// Empty reports whether the body carries no value at all.
func (r Response) Empty() bool {
	trimmed := bytes.TrimSpace(r.body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Text returns the raw body as a string.
func (r Response) Text() string {
	return string(r.body)
}

// Raw returns the body bytes as received.
func (r Response) Raw() []byte {
	return r.body
}

// Decode unmarshals a JSON body into v. Empty bodies leave v untouched.
func (r Response) Decode(v any) error {
	if r.Empty() {
		return nil
	}
	return json.Unmarshal(r.body, v)
}

// Indent renders a JSON body pretty-printed for terminal output.
func (r Response) Indent() (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(r.body), "", "  "); err != nil {
		return "", fmt.Errorf("formatting response JSON: %w", err)
	}
	return buf.String(), nil
}
