// Package transport posts request documents to the Tally proxy and returns
// the raw reply. It does not retry.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hako/durafmt"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/request"
	"github.com/vouchrit/tally/tally/response"
	"github.com/vouchrit/tally/tally/xmltree"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultProbeTimeout = 5 * time.Second
	DefaultContentType  = "application/xml"
)

// Reason tells the three transport failures apart.
type Reason string

const (
	ReasonTimeout   Reason = "timeout"
	ReasonHTTPError Reason = "http-error"
	ReasonNetwork   Reason = "network"
)

// Error is the single error type of a failed exchange. Body holds the reply
// of a non-2xx response.
type Error struct {
	Reason  Reason
	Status  int
	Body    string
	Timeout time.Duration
	Err     error
}

func (e *Error) Error() string {
	switch e.Reason {
	case ReasonTimeout:
		return "request timed out after " + durafmt.Parse(e.Timeout).String()
	case ReasonHTTPError:
		body := strings.TrimSpace(e.Body)
		if body == "" {
			return fmt.Sprintf("tally proxy returned status %d", e.Status)
		}
		return fmt.Sprintf("tally proxy returned status %d: %s", e.Status, body)
	}
	if e.Err != nil {
		return "unable to reach tally proxy: " + e.Err.Error()
	}
	return "unable to reach tally proxy"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	var terr *Error
	return errors.As(err, &terr) && terr.Reason == ReasonTimeout
}

// Client talks to one endpoint.
type Client struct {
	endpoint     string
	httpClient   *http.Client
	timeout      time.Duration
	probeTimeout time.Duration
	contentType  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of Post.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithProbeTimeout sets the timeout of Probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.probeTimeout = d
		}
	}
}

// WithContentType overrides the request content type.
func WithContentType(ct string) Option {
	return func(c *Client) {
		if ct != "" {
			c.contentType = ct
		}
	}
}

// WithHTTPClient replaces the underlying client. Its own Timeout should be
// zero or longer than the request timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New constructs a client for endpoint, e.g. http://localhost:8000/tally.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:     endpoint,
		httpClient:   &http.Client{},
		timeout:      DefaultTimeout,
		probeTimeout: DefaultProbeTimeout,
		contentType:  DefaultContentType,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint is the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Post sends body and returns the raw reply.
func (c *Client) Post(ctx context.Context, body string) ([]byte, error) {
	return c.post(ctx, body, c.timeout)
}

// Probe checks that Tally answers within the probe timeout and returns the
// companies it has loaded.
func (c *Client) Probe(ctx context.Context) ([]tally.Company, error) {
	raw, err := c.post(ctx, request.FetchCompanies(), c.probeTimeout)
	if err != nil {
		return nil, err
	}
	doc, err := xmltree.Parse(raw)
	if err != nil {
		return nil, err
	}
	return response.Companies(doc), nil
}

func (c *Client) post(ctx context.Context, body string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(body))
	if err != nil {
		return nil, &Error{Reason: ReasonNetwork, Err: err}
	}
	req.Header.Set("Content-Type", c.contentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(err, timeout)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(err, timeout)
	}
	tally.Logger().WithField("status", resp.StatusCode).
		WithField("elapsed", time.Since(start).String()).
		Debug("tally exchange")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Reason: ReasonHTTPError, Status: resp.StatusCode, Body: string(reply)}
	}
	return reply, nil
}

func (c *Client) classify(err error, timeout time.Duration) error {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &Error{Reason: ReasonTimeout, Timeout: timeout, Err: err}
	}
	return &Error{Reason: ReasonNetwork, Err: err}
}
