// Package client sends questions to an answer endpoint and streams the
// responses through pkg/stream.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/papercomputeco/askstream/pkg/logger"
	"github.com/papercomputeco/askstream/pkg/stream"
)

const (
	// DefaultEndpoint is the answer endpoint of a local mock server.
	DefaultEndpoint = "http://localhost:8088/ask"

	// DefaultTimeout bounds the wait for response headers. The stream
	// itself is not bounded.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 4 << 10
)

// ErrUnexpectedStatus is wrapped by a TransportError for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Config holds configuration for a Client.
type Config struct {
	// Endpoint is the URL questions are posted to.
	Endpoint string

	// Timeout bounds the wait for response headers. Defaults to
	// DefaultTimeout. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client

	// Logger is passed on to every stream.
	Logger *slog.Logger

	// Tee receives a copy of every raw response byte.
	Tee io.Writer
}

// Client posts questions and streams answers.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	tee        io.Writer
}

type askRequest struct {
	Question string `json:"question"`
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint %q: missing host", endpoint)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = timeout
		httpClient = &http.Client{Transport: transport}
	}

	l := cfg.Logger
	if l == nil {
		l = logger.Nop()
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     l,
		tee:        cfg.Tee,
	}, nil
}

// Endpoint returns the URL questions are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ask posts question and streams the answer to handler, blocking until the
// stream ends. The handler contract is the one of stream.Stream.Run: exactly
// one terminal callback unless ctx is canceled first. Request failures are
// reported as a *stream.TransportError through OnError.
func (c *Client) Ask(ctx context.Context, question string, handler stream.Handler, opts ...stream.Option) error {
	streamOpts := []stream.Option{stream.WithLogger(c.logger)}
	if c.tee != nil {
		streamOpts = append(streamOpts, stream.WithTee(c.tee))
	}
	s := stream.New(handler, append(streamOpts, opts...)...)

	c.logger.Debug("asking",
		"endpoint", c.endpoint,
		"request_id", s.RequestID(),
		"generation", s.Generation(),
	)

	resp, err := c.open(ctx, question)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s.Cancel(ctxErr)
		}
		s.Fail(err)
		return err
	}
	defer resp.Body.Close()

	return s.Run(ctx, resp.Body)
}

// open sends the request and validates the response. On success the caller
// owns the response body.
func (c *Client) open(ctx context.Context, question string) (*http.Response, error) {
	jsonBody, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return nil, &stream.TransportError{Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &stream.TransportError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &stream.TransportError{Err: fmt.Errorf("sending request: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		if readErr != nil {
			c.logger.Debug("reading error response body",
				"status", resp.StatusCode,
				"bytes_read", len(excerpt),
				"error", readErr,
			)
		}
		return nil, &stream.TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(excerpt)),
			Err:        ErrUnexpectedStatus,
		}
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, &stream.TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        stream.ErrNilBody,
		}
	}

	return resp, nil
}
