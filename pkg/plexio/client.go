package plexio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ClientOptions are the options for the Plexio client.
type ClientOptions struct {
	// The base URL of the Plexio addon, including the user specific path.
	// For example "https://plexio.stream/addon/XXXXXXXX".
	// When empty, the client is considered unconfigured and won't send any requests.
	// Default "".
	BaseURL string
	// Timeout for requests.
	// A more customizable cancellation can be achieved with the context,
	// but it can never be *longer* than this timeout.
	// Default 10 seconds.
	Timeout time.Duration
	// HTTP client to use instead of the one the client creates itself.
	// When set, Timeout is ignored.
	// Default nil.
	HTTPClient HTTPClient
}

// DefaultClientOpts is an options object with sensible defaults.
var DefaultClientOpts = ClientOptions{
	// HTTP client timeout
	Timeout: 10 * time.Second,
}

// HTTPClient is the part of *http.Client that the Plexio client uses.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ HTTPClient = (*http.Client)(nil)

// Client is the Plexio client.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	logger     *zap.Logger
}

// NewClient creates a new Plexio client.
func NewClient(opts ClientOptions, logger *zap.Logger) *Client {
	// Set defaults if necessary.
	if opts.Timeout == 0 {
		opts.Timeout = DefaultClientOpts.Timeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Configured returns whether a base URL was set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// StreamURL builds the URL of the stream resource for the given media type and ID.
// Both are escaped individually, so that reserved characters like "/" can't change the path.
// The raw query is appended unmodified if it's not empty.
func (c *Client) StreamURL(mediaType, mediaID, rawQuery string) string {
	u := c.baseURL + "/stream/" + escapeComponent(mediaType) + "/" + escapeComponent(mediaID) + ".json"
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

// GetStreams requests the streams for the given media type and ID from Plexio.
// The stream objects are returned as they were received.
// A missing or non-array "streams" field leads to an empty slice and no error.
//
// The context can control the lifetime of the request, and if for example the timeout is shorter
// than the HTTP client's configured timeout then it takes precedence.
func (c *Client) GetStreams(ctx context.Context, mediaType, mediaID, rawQuery string) ([]json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	reqURL := c.StreamURL(mediaType, mediaID, rawQuery)
	c.logger.Debug("Forwarding to Plexio", zap.String("target", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("couldn't GET %v: %w", reqURL, err)
	}
	defer res.Body.Close()

	c.logger.Debug("Plexio response", zap.Int("status", res.StatusCode), zap.Bool("ok", isSuccess(res.StatusCode)))

	if !isSuccess(res.StatusCode) {
		preview, _ := io.ReadAll(io.LimitReader(res.Body, bodyPreviewLen))
		return nil, &StatusError{StatusCode: res.StatusCode, Body: string(preview)}
	}

	// One byte more than allowed, to detect bodies that are too large
	resBody, err := io.ReadAll(io.LimitReader(res.Body, maxBodyLen+1))
	if err != nil {
		return nil, fmt.Errorf("couldn't read response body: %w", err)
	}
	if len(resBody) > maxBodyLen {
		return nil, fmt.Errorf("%w: more than %v bytes", ErrBodyTooLarge, maxBodyLen)
	}
	return decodeStreams(resBody)
}

func decodeStreams(body []byte) ([]json.RawMessage, error) {
	// A top-level "null" leaves the map nil, which is handled like a missing field.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, &DecodeError{Err: err}
	}
	raw, ok := fields["streams"]
	if !ok {
		return []json.RawMessage{}, nil
	}
	streams := []json.RawMessage{}
	if err := json.Unmarshal(raw, &streams); err != nil || streams == nil {
		// Not an array (or null)
		return []json.RawMessage{}, nil
	}
	return streams, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
