// Package walkscore is a minimal client for the Walk Score scoring API.
// Responses are returned verbatim; their schema is never interpreted.
package walkscore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/walkability/walkscore-proxy/internal/models"
	"github.com/walkability/walkscore-proxy/internal/observability"
)

var (
	// ErrMissingAPIKey means the client was built without a credential.
	ErrMissingAPIKey = errors.New("walkscore: api key not configured")
	// ErrMissingParams means lat, lon or address was empty.
	ErrMissingParams = errors.New("walkscore: missing required parameters")
	// ErrBodyTooLarge means the upstream body exceeded Options.MaxBodyBytes.
	ErrBodyTooLarge = errors.New("upstream response body too large")
)

// UpstreamError wraps a failure to reach the scoring API or read its reply.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "walkscore: upstream request failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Result is the upstream reply.
type Result struct {
	StatusCode int
	Body       []byte
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxBodyBytes int64
	// Transport overrides the base round tripper; nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Client issues score lookups. It is safe for concurrent use.
type Client struct {
	baseURL  string
	apiKey   string
	maxBody  int64
	http     *http.Client
	validate *validator.Validate
}

// New creates a Client. An empty APIKey is accepted so the caller can
// report the misconfiguration per request.
func New(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		maxBody: opts.MaxBodyBytes,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(base),
			// A 3xx is relayed as-is; following it would resend the key to
			// whatever Location names.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		validate: validator.New(),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// BuildURL returns the scoring URL for q. Parameter order is fixed and every
// value is percent-encoded.
func BuildURL(baseURL, apiKey string, q models.ScoreQuery) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}

	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString(sep)
	b.WriteString("format=json")
	b.WriteString("&lat=" + escape(q.Lat))
	b.WriteString("&lon=" + escape(q.Lon))
	b.WriteString("&address=" + escape(q.Address))
	b.WriteString("&transit=1&bike=1")
	b.WriteString("&wsapikey=" + escape(apiKey))
	return b.String()
}

// escape percent-encodes s for a query value, spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Score fetches the walkability score for q. The call is bounded by the
// client timeout and by ctx.
func (c *Client) Score(ctx context.Context, q models.ScoreQuery) (*Result, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}
	if err := c.validate.Struct(q); err != nil {
		return nil, ErrMissingParams
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BuildURL(c.baseURL, c.apiKey, q), nil)
	if err != nil {
		return nil, &UpstreamError{Err: redact(err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.RecordUpstream("error", time.Since(start))
		return nil, &UpstreamError{Err: redact(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		observability.RecordUpstream("error", time.Since(start))
		return nil, &UpstreamError{Err: redact(err)}
	}
	if int64(len(body)) > c.maxBody {
		observability.RecordUpstream("error", time.Since(start))
		return nil, &UpstreamError{Err: fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, c.maxBody)}
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	observability.RecordUpstream(strconv.Itoa(status), time.Since(start))

	return &Result{StatusCode: status, Body: body}, nil
}

// redact strips the request URL, which carries the API key, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
