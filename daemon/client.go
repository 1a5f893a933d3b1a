// Package daemon talks to the local mesh daemon over HTTP.
//
// Both calls absorb failures into values: an offline daemon is an expected
// steady state, so Status reports Connected=false and Retrieve returns a
// failed Result instead of an error.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"meshbrowse/contentid"
	"meshbrowse/logger"
)

// DefaultTimeout bounds every daemon request unless configured otherwise.
const DefaultTimeout = 5 * time.Second

// Source says where the daemon found the content.
type Source string

const (
	SourceCache   Source = "cache"
	SourcePeer    Source = "peer"
	SourceUnknown Source = "unknown"
)

// Status is a snapshot of daemon health. It is replaced wholesale on every
// poll, never patched in place.
type Status struct {
	Connected bool      `json:"connected"`
	NodeCount uint64    `json:"nodeCount"`
	CacheSize uint64    `json:"cacheSize"`
	LastCheck time.Time `json:"lastCheck"`
}

// Result is the outcome of one retrieval.
type Result struct {
	Success  bool         `json:"success"`
	Content  string       `json:"content,omitempty"`
	MimeType string       `json:"mimeType,omitempty"`
	Source   Source       `json:"source,omitempty"`
	Hash     contentid.ID `json:"hash,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		BaseURL:   "http://localhost:8765",
		Timeout:   DefaultTimeout,
		UserAgent: "meshbrowse/1.0",
	}
}

// Client issues status and retrieval requests. It holds no mutable state
// shared with its callers.
type Client struct {
	base      string
	userAgent string
	http      *http.Client
	log       logger.Logger
	metrics   *Metrics
}

// NewClient creates a client. A nil logger discards output; a nil metrics
// value disables instrumentation.
func NewClient(o Options, log logger.Logger, m *Metrics) *Client {
	def := DefaultOptions()
	if o.BaseURL == "" {
		o.BaseURL = def.BaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.UserAgent == "" {
		o.UserAgent = def.UserAgent
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		base:      strings.TrimRight(o.BaseURL, "/"),
		userAgent: o.UserAgent,
		http:      &http.Client{Timeout: o.Timeout},
		log:       log,
		metrics:   m,
	}
}

// BaseURL returns the daemon endpoint the client talks to.
func (c *Client) BaseURL() string { return c.base }

type statusBody struct {
	Nodes     uint64 `json:"nodes"`
	CacheSize uint64 `json:"cache_size"`
}

type retrieveBody struct {
	Content  string `json:"content"`
	MimeType string `json:"mime_type"`
	Source   string `json:"source"`
}

// Status queries GET /status. Any transport failure, non-2xx response or
// undecodable body yields Connected=false.
func (c *Client) Status(ctx context.Context) Status {
	now := time.Now()

	var body statusBody
	if err := c.getJSON(ctx, "/status", &body); err != nil {
		c.log.Debug("Daemon not accessible", logger.String("daemon", c.base), logger.Error(err))
		c.metrics.observeStatus(false)
		return Status{LastCheck: now}
	}

	c.metrics.observeStatus(true)
	return Status{
		Connected: true,
		NodeCount: body.Nodes,
		CacheSize: body.CacheSize,
		LastCheck: now,
	}
}

// Retrieve queries GET /retrieve/{id}. Failures come back as a Result with
// Success=false and the HTTP status or transport message in Error.
func (c *Client) Retrieve(ctx context.Context, id contentid.ID) Result {
	var body retrieveBody
	if err := c.getJSON(ctx, "/retrieve/"+id.String(), &body); err != nil {
		c.log.Warn("Failed to retrieve from mesh",
			logger.String("hash", id.String()),
			logger.Error(err),
		)
		c.metrics.observeRetrieveError()
		return Result{Success: false, Error: err.Error()}
	}

	mime := body.MimeType
	if mime == "" {
		mime = "text/html"
	}
	src := Source(body.Source)
	if src == "" {
		src = SourceUnknown
	}

	c.metrics.observeRetrieve(src)
	return Result{
		Success:  true,
		Content:  body.Content,
		MimeType: mime,
		Source:   src,
		Hash:     id,
	}
}

// StatusError reports a non-2xx daemon response.
type StatusError struct {
	Code int
	Text string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Text)
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode, Text: http.StatusText(resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
