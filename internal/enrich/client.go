// Package enrich talks to the external reasoning service. Every call is
// bounded by a timeout and optionally guarded by a circuit breaker; failures
// surface as *RemoteError and callers decide whether to fall back.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/logger"
	"github.com/MrSnakeDoc/curator/internal/metrics"
	"github.com/MrSnakeDoc/curator/internal/utils"
	"github.com/sony/gobreaker"
)

// Endpoint names a reasoning service call for logs and metrics.
type Endpoint string

const (
	EndpointResource Endpoint = "resource"
	EndpointForm     Endpoint = "form"
	EndpointDocument Endpoint = "document"
)

const (
	resourcePath = "/agent/resource/enrich"
	documentPath = "/agent/document/analyze"

	defaultTimeout = 30 * time.Second
	maxResponse    = 1 << 20
)

// Options configures a Client. Zero values pick the defaults.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	BreakerEnabled bool
	BreakerTimeout time.Duration

	// Client overrides the HTTP client used for calls.
	Client *http.Client
}

// ResourceInput describes a stored resource for the enrichment endpoint.
type ResourceInput struct {
	ResourceID  string
	URL         string
	Kind        domain.Kind
	Title       string
	Description string
	Needs       domain.EnrichmentNeeds
	Scope       domain.Scope
}

// Document is an uploaded file for the analysis endpoint.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Client is the reasoning service client.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     logger.Logger
	metrics *metrics.Collector
}

// New creates a Client. metrics may be nil.
func New(opts Options, log logger.Logger, m *metrics.Collector) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	httpClient := opts.Client
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		http:    httpClient,
		log:     log,
		metrics: m,
	}

	if opts.BreakerEnabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "reasoning-service",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     opts.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("circuit breaker state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()))
			},
		})
	}
	return c
}

// BreakerState reports the circuit state, or "disabled".
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// Enrich asks the service to fill the fields flagged in in.Needs.
func (c *Client) Enrich(ctx context.Context, in ResourceInput) (domain.EnrichmentResult, error) {
	body, err := json.Marshal(resourceRequest{
		ResourceID:          in.ResourceID,
		URL:                 optional(in.URL),
		Type:                in.Kind,
		ExistingTitle:       optional(in.Title),
		ExistingDescription: optional(in.Description),
		Needs:               in.Needs,
		UserID:              in.Scope.UserID,
		Persona:             in.Scope.Persona,
	})
	if err != nil {
		return domain.EnrichmentResult{}, fmt.Errorf("failed to marshal enrich request: %w", err)
	}
	return c.call(ctx, EndpointResource, resourcePath, jsonBody(body))
}

// EnrichForForm asks for a full suggestion for an unsaved URL.
func (c *Client) EnrichForForm(ctx context.Context, rawURL string, scope domain.Scope) (domain.EnrichmentResult, error) {
	body, err := json.Marshal(formRequest{
		ResourceID: FormFillResourceID,
		URL:        rawURL,
		Persona:    scope.Persona,
		UserID:     scope.UserID,
	})
	if err != nil {
		return domain.EnrichmentResult{}, fmt.Errorf("failed to marshal form request: %w", err)
	}
	return c.call(ctx, EndpointForm, resourcePath, jsonBody(body))
}

// AnalyzeDocument uploads file bytes to the document analysis endpoint.
func (c *Client) AnalyzeDocument(ctx context.Context, doc Document, scope domain.Scope) (domain.EnrichmentResult, error) {
	body, contentType, err := multipartBody(doc, scope)
	if err != nil {
		return domain.EnrichmentResult{}, fmt.Errorf("failed to build multipart body: %w", err)
	}
	return c.call(ctx, EndpointDocument, documentPath, payload{contentType: contentType, body: body})
}

// payload is a replayable request body.
type payload struct {
	contentType string
	body        []byte
}

func jsonBody(b []byte) payload {
	return payload{contentType: "application/json", body: b}
}

func (c *Client) call(ctx context.Context, endpoint Endpoint, path string, p payload) (domain.EnrichmentResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	exec := func() (interface{}, error) {
		return c.send(ctx, endpoint, path, p)
	}

	var out interface{}
	var err error
	if c.breaker != nil {
		out, err = c.breaker.Execute(exec)
	} else {
		out, err = exec()
	}
	elapsed := time.Since(start)

	if err != nil {
		var remote *RemoteError
		if !errors.As(err, &remote) {
			remote = classify(endpoint, err)
		}
		c.logFailure(remote, elapsed)
		c.metrics.EnrichmentCall(string(endpoint), string(remote.Kind), elapsed)
		return domain.EnrichmentResult{}, remote
	}

	c.metrics.EnrichmentCall(string(endpoint), "ok", elapsed)
	c.log.Debug("reasoning service answered",
		logger.String("endpoint", string(endpoint)),
		logger.Duration("elapsed", elapsed))
	return out.(domain.EnrichmentResult), nil
}

func (c *Client) send(ctx context.Context, endpoint Endpoint, path string, p payload) (domain.EnrichmentResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(p.body))
	if err != nil {
		return domain.EnrichmentResult{}, &RemoteError{Endpoint: endpoint, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", p.contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.EnrichmentResult{}, classify(endpoint, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponse))
		return domain.EnrichmentResult{}, &RemoteError{Endpoint: endpoint, Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	var r response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponse)).Decode(&r); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.EnrichmentResult{}, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.EnrichmentResult{}, classify(endpoint, err)
		}
		return domain.EnrichmentResult{}, &RemoteError{Endpoint: endpoint, Kind: KindDecode, StatusCode: resp.StatusCode, Err: err}
	}
	return r.result(), nil
}

func (c *Client) logFailure(err *RemoteError, elapsed time.Duration) {
	fields := []logger.Field{
		logger.String("endpoint", string(err.Endpoint)),
		logger.String("remote_kind", string(err.Kind)),
		logger.Duration("elapsed", elapsed),
		logger.Error(err),
	}
	switch err.Kind {
	case KindConnectionRefused:
		c.log.Error("reasoning service refused connection, is it running?",
			append(fields, logger.String("base_url", c.baseURL))...)
	case KindBreakerOpen:
		c.log.Warn("reasoning service call short-circuited", fields...)
	case KindStatus:
		c.log.Warn("reasoning service returned an error status",
			append(fields, logger.Int("status", err.StatusCode))...)
	default:
		c.log.Warn("reasoning service call failed", fields...)
	}
}

func multipartBody(doc Document, scope domain.Scope) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, doc.Filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Content); err != nil {
		return nil, "", err
	}

	fields := [][2]string{
		{"persona", scope.Persona},
		{"type", string(domain.KindDocument)},
		{"userId", scope.UserID},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
