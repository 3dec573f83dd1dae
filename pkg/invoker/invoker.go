// Package invoker performs the HTTP self-calls behind every MCP tool.
//
// Each call resolves the service's own base URL, marks the request with
// InternalCallHeader so the receiving side can refuse loops into the MCP
// endpoint, forwards the caller's Authorization header, and turns non-2xx
// responses into a structured JSON payload instead of an error.
package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bobmcallan/api2mcp/internal/common"
)

const (
	// InternalCallHeader marks requests issued by the invoker.
	InternalCallHeader = "X-MCP-Internal-Call"
	// ContentTypeJSON is sent with every request body.
	ContentTypeJSON = "application/json; charset=utf-8"

	// maxErrorBody caps the response body copied into an error payload.
	maxErrorBody = 1000
	// maxLoggedBody caps the response body written to the failure log line.
	maxLoggedBody = 500
	// maxResponseSize caps how much of a response is read.
	maxResponseSize = 50 << 20
)

// ErrCanceled is wrapped around context cancellation and deadline errors so
// callers can tell an abandoned call from a transport failure.
var ErrCanceled = errors.New("invocation canceled")

// BaseURLProvider supplies the self-call target. *baseurl.Resolver
// implements it.
type BaseURLProvider interface {
	BaseURL() (string, error)
}

// Options configures an Invoker. Every field is optional.
type Options struct {
	HTTPClient *http.Client
	Scope      ScopeOptions
	Metrics    *Metrics
	Tracer     trace.Tracer
}

// Invoker issues marked HTTP calls against the running service. It holds
// no per-call state and is safe for concurrent use.
type Invoker struct {
	base    BaseURLProvider
	client  *http.Client
	logger  *common.Logger
	scope   ScopeOptions
	metrics *Metrics
	tracer  trace.Tracer
}

// New creates an Invoker.
func New(base BaseURLProvider, logger *common.Logger, opts Options) *Invoker {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 300 * time.Second}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("api2mcp/invoker")
	}
	if opts.Scope.ClaimName == "" {
		opts.Scope.ClaimName = DefaultClaimName
	}
	return &Invoker{
		base:    base,
		client:  client,
		logger:  logger,
		scope:   opts.Scope,
		metrics: opts.Metrics,
		tracer:  tracer,
	}
}

// CallOption adjusts a single outgoing request.
type CallOption func(*http.Request)

// WithHeader sets a request header. Header-bound tool arguments use it.
func WithHeader(name, value string) CallOption {
	return func(r *http.Request) {
		r.Header.Set(name, value)
	}
}

// Get issues a GET.
func (i *Invoker) Get(ctx context.Context, route string, opts ...CallOption) (string, error) {
	return i.Send(ctx, http.MethodGet, route, nil, opts...)
}

// Post issues a POST. A nil body sends no content.
func (i *Invoker) Post(ctx context.Context, route string, body []byte, opts ...CallOption) (string, error) {
	return i.Send(ctx, http.MethodPost, route, body, opts...)
}

// Put issues a PUT. A nil body sends no content.
func (i *Invoker) Put(ctx context.Context, route string, body []byte, opts ...CallOption) (string, error) {
	return i.Send(ctx, http.MethodPut, route, body, opts...)
}

// Patch issues a PATCH. A nil body sends no content.
func (i *Invoker) Patch(ctx context.Context, route string, body []byte, opts ...CallOption) (string, error) {
	return i.Send(ctx, http.MethodPatch, route, body, opts...)
}

// Delete issues a DELETE.
func (i *Invoker) Delete(ctx context.Context, route string, opts ...CallOption) (string, error) {
	return i.Send(ctx, http.MethodDelete, route, nil, opts...)
}

// Send issues method against route relative to the base URL and returns
// the response body. Non-2xx responses are returned as an error payload
// with a nil error.
func (i *Invoker) Send(ctx context.Context, method, route string, body []byte, opts ...CallOption) (string, error) {
	base, err := i.base.BaseURL()
	if err != nil {
		return "", err
	}
	url := base + "/" + strings.TrimLeft(route, "/")

	ctx, span := i.tracer.Start(ctx, "invoker "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
		))
	defer span.End()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return "", fmt.Errorf("build %s request: %w", method, err)
	}
	i.configureRequest(ctx, req, body != nil)
	for _, opt := range opts {
		opt(req)
	}

	i.logger.Debug().Str("method", method).Str("url", url).Msg("MCP invoking")

	start := time.Now()
	resp, err := i.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		span.RecordError(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			span.SetStatus(codes.Error, "canceled")
			i.metrics.observe(method, "canceled", duration)
			return "", fmt.Errorf("%w: %s %s: %w", ErrCanceled, method, route, ctxErr)
		}
		span.SetStatus(codes.Error, "transport")
		i.metrics.observe(method, "error", duration)
		i.logger.Error().Str("method", method).Str("url", url).Int64("duration_ms", duration.Milliseconds()).Err(err).Msg("MCP HTTP call failed")
		return "", fmt.Errorf("%s %s: %w", method, route, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	i.metrics.observe(method, statusClass(resp.StatusCode), duration)

	return i.handleResponse(ctx, resp)
}

// configureRequest adds the loop marker, the content type for bodies and
// the forwarded Authorization header.
func (i *Invoker) configureRequest(ctx context.Context, req *http.Request, hasBody bool) {
	req.Header.Set(InternalCallHeader, "true")
	if hasBody {
		req.Header.Set("Content-Type", ContentTypeJSON)
	}

	raw, ok := AuthorizationFrom(ctx)
	if !ok || strings.TrimSpace(raw) == "" {
		return
	}
	if value, ok := parseAuthorization(raw); ok {
		req.Header.Set("Authorization", value)
		return
	}
	i.logger.Warn().Int("length", len(raw)).Msg("Failed to parse Authorization header, not forwarding it")
}

// errorPayload is returned in place of the body for non-2xx responses.
type errorPayload struct {
	Error      bool   `json:"error"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Body       string `json:"body"`
}

func (i *Invoker) handleResponse(ctx context.Context, resp *http.Response) (string, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: read response: %w", ErrCanceled, ctxErr)
		}
		return "", fmt.Errorf("read response: %w", err)
	}
	content := string(data)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return content, nil
	}

	i.logger.Warn().
		Int("status", resp.StatusCode).
		Str("body", truncate(content, maxLoggedBody)).
		Msgf("MCP HTTP call failed with status %d", resp.StatusCode)

	payload, err := json.Marshal(errorPayload{
		Error:      true,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Body:       truncate(content, maxErrorBody),
	})
	if err != nil {
		return "", fmt.Errorf("encode error payload: %w", err)
	}
	return string(payload), nil
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	count := 0
	for idx := range s {
		if count == n {
			return s[:idx]
		}
		count++
	}
	return s
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
