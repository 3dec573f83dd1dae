package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/api2mcp/internal/common"
	"github.com/bobmcallan/api2mcp/pkg/invoker"
)

func newTestServer() *Server {
	return &Server{logger: common.NewSilentLogger()}
}

func newLoggedServer(level string) (*Server, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Server{logger: common.NewLoggerWithOutput(level, &buf)}, &buf
}

// --- Correlation ID Middleware ---

func TestCorrelationIDMiddleware_GeneratesID(t *testing.T) {
	s := newTestServer()

	handler := s.correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := r.Context().Value(correlationIDKey).(string)
		if !ok || id == "" {
			t.Error("expected correlation ID in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	correlationID := w.Header().Get("X-Correlation-ID")
	if correlationID == "" {
		t.Error("expected X-Correlation-ID header")
	}
}

func TestCorrelationIDMiddleware_UsesProvidedID(t *testing.T) {
	s := newTestServer()

	handler := s.correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(correlationIDKey).(string)
		if id != "test-request-id" {
			t.Errorf("expected test-request-id, got %s", id)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "test-request-id")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Header().Get("X-Correlation-ID") != "test-request-id" {
		t.Errorf("expected X-Correlation-ID=test-request-id, got %s", w.Header().Get("X-Correlation-ID"))
	}
}

func TestCorrelationIDMiddleware_UsesCorrelationIDHeader(t *testing.T) {
	s := newTestServer()

	handler := s.correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(correlationIDKey).(string)
		if id != "existing-correlation-id" {
			t.Errorf("expected existing-correlation-id, got %s", id)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Correlation-ID", "existing-correlation-id")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
}

// --- CORS Middleware ---

func TestCORSMiddleware_SetsHeaders(t *testing.T) {
	s := newTestServer()

	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS origin header")
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected CORS methods header")
	}
}

func TestCORSMiddleware_HandlesPreflight(t *testing.T) {
	s := newTestServer()

	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called for OPTIONS")
	}))

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for preflight, got %d", w.Code)
	}
}

// --- Recovery Middleware ---

func TestRecoveryMiddleware_CatchesPanic(t *testing.T) {
	s := newTestServer()

	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	req := httptest.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500 after panic, got %d", w.Code)
	}
}

func TestRecoveryMiddleware_PassesThrough(t *testing.T) {
	s := newTestServer()

	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/normal", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

// --- Logging Middleware ---

func TestLoggingMiddleware_CapturesStatusCode(t *testing.T) {
	s := newTestServer()

	handler := s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))

	req := httptest.NewRequest("POST", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", w.Code)
	}
}

// --- responseWriter ---

func TestResponseWriter_CapturesBytes(t *testing.T) {
	rw := &responseWriter{
		ResponseWriter: httptest.NewRecorder(),
		statusCode:     http.StatusOK,
	}

	data := []byte("hello world")
	n, err := rw.Write(data)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(data) {
		t.Errorf("expected %d bytes written, got %d", len(data), n)
	}
	if rw.bytesWritten != len(data) {
		t.Errorf("expected bytesWritten=%d, got %d", len(data), rw.bytesWritten)
	}
}

// --- Security Headers Middleware ---

func TestSecurityHeadersMiddleware_SetsAllHeaders(t *testing.T) {
	s := newTestServer()

	handler := s.securityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	// X-Content-Type-Options
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("expected X-Content-Type-Options=nosniff, got %s", w.Header().Get("X-Content-Type-Options"))
	}

	// X-Frame-Options
	if w.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("expected X-Frame-Options=DENY, got %s", w.Header().Get("X-Frame-Options"))
	}

	// Referrer-Policy
	if w.Header().Get("Referrer-Policy") != "strict-origin-when-cross-origin" {
		t.Errorf("expected Referrer-Policy=strict-origin-when-cross-origin, got %s", w.Header().Get("Referrer-Policy"))
	}

	// Content-Security-Policy
	csp := w.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Error("expected Content-Security-Policy header to be set")
	}
	if !strings.Contains(csp, "default-src") {
		t.Error("expected CSP to contain default-src directive")
	}
}

func TestSecurityHeadersMiddleware_PassesThroughResponse(t *testing.T) {
	s := newTestServer()

	handler := s.securityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("I'm a teapot"))
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", w.Code)
	}
}

// --- Max Body Size Middleware ---

func TestMaxBodySizeMiddleware_AllowsSmallBody(t *testing.T) {
	s := newTestServer()

	handler := s.maxBodySizeMiddleware(1024)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("failed to read body: %v", err)
		}
		if string(body) != "small payload" {
			t.Errorf("expected body 'small payload', got '%s'", string(body))
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/test", strings.NewReader("small payload"))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestMaxBodySizeMiddleware_RejectsOversizedBody(t *testing.T) {
	s := newTestServer()

	// Set limit to 10 bytes
	handler := s.maxBodySizeMiddleware(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Reading past the limit fails
		_, err := io.ReadAll(r.Body)
		if err == nil {
			t.Error("expected error reading oversized body")
		}
		w.WriteHeader(http.StatusOK)
	}))

	// Create a body larger than 10 bytes
	largeBody := strings.Repeat("x", 100)
	req := httptest.NewRequest("POST", "/test", strings.NewReader(largeBody))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
}

func TestMaxBodySizeMiddleware_AllowsGETWithNoBody(t *testing.T) {
	s := newTestServer()

	handler := s.maxBodySizeMiddleware(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for GET, got %d", w.Code)
	}
}

// --- Recovery: aborts and cancellation ---

func TestRecoveryMiddleware_RepanicsAbortHandler(t *testing.T) {
	s := newTestServer()

	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("expected http.ErrAbortHandler to propagate, got %v", rec)
		}
	}()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/abort", nil))
	t.Error("expected panic to propagate")
}

func TestRecoveryMiddleware_CanceledIsNotAnError(t *testing.T) {
	s, buf := newLoggedServer("debug")

	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(fmt.Errorf("tool call: %w", context.Canceled))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", nil))

	if w.Code == http.StatusInternalServerError {
		t.Error("expected no 500 for a canceled request")
	}
	if strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("expected no panic log line, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "request canceled by client") {
		t.Errorf("expected debug line for canceled request, got %q", buf.String())
	}
}

func TestRecoveryMiddleware_LogsPanic(t *testing.T) {
	s, buf := newLoggedServer("error")

	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/panic", nil))

	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("expected panic log line, got %q", buf.String())
	}
}

// --- Logging levels ---

func TestLoggingMiddleware_LevelsByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
		want   bool
	}{
		{http.StatusOK, "warn", false},
		{http.StatusNotFound, "warn", true},
		{http.StatusBadGateway, "error", true},
		{http.StatusNotFound, "error", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%s", tt.status, tt.level), func(t *testing.T) {
			s, buf := newLoggedServer(tt.level)
			handler := s.correlationIDMiddleware(s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})))

			req := httptest.NewRequest("GET", "/api/products", nil)
			req.Header.Set("X-Request-ID", "req-42")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			logged := strings.Contains(buf.String(), "HTTP request")
			if logged != tt.want {
				t.Fatalf("expected logged=%v, got %q", tt.want, buf.String())
			}
			if logged && !strings.Contains(buf.String(), "correlation_id=req-42") {
				t.Errorf("expected correlation id in log line, got %q", buf.String())
			}
		})
	}
}

func TestResponseWriter_FlushAndUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.Flush()
	if !rec.Flushed {
		t.Error("expected Flush to reach the underlying writer")
	}
	if rw.Unwrap() != rec {
		t.Error("expected Unwrap to return the underlying writer")
	}
}

// --- Middleware chain ---

func TestWithMiddleware_LoopGuardRunsFirst(t *testing.T) {
	s, buf := newLoggedServer("debug")

	called := false
	handler := s.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("POST", "/MCP/tools", strings.NewReader("{}"))
	req.Header.Set(invoker.InternalCallHeader, "true")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if called {
		t.Error("expected marked MCP call not to reach the router")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if w.Header().Get("X-Correlation-ID") != "" {
		t.Error("expected loop rejection before correlation middleware")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no request log for a rejected loop, got %q", buf.String())
	}
}

func TestWithMiddleware_InternalCallToAPIPasses(t *testing.T) {
	s := newTestServer()

	handler := s.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, path := range []string{"/api/products", "/mcpx"} {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set(invoker.InternalCallHeader, "true")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("%s: expected status 204, got %d", path, w.Code)
		}
	}
}
