// Package upstream talks to the platform REST API behind the admin console.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/pkg/casing"
	"github.com/samirrijal/echoadmin/internal/pkg/config"
	"github.com/samirrijal/echoadmin/internal/pkg/metrics"
)

var tracer = otel.Tracer("echoadmin/upstream")

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// StatusError is a non-2xx response from the upstream API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream returned %d", e.Status)
}

// ServerMessage returns the "message" field of the error body, if any.
func (e *StatusError) ServerMessage() string { return e.Message }

// Is maps 404 to domain.ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrNotFound && e.Status == http.StatusNotFound
}

// Client is an HTTP client for the upstream API. Response keys are normalized to camelCase.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client from configuration.
func New(cfg config.UpstreamConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.TimeoutDuration(),
		},
	}
}

// Ping checks that the upstream API answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return &StatusError{Status: resp.StatusCode}
	}
	return nil
}

// do sends a request and decodes the normalized JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) (err error) {
	ctx, span := tracer.Start(ctx, "upstream."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("http.method", method), attribute.String("upstream.path", path))
	start := time.Now()
	status := 0
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		metrics.UpstreamRequestsTotal.WithLabelValues(op, strconv.Itoa(status)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode == http.StatusUnauthorized {
		slog.WarnContext(ctx, "upstream authentication expired", "path", path, "trace_id", span.SpanContext().TraceID().String())
	}
	if resp.StatusCode >= 400 {
		return readStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	return decodeNormalized(raw, out)
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	return c.do(ctx, op, http.MethodGet, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, op, method, path, body, "application/json", out)
}

func readStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	serr := &StatusError{Status: resp.StatusCode}
	var payload struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		serr.Message = messageString(payload.Message)
		if serr.Message == "" {
			serr.Message = messageString(payload.Error)
		}
	}
	return serr
}

// messageString accepts "msg" and ["msg1","msg2"] (validation pipes emit arrays).
func messageString(v any) string {
	switch m := v.(type) {
	case string:
		return m
	case []any:
		parts := make([]string, 0, len(m))
		for _, p := range m {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// decodeNormalized converts keys to camelCase before decoding into out.
func decodeNormalized(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	normalized, err := json.Marshal(casing.TransformKeys(generic, casing.Camel))
	if err != nil {
		return fmt.Errorf("normalize response: %w", err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// envelopeKeys are the wrapper fields list endpoints have been seen to use.
var envelopeKeys = []string{"data", "items", "list", "results", "bundles", "complaints", "echoes"}

// listOf decodes either a bare array or an object wrapping one.
func listOf[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil
	}
	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	for _, k := range envelopeKeys {
		if inner, ok := obj[k]; ok {
			return listOf[T](inner)
		}
	}
	return nil, errors.New("response is neither a list nor a known list envelope")
}

// oneOf decodes an object, unwrapping {"data": {...}} when present.
func oneOf[T any](raw json.RawMessage) (*T, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if inner, ok := obj["data"]; ok && len(inner) > 0 && inner[0] == '{' {
			raw = inner
		}
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
