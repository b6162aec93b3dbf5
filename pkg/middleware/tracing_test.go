package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// recordingSpan keeps what the middleware sets on it.
type recordingSpan struct {
	noop.Span
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	ended  bool
}

func (s *recordingSpan) SetName(name string) { s.name = name }

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	noop.Tracer
	spans *[]*recordingSpan
}

func (t recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordingSpan{name: name, attrs: map[attribute.Key]attribute.Value{}}
	s.SetAttributes(cfg.Attributes()...)
	*t.spans = append(*t.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingProvider struct {
	noop.TracerProvider
	spans []*recordingSpan
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return recordingTracer{spans: &p.spans}
}

func TestTracing_NamesSpanAfterRoute(t *testing.T) {
	tp := &recordingProvider{}
	h := newSite(t, Tracing(WithTracerProvider(tp)))

	serve(h, http.MethodGet, "/blog/hello")
	serve(h, http.MethodGet, "/missing")
	serve(h, http.MethodGet, "/broken")

	if len(tp.spans) != 3 {
		t.Fatalf("spans = %d, want 3", len(tp.spans))
	}
	tests := []struct {
		name   string
		status int64
		code   codes.Code
	}{
		{"GET /blog/:slug", 200, codes.Ok},
		{"GET " + unmatchedRoute, 404, codes.Ok},
		{"GET /broken", 500, codes.Error},
	}
	for i, tt := range tests {
		s := tp.spans[i]
		if s.name != tt.name {
			t.Errorf("span %d name = %q, want %q", i, s.name, tt.name)
		}
		if got := s.attrs["http.response.status_code"].AsInt64(); got != tt.status {
			t.Errorf("span %d status attribute = %d, want %d", i, got, tt.status)
		}
		if s.status != tt.code {
			t.Errorf("span %d status = %v, want %v", i, s.status, tt.code)
		}
		if !s.ended {
			t.Errorf("span %d was not ended", i)
		}
	}
	if got := tp.spans[0].attrs["url.path"].AsString(); got != "/blog/hello" {
		t.Errorf("url.path = %q", got)
	}
}

func TestTracing_FilterAndExtractor(t *testing.T) {
	tp := &recordingProvider{}
	h := newSite(t, Tracing(
		WithTracerProvider(tp),
		WithTracerName("site"),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/healthz" }),
		WithAttributeExtractor(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	))

	serve(h, http.MethodGet, "/healthz")
	serve(h, http.MethodGet, "/")

	if len(tp.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(tp.spans))
	}
	if got := tp.spans[0].attrs["test.attr"].AsString(); got != "ok" {
		t.Errorf("test.attr = %q", got)
	}
}

func TestTracing_SpanReachesHandler(t *testing.T) {
	tp := &recordingProvider{}
	var seen trace.Span
	h := Tracing(WithTracerProvider(tp))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SpanFromRequest(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if len(tp.spans) != 1 || seen != trace.Span(tp.spans[0]) {
		t.Fatal("expected the handler to see the request span")
	}
}
