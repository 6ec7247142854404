// FILE: lixenwraith/sqllog/compat/http_ingest.go
package compat

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/lixenwraith/sqllog"
	"github.com/lixenwraith/sqllog/sanitizer"
)

const sqlPathPrefix = "/sql/"

// aliasSanitizer renders client-supplied aliases for responses and diagnostics
var aliasSanitizer = sanitizer.New().Policy(sanitizer.PolicyAlias)

// HTTPIngest accepts query text over HTTP: POST /sql/{alias} appends the
// request body verbatim to that target's log
type HTTPIngest struct {
	registry *sqllog.Registry
	diag     sqllog.Diagnostics
	metrics  fasthttp.RequestHandler
}

// HTTPOption customizes an HTTPIngest
type HTTPOption func(*HTTPIngest)

// WithMetricsGatherer serves Prometheus metrics from g at GET /metrics
func WithMetricsGatherer(g prometheus.Gatherer) HTTPOption {
	return func(h *HTTPIngest) {
		h.metrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
}

// WithHTTPDiagnostics sets where request failures are reported
func WithHTTPDiagnostics(d sqllog.Diagnostics) HTTPOption {
	return func(h *HTTPIngest) {
		h.diag = d
	}
}

// NewHTTPIngest creates an HTTP ingest handler backed by registry
func NewHTTPIngest(registry *sqllog.Registry, opts ...HTTPOption) *HTTPIngest {
	h := &HTTPIngest{
		registry: registry,
		diag:     sqllog.NopDiagnostics(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler implements fasthttp.RequestHandler
func (h *HTTPIngest) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())

	if path == "/metrics" && h.metrics != nil {
		h.metrics(ctx)
		return
	}
	if !strings.HasPrefix(path, sqlPathPrefix) {
		ctx.Error("not found", fasthttp.StatusNotFound)
		return
	}
	if !ctx.IsPost() {
		// Error resets the response, so headers go after it
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		ctx.Response.Header.Set("Allow", fasthttp.MethodPost)
		return
	}

	alias := strings.TrimPrefix(path, sqlPathPrefix)
	err := h.registry.Write(sqllog.Target{Alias: alias}, string(ctx.PostBody()))
	switch {
	case err == nil:
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	case errors.Is(err, sqllog.ErrEmptyTarget), errors.Is(err, sqllog.ErrInvalidTarget):
		ctx.Error("invalid target alias: "+aliasSanitizer.Preview(alias, 64), fasthttp.StatusBadRequest)
	default:
		h.diag.Warn("http ingest write failed", "target", aliasSanitizer.Sanitize(alias), "remote", ctx.RemoteAddr().String(), "error", err)
		ctx.Error("write failed", fasthttp.StatusInternalServerError)
	}
}
