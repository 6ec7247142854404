package compat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/sqllog"
)

// newTestRegistry builds a quiet registry in a temp directory
func newTestRegistry(t *testing.T, opts ...sqllog.Option) (*sqllog.Registry, string) {
	t.Helper()
	dir := t.TempDir()

	cfg := sqllog.DefaultConfig()
	cfg.Directory = dir
	cfg.InternalErrorsToStderr = false

	registry, err := sqllog.NewRegistry(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = registry.Close() })
	return registry, dir
}

// readAlias concatenates every file under dir/alias
func readAlias(t *testing.T, dir, alias string) string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, alias))
	require.NoError(t, err)
	var sb strings.Builder
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, alias, e.Name()))
		require.NoError(t, err)
		sb.Write(data)
	}
	return sb.String()
}

func doRequest(h fasthttp.RequestHandler, method, uri, body string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	req.SetBodyString(body)

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	h(&ctx)
	return &ctx
}

func TestHTTPIngestWrite(t *testing.T) {
	registry, dir := newTestRegistry(t)
	ingest := NewHTTPIngest(registry)

	ctx := doRequest(ingest.Handler, fasthttp.MethodPost, "/sql/orders", "SELECT * FROM orders;\n")
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())

	ctx = doRequest(ingest.Handler, fasthttp.MethodPost, "/sql/orders", "DELETE FROM orders;")
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())

	// Body is appended verbatim, no separator added
	assert.Equal(t, "SELECT * FROM orders;\nDELETE FROM orders;", readAlias(t, dir, "orders"))
}

func TestHTTPIngestErrors(t *testing.T) {
	rec := &recorder{}
	registry, _ := newTestRegistry(t)
	ingest := NewHTTPIngest(registry, WithHTTPDiagnostics(rec))

	ctx := doRequest(ingest.Handler, fasthttp.MethodGet, "/sql/orders", "")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
	assert.Equal(t, "POST", string(ctx.Response.Header.Peek("Allow")))

	ctx = doRequest(ingest.Handler, fasthttp.MethodPost, "/other", "SELECT 1;")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = doRequest(ingest.Handler, fasthttp.MethodPost, "/sql/", "SELECT 1;")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = doRequest(ingest.Handler, fasthttp.MethodGet, "/metrics", "")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode(), "metrics disabled without a gatherer")

	require.NoError(t, registry.Close())
	ctx = doRequest(ingest.Handler, fasthttp.MethodPost, "/sql/orders", "SELECT 1;")
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.Equal(t, 1, rec.count("http ingest write failed"))
}

func TestHTTPIngestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := sqllog.NewMetrics(reg)
	require.NoError(t, err)

	registry, _ := newTestRegistry(t, sqllog.WithMetrics(metrics))
	ingest := NewHTTPIngest(registry, WithMetricsGatherer(reg))

	ctx := doRequest(ingest.Handler, fasthttp.MethodPost, "/sql/orders", "SELECT 1;\n")
	require.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())

	ctx = doRequest(ingest.Handler, fasthttp.MethodGet, "/metrics", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, body, `sqllog_writes_total{target="orders"} 1`)
	assert.Contains(t, body, `sqllog_bytes_total{target="orders"} 10`)
}
