package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/flowtower/pkg/observability"
)

func TestPipelineHooks(t *testing.T) {
	ctx := context.Background()
	m := New()

	m.OnLoadComplete(ctx, "ledger.csv", 120, time.Millisecond, nil)
	m.OnBuildComplete(ctx, 95, 3, time.Millisecond, nil)
	m.OnBuildComplete(ctx, 0, 0, time.Millisecond, errors.New("boom"))
	m.OnLayoutComplete(ctx, "topdown", time.Millisecond, nil)

	if got := testutil.ToFloat64(m.rowsLoaded); got != 120 {
		t.Errorf("rows loaded = %v, want 120", got)
	}
	if got := testutil.ToFloat64(m.rowsSkipped); got != 3 {
		t.Errorf("rows skipped = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.stageErrors.WithLabelValues("build")); got != 1 {
		t.Errorf("build errors = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.stageDuration); got != 3 {
		t.Errorf("stage series = %d, want 3 (load, build, layout_topdown)", got)
	}
}

func TestCacheHooks(t *testing.T) {
	ctx := context.Background()
	m := New()

	m.OnCacheHit(ctx, "graph")
	m.OnCacheHit(ctx, "graph")
	m.OnCacheMiss(ctx, "render")
	m.OnCacheSet(ctx, "render", 2048)

	if got := testutil.ToFloat64(m.cacheHits.WithLabelValues("graph")); got != 2 {
		t.Errorf("graph hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheMisses.WithLabelValues("render")); got != 1 {
		t.Errorf("render misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheBytes.WithLabelValues("render")); got != 2048 {
		t.Errorf("render bytes = %v, want 2048", got)
	}
}

func TestHTTPHooks(t *testing.T) {
	ctx := context.Background()
	m := New()

	m.OnRequest(ctx, "GET", "/v1/graph")
	if got := testutil.ToFloat64(m.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	m.OnResponse(ctx, "GET", "/v1/graph", 200, time.Millisecond)
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Errorf("in flight after response = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/graph", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestRegisterAndHandler(t *testing.T) {
	m := New()
	m.Register()
	defer observability.Reset()

	if observability.Cache() != observability.CacheHooks(m) {
		t.Error("Register should install cache hooks")
	}
	observability.Cache().OnCacheHit(context.Background(), "graph")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `flowtower_cache_hits_total{key_type="graph"} 1`) {
		t.Errorf("exposition missing cache hit counter:\n%s", body)
	}
}

func TestNewTwice(t *testing.T) {
	// private registries must not collide
	_ = New()
	_ = New()
}
