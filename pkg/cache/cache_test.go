package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.(Clearer).Clear(ctx); err != nil {
		t.Errorf("Clear: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if c.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
	}

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "graph:abc", []byte(`{"nodes":[]}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "graph:abc")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != `{"nodes":[]}` {
		t.Errorf("Get data = %q", data)
	}

	if err := c.Delete(ctx, "graph:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "graph:abc"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "graph:abc"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl missing")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%q survived Clear", k)
		}
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("cache dir removed: %v", err)
	}

	// still usable
	if err := c.Set(ctx, "a", []byte("a"), time.Hour); err != nil {
		t.Errorf("Set after Clear: %v", err)
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for key, ttl := range map[string]time.Duration{"short": time.Minute, "long": time.Hour, "none": 0} {
		if err := c.Set(ctx, key, []byte(key), ttl); err != nil {
			t.Fatal(err)
		}
	}
	broken := c.path("broken")
	if err := os.MkdirAll(filepath.Dir(broken), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(broken, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	now = now.Add(10 * time.Minute)
	n, err := c.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 2 {
		t.Errorf("Prune removed %d entries, want 2", n)
	}
	for _, key := range []string{"long", "none"} {
		if _, hit, _ := c.Get(ctx, key); !hit {
			t.Errorf("%q removed by Prune", key)
		}
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry left on disk")
	}
}

func TestFileCacheNoTempFiles(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for i := range 5 {
		if err := c.Set(ctx, "k", []byte{byte(i)}, 0); err != nil {
			t.Fatal(err)
		}
	}
	matches, err := filepath.Glob(filepath.Join(c.Dir(), "*", ".tmp-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
	data, hit, _ := c.Get(ctx, "k")
	if !hit || len(data) != 1 || data[0] != 4 {
		t.Errorf("Get = %v, %v; want last write", data, hit)
	}
}

func TestFileCacheCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Set on cancelled ctx = %v", err)
	}
	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get on cancelled ctx = %v", err)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.UploadKey("abc"); got != "upload:abc" {
		t.Errorf("UploadKey = %q", got)
	}

	base := GraphKeyOpts{Mode: "account", MinValue: 10_000_000, Layout: "topdown"}
	gk := k.GraphKey("data1", base)
	if !strings.HasPrefix(gk, "graph:") {
		t.Errorf("GraphKey prefix: %s", gk)
	}
	if gk != k.GraphKey("data1", base) {
		t.Error("GraphKey should be deterministic")
	}
	if gk == k.GraphKey("data2", base) {
		t.Error("different datasets should produce different keys")
	}

	variants := map[string]GraphKeyOpts{
		"min value": {Mode: "account", MinValue: 5, Layout: "topdown"},
		"mode":      {Mode: "entity", MinValue: 10_000_000, Layout: "topdown"},
		"focus":     {Mode: "account", MinValue: 10_000_000, Layout: "topdown", Focus: "BCA|1"},
		"layout":    {Mode: "account", MinValue: 10_000_000, Layout: "timeline"},
		"kinds":     {Mode: "account", MinValue: 10_000_000, Layout: "topdown", Kinds: []string{"PAYMENT"}},
		"styles":    {Mode: "account", MinValue: 10_000_000, Layout: "topdown", StylesHash: "x"},
	}
	for name, opts := range variants {
		if k.GraphKey("data1", opts) == gk {
			t.Errorf("%s: changed options should produce a different key", name)
		}
	}

	rk1 := k.RenderKey("g", RenderKeyOpts{Format: "svg"})
	rk2 := k.RenderKey("g", RenderKeyOpts{Format: "png"})
	if rk1 == rk2 {
		t.Error("different formats should produce different keys")
	}
	if !strings.HasPrefix(rk1, "render:") {
		t.Errorf("RenderKey prefix: %s", rk1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "upload:123:")

	if got := scoped.UploadKey("abc"); got != "upload:123:upload:abc" {
		t.Errorf("UploadKey = %q", got)
	}
	if got := scoped.GraphKey("d", GraphKeyOpts{}); !strings.HasPrefix(got, "upload:123:graph:") {
		t.Errorf("GraphKey should be prefixed: %s", got)
	}
	if got := scoped.RenderKey("g", RenderKeyOpts{}); !strings.HasPrefix(got, "upload:123:render:") {
		t.Errorf("RenderKey should be prefixed: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.UploadKey("key"); key != "prefix:upload:key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	if IsRetryable(errors.New("boom")) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	calls := 0
	err := RetryWithBackoff(ctx, 3, time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, 3, time.Millisecond, func() error {
		calls++
		return errBoom
	})
	if !errors.Is(err, errBoom) || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry then success: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, 3, time.Millisecond, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if IsRetryable(err) || !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, 3, time.Hour, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestNewRedisCache(t *testing.T) {
	c, err := NewRedisCache(RedisConfig{URL: "redis://localhost:6379/2"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if c.Prefix() != DefaultRedisPrefix {
		t.Errorf("Prefix() = %q", c.Prefix())
	}
	if got := c.key("graph:x"); got != "flowtower:graph:x" {
		t.Errorf("key() = %q", got)
	}
	if c.attempts != 3 || c.backoff != 50*time.Millisecond {
		t.Errorf("defaults: attempts %d, backoff %v", c.attempts, c.backoff)
	}

	custom, err := NewRedisCache(RedisConfig{URL: "redis://localhost:6379", Prefix: "ft:", Attempts: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer custom.Close()
	if got := custom.key("k"); got != "ft:k" {
		t.Errorf("custom key() = %q", got)
	}

	if _, err := NewRedisCache(RedisConfig{URL: "http://localhost"}); err == nil {
		t.Error("NewRedisCache(http://) should fail")
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	plain := errors.New("WRONGTYPE")
	if got := classify(plain); IsRetryable(got) {
		t.Error("server errors should not be retryable")
	}
	netErr := &timeoutError{}
	got := classify(netErr)
	if !IsRetryable(got) || !errors.Is(got, ErrNetwork) {
		t.Errorf("network errors should be retryable ErrNetwork: %v", got)
	}
}

type timeoutError struct{}

func (*timeoutError) Error() string   { return "i/o timeout" }
func (*timeoutError) Timeout() bool   { return true }
func (*timeoutError) Temporary() bool { return true }
