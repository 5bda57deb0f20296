package httpcache

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(time.Hour, nil)

	if _, _, ok := c.Get("/api/v1/cities?keyword=北京"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set("/api/v1/cities?keyword=北京", []byte(`{"total":1}`), `"v1"`)

	data, etag, ok := c.Get("/api/v1/cities?keyword=北京")
	if !ok || string(data) != `{"total":1}` || etag != `"v1"` {
		t.Errorf("Get() = %q, %q, %v", data, etag, ok)
	}
	if _, _, ok := c.Get("/api/v1/cities?keyword=东京"); ok {
		t.Error("other key should miss")
	}
}

func TestRequestKeyIncludesBody(t *testing.T) {
	c := New(time.Hour, nil)
	c.SetRequest("/api/v1/convert", []byte(`{"from":"A"}`), []byte("a"))

	if data, ok := c.GetRequest("/api/v1/convert", []byte(`{"from":"A"}`)); !ok || string(data) != "a" {
		t.Errorf("GetRequest same body = %q, %v", data, ok)
	}
	if _, ok := c.GetRequest("/api/v1/convert", []byte(`{"from":"B"}`)); ok {
		t.Error("different body should miss")
	}
	if _, _, ok := c.Get("/api/v1/convert"); ok {
		t.Error("bodyless key should not collide with request key")
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	c := New(time.Minute, nil)
	c.Set("k", []byte("v"), "")

	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, _, ok := c.Get("k"); ok {
		t.Error("entry past its expiry should miss")
	}
}

func TestPersistentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := NewPersistent(ctx, dir, time.Hour, nil)
	if err != nil {
		t.Fatalf("NewPersistent: %v", err)
	}
	c.Set("kept", []byte("yes"), "")
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, cacheFile)); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	reopened, err := NewPersistent(ctx, dir, time.Hour, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		if err := reopened.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}()
	if data, _, ok := reopened.Get("kept"); !ok || string(data) != "yes" {
		t.Errorf("reloaded Get() = %q, %v", data, ok)
	}
	if stats := reopened.Stats(); stats["persistent"] != true {
		t.Errorf("Stats() = %v", stats)
	}
}

func TestMemoryCacheCloseIsNoop(t *testing.T) {
	if err := New(time.Hour, nil).Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestCachedClient(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/fail" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body) //nolint:errcheck // test server
			w.Write(body)                 //nolint:errcheck // test server
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.Write([]byte("hello")) //nolint:errcheck // test server
	}))
	defer srv.Close()

	client := NewCachedClient(New(time.Hour, nil), srv.Client(), nil)

	get := func(path string) (*http.Response, string) {
		t.Helper()
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+path, http.NoBody)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close() //nolint:errcheck // test
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		return resp, string(body)
	}

	if _, body := get("/ok"); body != "hello" {
		t.Errorf("first body = %q", body)
	}
	resp, body := get("/ok")
	if body != "hello" || resp.Header.Get("X-From-Cache") != "true" || resp.Header.Get("ETag") != `"abc"` {
		t.Errorf("second response not served from cache: %q %v", body, resp.Header)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}

	get("/fail")
	get("/fail")
	if got := hits.Load(); got != 3 {
		t.Errorf("errors must not be cached: hits = %d, want 3", got)
	}

	post := func(body string) string {
		t.Helper()
		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL+"/echo", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close() //nolint:errcheck // test
		out, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		return string(out)
	}
	if got := post("one"); got != "one" {
		t.Errorf("post one = %q", got)
	}
	if got := post("one"); got != "one" {
		t.Errorf("cached post one = %q", got)
	}
	if got := post("two"); got != "two" {
		t.Errorf("post two = %q", got)
	}
	if got := hits.Load(); got != 5 {
		t.Errorf("server hits after posts = %d, want 5", got)
	}
}
