package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
	"github.com/google/go-cmp/cmp"
)

var winter = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

func testServer(rateLimit int) *server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := worldclock.New(
		worldclock.WithLogger(logger),
		worldclock.WithClock(func() time.Time { return winter }),
	)
	return newServer(dir, logger, config{cacheTTL: time.Hour, rateLimit: rateLimit})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func names(records []worldclock.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestSearchEndpoint(t *testing.T) {
	h := testServer(0).routes()

	tests := []struct {
		name      string
		target    string
		wantNames []string
		wantTotal int
		wantLen   int
	}{
		{
			name:      "keyword",
			target:    "/api/v1/cities?keyword=" + "%E7%BE%8E%E5%9B%BD", // 美国
			wantNames: []string{"纽约", "洛杉矶", "芝加哥", "迈阿密", "西雅图"},
			wantTotal: 5,
		},
		{
			name:      "keyword with limit",
			target:    "/api/v1/cities?keyword=" + "%E7%BE%8E%E5%9B%BD" + "&limit=2",
			wantNames: []string{"纽约", "洛杉矶"},
			wantTotal: 2,
		},
		{
			name:      "blank keyword uses default limit",
			target:    "/api/v1/cities",
			wantTotal: worldclock.New().Len(),
			wantLen:   worldclock.DefaultSearchLimit,
		},
		{
			name:      "limit capped",
			target:    "/api/v1/cities?limit=1000",
			wantTotal: worldclock.New().Len(),
			wantLen:   worldclock.New().Len(),
		},
		{
			name:      "region filter",
			target:    "/api/v1/cities?keyword=tokyo&region=" + "%E6%AC%A7%E6%B4%B2", // 欧洲
			wantNames: []string{},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			resp := decode[searchResponse](t, rec)
			if !resp.Success || resp.Total != tt.wantTotal {
				t.Errorf("success=%v total=%d, want total %d", resp.Success, resp.Total, tt.wantTotal)
			}
			if tt.wantNames != nil {
				if diff := cmp.Diff(tt.wantNames, names(resp.Data)); diff != "" {
					t.Errorf("names mismatch (-want +got):\n%s", diff)
				}
			}
			if tt.wantLen != 0 && len(resp.Data) != tt.wantLen {
				t.Errorf("len(data) = %d, want %d", len(resp.Data), tt.wantLen)
			}
		})
	}
}

func TestSearchIsCached(t *testing.T) {
	h := testServer(0).routes()

	first := do(t, h, http.MethodGet, "/api/v1/cities?keyword=london", "")
	second := do(t, h, http.MethodGet, "/api/v1/cities?keyword=london", "")
	if first.Header().Get("X-Cache") != "miss" || second.Header().Get("X-Cache") != "hit" {
		t.Errorf("X-Cache = %q then %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached body differs")
	}
}

func TestSearchRejectsBadLimit(t *testing.T) {
	rec := do(t, testServer(0).routes(), http.MethodGet, "/api/v1/cities?limit=ten", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[errorResponse](t, rec); got.Code != "INVALID_LIMIT" {
		t.Errorf("code = %q", got.Code)
	}
}

func TestCityEndpoint(t *testing.T) {
	h := testServer(0).routes()

	rec := do(t, h, http.MethodGet, "/api/v1/cities/America/New_York", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		Data worldclock.Record `json:"data"`
	}](t, rec)
	if got.Data.Name != "纽约" {
		t.Errorf("city = %+v", got.Data)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/cities/Europe/Atlantis", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if e := decode[errorResponse](t, rec); e.Code != "NOT_FOUND" || e.Success {
		t.Errorf("error = %+v", e)
	}
}

func TestWorldTimeEndpoint(t *testing.T) {
	h := testServer(0).routes()

	t.Run("single", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/world-time", `{"timezone":"Asia/Shanghai"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		got := decode[struct {
			Data worldclock.ZoneInfo `json:"data"`
		}](t, rec)
		if got.Data.Formatted != "2025/01/15 20:00:00" || got.Data.Offset != 8 || got.Data.IsDST || got.Data.DayOfWeek != 3 || got.Data.DayOfYear != 15 {
			t.Errorf("snapshot = %+v", got.Data)
		}
	})

	t.Run("many", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/world-time", `{"timezones":["Asia/Tokyo","Europe/London"]}`)
		got := decode[struct {
			Data []worldclock.ZoneInfo `json:"data"`
		}](t, rec)
		if len(got.Data) != 2 || got.Data[0].Offset != 9 || got.Data[1].Offset != 0 {
			t.Errorf("snapshots = %+v", got.Data)
		}
	})

	t.Run("empty body gives UTC", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/world-time", "")
		got := decode[struct {
			Data    worldclock.ZoneInfo `json:"data"`
			Message string              `json:"message"`
		}](t, rec)
		if got.Data.Timezone != "UTC" || got.Data.Formatted != "2025/01/15 12:00:00" || got.Message != "获取UTC时间成功" {
			t.Errorf("response = %+v", got)
		}
	})

	t.Run("unsupported zone", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/world-time", `{"timezones":["Asia/Tokyo","Mars/Olympus"]}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if e := decode[errorResponse](t, rec); e.Code != "UNSUPPORTED_ZONE" {
			t.Errorf("code = %q", e.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/world-time", `{"timezone":`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestConvertEndpoint(t *testing.T) {
	h := testServer(0).routes()

	rec := do(t, h, http.MethodPost, "/api/v1/convert",
		`{"time":"2025-01-15T20:00:00","from":"Asia/Shanghai","to":"America/New_York"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		Data conversion `json:"data"`
	}](t, rec)
	want := conversion{
		Source:     "2025/01/15 20:00:00",
		Result:     "2025-01-15T23:00:00",
		Formatted:  "2025/01/15 23:00:00",
		Difference: -13,
	}
	if diff := cmp.Diff(want, got.Data); diff != "" {
		t.Errorf("conversion mismatch (-want +got):\n%s", diff)
	}

	bad := []struct {
		body string
		code string
	}{
		{`{"time":"2025-01-15T20:00:00","from":"Asia/Shanghai"}`, "INVALID_REQUEST"},
		{`{"time":"yesterday","from":"Asia/Shanghai","to":"UTC"}`, "INVALID_TIME"},
		{`{"time":"2025-01-15T20:00:00","from":"Asia/Shanghai","to":"Nowhere/Land"}`, "UNSUPPORTED_ZONE"},
	}
	for _, b := range bad {
		rec := do(t, h, http.MethodPost, "/api/v1/convert", b.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", b.body, rec.Code)
			continue
		}
		if e := decode[errorResponse](t, rec); e.Code != b.code {
			t.Errorf("%s: code = %q, want %q", b.body, e.Code, b.code)
		}
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	rec := do(t, testServer(0).routes(), http.MethodGet, "/api/v1/cities", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	if got := rec.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("Cache-Control = %q", got)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, testServer(0).routes(), http.MethodGet, "/api/v1/convert", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := testServer(2).routes()
	for i := range 2 {
		if rec := do(t, h, http.MethodGet, "/api/v1/cities", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	rec := do(t, h, http.MethodGet, "/api/v1/cities", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if e := decode[errorResponse](t, rec); e.Code != "RATE_LIMITED" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	now := winter
	rl := newRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.allow("a") || rl.allow("a") {
		t.Fatal("second request inside the window should be rejected")
	}
	if !rl.allow("b") {
		t.Error("limits are per client")
	}

	now = now.Add(61 * time.Second)
	if !rl.allow("a") {
		t.Error("window should have slid")
	}

	now = now.Add(2 * time.Minute)
	rl.sweep()
	if len(rl.requests) != 0 {
		t.Errorf("sweep left %d clients", len(rl.requests))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := testServer(0).routes()
	do(t, h, http.MethodGet, "/api/v1/cities?keyword=paris", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`worldclock_http_requests_total{route="GET /api/v1/cities",status="200"} 1`,
		`worldclock_search_cache_total{result="miss"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 20, false},
		{"5", 5, false},
		{"0", 20, false},
		{"-3", 20, false},
		{"100", 100, false},
		{"101", 100, false},
		{"x", 0, true},
	}
	for _, tt := range tests {
		got, err := parseLimit(tt.raw)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseLimit(%q) = %d, %v", tt.raw, got, err)
		}
	}
}
