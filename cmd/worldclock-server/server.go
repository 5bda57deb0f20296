package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
	"github.com/google/uuid"
	"github.com/maypok86/otter/v2"
)

const (
	maxPageSize    = 100
	maxZones       = maxPageSize
	maxBodyBytes   = 64 << 10
	wallClockInput = "2006-01-02T15:04:05"
)

type config struct {
	cacheTTL  time.Duration
	rateLimit int
}

type server struct {
	dir     *worldclock.Directory
	cache   *otter.Cache[string, []byte]
	limiter *rateLimiter
	metrics *metrics
	logger  *slog.Logger
}

func newServer(dir *worldclock.Directory, logger *slog.Logger, cfg config) *server {
	if cfg.cacheTTL <= 0 {
		cfg.cacheTTL = time.Hour
	}
	return &server{
		dir: dir,
		cache: otter.Must(&otter.Options[string, []byte]{
			MaximumSize:      10_000,
			ExpiryCalculator: otter.ExpiryWriting[string, []byte](cfg.cacheTTL),
		}),
		limiter: newRateLimiter(cfg.rateLimit, time.Minute),
		metrics: newMetrics(),
		logger:  logger,
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "GET /api/v1/cities", s.handleSearch)
	s.handle(mux, "GET /api/v1/cities/{timezone...}", s.handleCity)
	s.handle(mux, "POST /api/v1/world-time", s.handleWorldTime)
	s.handle(mux, "POST /api/v1/convert", s.handleConvert)
	mux.Handle("GET /metrics", s.metrics.handler())
	return s.wrap(mux)
}

func (s *server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, s.metrics.instrument(pattern, s.rateLimit(h)))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *server) rateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.limiter.allow(ip) {
			s.metrics.rateLimited.Inc()
			s.logger.Warn("Rate limit exceeded",
				"request_id", w.Header().Get("X-Request-ID"),
				"client_ip", ip,
				"user_agent", r.Header.Get("User-Agent"))
			s.writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
				"Rate limit exceeded", "Too many requests, please slow down.")
			return
		}
		next(w, r)
	}
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]

				s.logger.Error("PANIC: Request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"user_agent", r.Header.Get("User-Agent"),
					"stack", string(buf))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}

		handler.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

type envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("JSON encoding failed",
			"request_id", w.Header().Get("X-Request-ID"),
			"error", err)
		http.Error(w, "Encoding failed", http.StatusInternalServerError)
		return
	}
	s.writeRaw(w, status, data)
}

func (s *server) writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write response",
			"request_id", w.Header().Get("X-Request-ID"),
			"error", err,
			"response_size", len(data))
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, code, msg, details string) {
	s.writeJSON(w, status, errorResponse{Error: msg, Details: details, Code: code})
}

type searchResponse struct {
	Keyword string              `json:"keyword,omitempty"`
	Region  string              `json:"region,omitempty"`
	Message string              `json:"message"`
	Data    []worldclock.Record `json:"data"`
	Total   int                 `json:"total"`
	Success bool                `json:"success"`
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return worldclock.DefaultSearchLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return worldclock.DefaultSearchLimit, nil
	}
	return min(n, maxPageSize), nil
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := w.Header().Get("X-Request-ID")
	q := r.URL.Query()
	keyword := q.Get("keyword")
	region := q.Get("region")

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "Invalid limit", "limit must be an integer")
		return
	}

	cacheKey := fmt.Sprintf("search:%s\x00%s\x00%d", strings.TrimSpace(keyword), region, limit)
	if data, ok := s.cache.GetIfPresent(cacheKey); ok {
		s.metrics.searchCache.WithLabelValues("hit").Inc()
		w.Header().Set("X-Cache", "hit")
		s.writeRaw(w, http.StatusOK, data)
		return
	}
	s.metrics.searchCache.WithLabelValues("miss").Inc()

	results := s.dir.SearchRegion(keyword, worldclock.Region(region), limit)
	resp := searchResponse{
		Success: true,
		Data:    results,
		Total:   len(results),
		Keyword: keyword,
		Region:  region,
		Message: fmt.Sprintf("找到 %d 个相关城市", len(results)),
	}
	if strings.TrimSpace(keyword) == "" {
		resp.Total = len(s.dir.SearchRegion("", worldclock.Region(region), s.dir.Len()))
		resp.Message = "返回所有城市"
	}

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("JSON encoding failed", "request_id", requestID, "error", err)
		http.Error(w, "Encoding failed", http.StatusInternalServerError)
		return
	}
	s.cache.Set(cacheKey, data)

	w.Header().Set("X-Cache", "miss")
	s.writeRaw(w, http.StatusOK, data)
	s.logger.Debug("City search completed",
		"request_id", requestID,
		"keyword", keyword,
		"region", region,
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds())
}

func (s *server) handleCity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("timezone")
	rec, err := s.dir.Lookup(id)
	if err != nil {
		if errors.Is(err, worldclock.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "NOT_FOUND", "City not found",
				fmt.Sprintf("No city in the catalog uses timezone %q.", id))
			return
		}
		s.logger.Error("Lookup failed", "request_id", w.Header().Get("X-Request-ID"), "timezone", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Lookup failed", "")
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: rec, Message: "获取城市成功"})
}

// decodeBody reads a JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *server) zoneError(w http.ResponseWriter, err error) {
	if errors.Is(err, worldclock.ErrUnsupportedZone) {
		s.writeError(w, http.StatusBadRequest, "UNSUPPORTED_ZONE", "Unsupported timezone", err.Error())
		return
	}
	s.logger.Error("Time computation failed", "request_id", w.Header().Get("X-Request-ID"), "error", err)
	s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Time computation failed", "")
}

func (s *server) handleWorldTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Timezone  string   `json:"timezone"`
		Timezones []string `json:"timezones"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", err.Error())
		return
	}

	switch {
	case req.Timezone != "":
		info, err := s.dir.Snapshot(req.Timezone)
		if err != nil {
			s.zoneError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: info, Message: "获取时间成功"})
	case req.Timezones != nil:
		if len(req.Timezones) > maxZones {
			s.writeError(w, http.StatusBadRequest, "TOO_MANY_ZONES", "Too many timezones",
				fmt.Sprintf("At most %d timezones per request.", maxZones))
			return
		}
		infos, err := s.dir.Snapshots(req.Timezones...)
		if err != nil {
			s.zoneError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: infos, Message: "获取时间成功"})
	default:
		info, err := s.dir.Snapshot("UTC")
		if err != nil {
			s.zoneError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, envelope{Success: true, Data: info, Message: "获取UTC时间成功"})
	}
}

type conversion struct {
	Source     string  `json:"source"`
	Result     string  `json:"result"`
	Formatted  string  `json:"formatted"`
	Difference float64 `json:"difference"`
}

func parseWallClock(s string) (time.Time, error) {
	if t, err := time.Parse(wallClockInput, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q must look like %s", s, wallClockInput)
	}
	return t, nil
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Time string `json:"time"`
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", err.Error())
		return
	}
	if req.Time == "" || req.From == "" || req.To == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", "time, from and to are required")
		return
	}
	t, err := parseWallClock(req.Time)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_TIME", "Invalid time", err.Error())
		return
	}

	converted, err := s.dir.ConvertWallClock(t, req.From, req.To)
	if err != nil {
		s.zoneError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "转换成功",
		Data: conversion{
			Source:     s.dir.FormatTime(t, "UTC", worldclock.FullFormat),
			Result:     converted.Format(wallClockInput),
			Formatted:  s.dir.FormatTime(converted, "UTC", worldclock.FullFormat),
			Difference: s.dir.TimeDifferenceHours(req.To, req.From),
		},
	})
}
