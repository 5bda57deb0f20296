// Package worldclock provides the city/timezone directory behind the world clock:
// a static catalog, keyword search with relevance ranking, and wall-clock
// projection, formatting, offset and conversion helpers.
//
// Time-dependent operations come in two flavors. The permissive ones
// (CurrentTimeIn, FormatTime, OffsetHours, Convert, TimeDifferenceHours, IsDST)
// never fail: an unknown zone yields a fixed fallback value. Each has a strict
// counterpart (TimeIn, Format, Offset, ConvertWallClock, ObservesDST) that
// reports ErrUnsupportedZone instead.
package worldclock

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // catalog zones must resolve on hosts without zoneinfo

	"github.com/maypok86/otter/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrNotFound is returned when no catalog record has the requested IANA id.
	ErrNotFound = errors.New("timezone not found in directory")
	// ErrUnsupportedZone is returned when the timezone database cannot resolve an id.
	ErrUnsupportedZone = errors.New("unsupported timezone")
	// ErrFormat is returned when a timestamp cannot be rendered.
	ErrFormat = errors.New("time format failed")
)

const defaultZoneCacheSize = 512

// Option configures a Directory.
type Option func(*optionHolder)

type optionHolder struct {
	logger        *slog.Logger
	now           func() time.Time
	records       []Record
	zoneCacheSize int
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(o *optionHolder) {
		o.logger = logger
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *optionHolder) {
		o.now = now
	}
}

// WithRecords replaces the built-in catalog. The slice is copied.
func WithRecords(records []Record) Option {
	return func(o *optionHolder) {
		o.records = append([]Record(nil), records...)
	}
}

// WithZoneCacheSize sets how many resolved zones are kept in memory.
func WithZoneCacheSize(n int) Option {
	return func(o *optionHolder) {
		o.zoneCacheSize = n
	}
}

// entry pairs a record with its lowercased search fields.
type entry struct {
	name    string
	country string
	iana    string
	rec     Record
}

// Directory is the read-only city/timezone catalog. It is safe for concurrent use.
type Directory struct {
	logger  *slog.Logger
	now     func() time.Time
	zones   *otter.Cache[string, *time.Location]
	entries []entry
}

// New builds a Directory over the built-in catalog unless WithRecords is given.
func New(opts ...Option) *Directory {
	o := &optionHolder{
		records:       catalog,
		zoneCacheSize: defaultZoneCacheSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.zoneCacheSize <= 0 {
		o.zoneCacheSize = defaultZoneCacheSize
	}

	entries := make([]entry, len(o.records))
	for i, rec := range o.records {
		entries[i] = entry{
			rec:     rec,
			name:    lower(rec.Name),
			country: lower(rec.Country),
			iana:    lower(rec.IANA),
		}
	}

	return &Directory{
		logger:  o.logger,
		now:     o.now,
		entries: entries,
		zones: otter.Must(&otter.Options[string, *time.Location]{
			MaximumSize: o.zoneCacheSize,
		}),
	}
}

// All returns the whole catalog in declaration order.
func (d *Directory) All() []Record {
	out := make([]Record, len(d.entries))
	for i := range d.entries {
		out[i] = d.entries[i].rec
	}
	return out
}

// Len reports the catalog size.
func (d *Directory) Len() int {
	return len(d.entries)
}

// FindByIANA returns the first record using the given IANA id.
func (d *Directory) FindByIANA(id string) (Record, bool) {
	for i := range d.entries {
		if d.entries[i].rec.IANA == id {
			return d.entries[i].rec, true
		}
	}
	return Record{}, false
}

// Lookup is FindByIANA with an ErrNotFound error for misses.
func (d *Directory) Lookup(id string) (Record, error) {
	rec, ok := d.FindByIANA(id)
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return rec, nil
}

// Zone resolves an IANA id through the timezone database.
// Empty ids and "Local" are rejected: the directory never depends on host settings.
func (d *Directory) Zone(id string) (*time.Location, error) {
	if loc, ok := d.zones.GetIfPresent(id); ok {
		return loc, nil
	}
	if strings.TrimSpace(id) == "" || id == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedZone, id)
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedZone, id, err)
	}
	d.zones.Set(id, loc)
	return loc, nil
}

// lower applies Unicode lowercasing. A Caser is not safe for concurrent use,
// so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
