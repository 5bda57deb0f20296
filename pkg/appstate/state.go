// Package appstate holds the user's world clock state: selected and favorite
// cities, search and conversion history, and display preferences. A State is
// owned by the application and passed to whoever needs it; there is no global.
package appstate

import (
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
	"github.com/google/uuid"
)

// History limits.
const (
	MaxSearchHistory     = 20
	RecentSearchCount    = 10
	MaxConversionHistory = 20
)

// Preferences are the user's display settings.
type Preferences struct {
	LocalTimezone   string        `json:"localTimezone" yaml:"local_timezone"`
	ShowSeconds     bool          `json:"showSeconds" yaml:"show_seconds"`
	Hour12          bool          `json:"hour12" yaml:"hour12"`
	AutoRefresh     bool          `json:"autoRefresh" yaml:"auto_refresh"`
	RefreshInterval time.Duration `json:"refreshInterval" yaml:"refresh_interval"`
}

// DefaultPreferences returns the settings a fresh install starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		LocalTimezone:   "Asia/Shanghai",
		ShowSeconds:     true,
		AutoRefresh:     true,
		RefreshInterval: time.Second,
	}
}

// Conversion is one entry of the conversion history.
type Conversion struct {
	ID        string            `json:"id"`
	From      worldclock.Record `json:"source"`
	To        worldclock.Record `json:"target"`
	Time      string            `json:"time"`
	Result    string            `json:"result"`
	Timestamp int64             `json:"timestamp"` // Unix milliseconds
}

// snapshot is the persisted form of a State.
type snapshot struct {
	Cities            []worldclock.Record `json:"cities"`
	Favorites         []worldclock.Record `json:"favoriteCities"`
	SearchHistory     []string            `json:"searchHistory"`
	ConversionHistory []Conversion        `json:"conversionHistory"`
	Preferences       Preferences         `json:"preferences"`
}

// State is the mutable application state. It is safe for concurrent use.
type State struct {
	data snapshot
	mu   sync.RWMutex
}

// New returns a State with the default cities and preferences.
func New() *State {
	return &State{data: defaults()}
}

func defaults() snapshot {
	return snapshot{
		Cities:            worldclock.DefaultCities(),
		Favorites:         []worldclock.Record{},
		SearchHistory:     []string{},
		ConversionHistory: []Conversion{},
		Preferences:       DefaultPreferences(),
	}
}

// Cities returns the selected cities in display order.
func (s *State) Cities() []worldclock.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]worldclock.Record(nil), s.data.Cities...)
}

// SetCities replaces the selection, e.g. after a reorder.
func (s *State) SetCities(cities []worldclock.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Cities = append([]worldclock.Record(nil), cities...)
}

// AddCity appends a city unless one with the same timezone is already selected.
// It reports whether the selection changed.
func (s *State) AddCity(city worldclock.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.data.Cities, city.IANA) >= 0 {
		return false
	}
	s.data.Cities = append(s.data.Cities, city)
	return true
}

// RemoveCity drops every selected city using the timezone.
func (s *State) RemoveCity(iana string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed bool
	s.data.Cities, removed = without(s.data.Cities, iana)
	return removed
}

// Favorites returns the favorite cities.
func (s *State) Favorites() []worldclock.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]worldclock.Record(nil), s.data.Favorites...)
}

// IsFavorite reports whether a city with the timezone is a favorite.
func (s *State) IsFavorite(iana string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.data.Favorites, iana) >= 0
}

// AddFavorite marks a city as favorite. Duplicates by timezone are ignored.
func (s *State) AddFavorite(city worldclock.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.data.Favorites, city.IANA) >= 0 {
		return false
	}
	s.data.Favorites = append(s.data.Favorites, city)
	return true
}

// RemoveFavorite unmarks every favorite using the timezone.
func (s *State) RemoveFavorite(iana string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed bool
	s.data.Favorites, removed = without(s.data.Favorites, iana)
	return removed
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *State) ToggleFavorite(city worldclock.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.data.Favorites, city.IANA) >= 0 {
		s.data.Favorites, _ = without(s.data.Favorites, city.IANA)
		return false
	}
	s.data.Favorites = append(s.data.Favorites, city)
	return true
}

// AddSearch records a keyword as the most recent search.
func (s *State) AddSearch(keyword string) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]string, 0, len(s.data.SearchHistory)+1)
	history = append(history, keyword)
	for _, h := range s.data.SearchHistory {
		if h != keyword {
			history = append(history, h)
		}
	}
	if len(history) > MaxSearchHistory {
		history = history[:MaxSearchHistory]
	}
	s.data.SearchHistory = history
}

// SearchHistory returns every stored search, newest first.
func (s *State) SearchHistory() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.data.SearchHistory...)
}

// RecentSearches returns the searches worth showing, newest first.
func (s *State) RecentSearches() []string {
	h := s.SearchHistory()
	if len(h) > RecentSearchCount {
		h = h[:RecentSearchCount]
	}
	return h
}

// RemoveSearch drops the history entry at index i.
func (s *State) RemoveSearch(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.data.SearchHistory) {
		return false
	}
	s.data.SearchHistory = append(s.data.SearchHistory[:i:i], s.data.SearchHistory[i+1:]...)
	return true
}

// ClearSearchHistory forgets every search.
func (s *State) ClearSearchHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.SearchHistory = []string{}
}

// AddConversion prepends a conversion to the history, assigning an ID and
// timestamp when missing.
func (s *State) AddConversion(c Conversion) Conversion {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Timestamp == 0 {
		c.Timestamp = time.Now().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]Conversion, 0, len(s.data.ConversionHistory)+1)
	history = append(history, c)
	history = append(history, s.data.ConversionHistory...)
	if len(history) > MaxConversionHistory {
		history = history[:MaxConversionHistory]
	}
	s.data.ConversionHistory = history
	return c
}

// ConversionHistory returns past conversions, newest first.
func (s *State) ConversionHistory() []Conversion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Conversion(nil), s.data.ConversionHistory...)
}

// ClearConversionHistory forgets every conversion.
func (s *State) ClearConversionHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ConversionHistory = []Conversion{}
}

// Preferences returns the display settings.
func (s *State) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Preferences
}

// SetPreferences replaces the display settings. A non-positive refresh
// interval falls back to one second.
func (s *State) SetPreferences(p Preferences) {
	if p.RefreshInterval <= 0 {
		p.RefreshInterval = time.Second
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Preferences = p
}

// Reset restores the defaults.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = defaults()
}

func (s *State) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		Cities:            append([]worldclock.Record{}, s.data.Cities...),
		Favorites:         append([]worldclock.Record{}, s.data.Favorites...),
		SearchHistory:     append([]string{}, s.data.SearchHistory...),
		ConversionHistory: append([]Conversion{}, s.data.ConversionHistory...),
		Preferences:       s.data.Preferences,
	}
}

// fromSnapshot builds a State, filling whatever the stored document left out.
func fromSnapshot(snap snapshot) *State {
	def := defaults()
	if snap.Cities == nil {
		snap.Cities = def.Cities
	}
	if snap.Favorites == nil {
		snap.Favorites = def.Favorites
	}
	if snap.SearchHistory == nil {
		snap.SearchHistory = def.SearchHistory
	}
	if snap.ConversionHistory == nil {
		snap.ConversionHistory = def.ConversionHistory
	}
	if snap.Preferences.LocalTimezone == "" {
		snap.Preferences.LocalTimezone = def.Preferences.LocalTimezone
	}
	if snap.Preferences.RefreshInterval <= 0 {
		snap.Preferences.RefreshInterval = def.Preferences.RefreshInterval
	}
	return &State{data: snap}
}

func indexOf(records []worldclock.Record, iana string) int {
	for i := range records {
		if records[i].IANA == iana {
			return i
		}
	}
	return -1
}

func without(records []worldclock.Record, iana string) ([]worldclock.Record, bool) {
	out := make([]worldclock.Record, 0, len(records))
	for _, r := range records {
		if r.IANA != iana {
			out = append(out, r)
		}
	}
	return out, len(out) != len(records)
}
