package worldclock

import (
	"sort"
	"strings"
)

// DefaultSearchLimit is the result cap used when callers have no preference.
const DefaultSearchLimit = 20

// Relevance weights. Tiers within one field are exclusive; fields add up.
const (
	scoreNameExact      = 100
	scoreNamePrefix     = 80
	scoreNameContains   = 60
	scoreCountryExact   = 50
	scoreCountryPrefix  = 40
	scoreCountryContain = 30
	scoreIANAContains   = 20
)

// Search returns records whose name, country or IANA id contain keyword
// (case-insensitive), best matches first, at most limit of them.
// A blank keyword returns the catalog head.
func (d *Directory) Search(keyword string, limit int) []Record {
	return d.SearchRegion(keyword, "", limit)
}

// SearchRegion is Search restricted to one region. An empty region matches all.
func (d *Directory) SearchRegion(keyword string, region Region, limit int) []Record {
	if limit < 0 {
		limit = 0
	}

	kw := strings.TrimSpace(keyword)
	if kw == "" {
		out := make([]Record, 0, min(limit, len(d.entries)))
		for i := range d.entries {
			if len(out) == limit {
				break
			}
			if region != "" && d.entries[i].rec.Region != region {
				continue
			}
			out = append(out, d.entries[i].rec)
		}
		return out
	}
	kw = lower(kw)

	type match struct {
		rec   Record
		score int
	}
	var matches []match
	for i := range d.entries {
		e := &d.entries[i]
		if region != "" && e.rec.Region != region {
			continue
		}
		if !strings.Contains(e.name, kw) && !strings.Contains(e.country, kw) && !strings.Contains(e.iana, kw) {
			continue
		}
		matches = append(matches, match{rec: e.rec, score: relevance(e, kw)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]Record, len(matches))
	for i := range matches {
		out[i] = matches[i].rec
	}
	return out
}

// relevance scores an entry against an already lowercased keyword.
func relevance(e *entry, kw string) int {
	score := 0

	switch {
	case e.name == kw:
		score += scoreNameExact
	case strings.HasPrefix(e.name, kw):
		score += scoreNamePrefix
	case strings.Contains(e.name, kw):
		score += scoreNameContains
	default:
	}

	switch {
	case e.country == kw:
		score += scoreCountryExact
	case strings.HasPrefix(e.country, kw):
		score += scoreCountryPrefix
	case strings.Contains(e.country, kw):
		score += scoreCountryContain
	default:
	}

	if strings.Contains(e.iana, kw) {
		score += scoreIANAContains
	}

	return score
}
