// Package board renders the selected cities as a terminal clock board.
package board

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/codeGROOVE-dev/worldclock/pkg/tzconvert"
	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
	"github.com/fatih/color"
	"golang.org/x/text/width"
)

// Period is the part of the day a wall clock falls into.
type Period int

// Periods, in the order they occur after midnight.
const (
	Night Period = iota
	Morning
	Day
	Evening
)

// PeriodOf classifies a local hour-of-day (0-24, fractional).
func PeriodOf(hour float64) Period {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 18:
		return Day
	case hour >= 18 && hour < 22:
		return Evening
	default:
		return Night
	}
}

// Icon returns the symbol shown next to the time.
func (p Period) Icon() string {
	switch p {
	case Morning:
		return "🌅"
	case Day:
		return "☀️"
	case Evening:
		return "🌆"
	default:
		return "🌙"
	}
}

func (p Period) color() *color.Color {
	switch p {
	case Morning:
		return color.New(color.FgYellow)
	case Day:
		return color.New(color.FgHiYellow, color.Bold)
	case Evening:
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgBlue)
	}
}

// Options control what a board shows.
type Options struct {
	// Favorite reports whether a timezone is starred. Nil means nothing is.
	Favorite func(iana string) bool
	// Local is the timezone differences are measured against.
	Local string
	// Format is applied to every clock. The zero value shows the full date and time.
	Format worldclock.FormatSpec
	// Title is printed above the rows when set.
	Title string
}

// Render writes one line per city to w.
func Render(w io.Writer, dir *worldclock.Directory, cities []worldclock.Record, opts Options) error {
	var b strings.Builder

	if opts.Title != "" {
		b.WriteString(opts.Title + "\n")
		b.WriteString(strings.Repeat("─", 60) + "\n")
	}
	if len(cities) == 0 {
		b.WriteString("No cities selected\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	nameWidth, countryWidth := 0, 0
	for _, c := range cities {
		nameWidth = max(nameWidth, displayWidth(c.Name))
		countryWidth = max(countryWidth, displayWidth(c.Country))
	}

	now := dir.Now().UTC()
	utcHour := float64(now.Hour()) + float64(now.Minute())/60

	for _, c := range cities {
		offset := dir.OffsetHours(c.IANA)
		period := PeriodOf(tzconvert.UTCToLocal(utcHour, offset))

		flag := c.Flag
		if flag == "" {
			flag = "🏳️"
		}
		clock := dir.FormatTime(now, c.IANA, opts.Format)

		line := fmt.Sprintf("%s %s  %s  %s %s  UTC%s",
			flag,
			pad(c.Name, nameWidth),
			pad(c.Country, countryWidth),
			period.Icon(),
			period.color().Sprint(clock),
			tzconvert.FormatOffset(offset))

		if opts.Local != "" {
			line += "  " + Difference(dir.TimeDifferenceHours(c.IANA, opts.Local))
		}
		if dir.IsDST(c.IANA) {
			line += "  " + color.New(color.FgCyan).Sprint("DST")
		}
		if opts.Favorite != nil && opts.Favorite(c.IANA) {
			line += "  " + color.New(color.FgYellow).Sprint("★")
		}
		b.WriteString(line + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Difference renders an hour difference to the local zone, e.g. "+13h", "-5.5h" or "same".
func Difference(hours float64) string {
	if hours == 0 {
		return "same"
	}
	s := strconv.FormatFloat(hours, 'f', -1, 64) + "h"
	if hours > 0 {
		s = "+" + s
	}
	return s
}

// displayWidth counts terminal cells, treating East Asian wide runes as two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func pad(s string, cells int) string {
	if gap := cells - displayWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
