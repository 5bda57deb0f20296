// Package tzconvert provides UTC offset parsing, formatting and hour arithmetic.
// Offsets are expressed in hours and may be fractional (5.5 for India, 5.75 for Nepal).
package tzconvert

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidOffset is returned for labels that are not a UTC offset.
var ErrInvalidOffset = errors.New("invalid UTC offset")

// maxOffsetHours bounds real-world offsets (Kiribati is +14, Baker Island -12).
const maxOffsetHours = 14

// UTCToLocal converts a UTC hour-of-day to local hour-of-day given a UTC offset.
// Example: UTCToLocal(15.5, -4) converts 15:30 UTC to 11:30 EDT (UTC-4)
// Example: UTCToLocal(2.0, 5.5) converts 02:00 UTC to 07:30 IST (UTC+5:30)
//
// Returns: Local hour (0-24), properly wrapped for day boundaries.
func UTCToLocal(utcHour, utcOffset float64) float64 {
	return math.Mod(math.Mod(utcHour+utcOffset, 24)+24, 24)
}

// LocalToUTC converts a local hour-of-day to UTC given a UTC offset.
// Example: LocalToUTC(11.5, -4) converts 11:30 EDT to 15:30 UTC
//
// Returns: UTC hour (0-24), properly wrapped for day boundaries.
func LocalToUTC(localHour, utcOffset float64) float64 {
	return math.Mod(math.Mod(localHour-utcOffset, 24)+24, 24)
}

// FormatOffset renders an offset in hours as a ±HH:MM label.
// Examples: 8 -> "+08:00", -3.5 -> "-03:30", 5.75 -> "+05:45", 0 -> "+00:00".
func FormatOffset(hours float64) string {
	minutes := int(math.Round(hours * 60))
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// ParseOffset parses an offset label into hours.
// Accepted forms:
//   - "+08:00", "-03:30", "+0545"
//   - "UTC+8", "UTC-3:30", "GMT+1"
//   - "UTC", "GMT", "Z"
func ParseOffset(label string) (float64, error) {
	s := strings.TrimSpace(label)
	upper := strings.ToUpper(s)
	switch {
	case upper == "Z":
		return 0, nil
	case strings.HasPrefix(upper, "UTC"), strings.HasPrefix(upper, "GMT"):
		s = strings.TrimSpace(s[3:])
		if s == "" {
			return 0, nil
		}
	case s == "":
		return 0, fmt.Errorf("%w: empty", ErrInvalidOffset)
	default:
	}

	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	default:
		return 0, fmt.Errorf("%w: %q has no sign", ErrInvalidOffset, label)
	}

	var hourPart, minutePart string
	switch {
	case strings.Contains(s, ":"):
		hourPart, minutePart, _ = strings.Cut(s, ":")
	case len(s) == 4:
		hourPart, minutePart = s[:2], s[2:]
	default:
		hourPart = s
	}

	hours, err := strconv.Atoi(hourPart)
	if err != nil || hours < 0 || hours > maxOffsetHours {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, label)
	}
	minutes := 0
	if minutePart != "" {
		minutes, err = strconv.Atoi(minutePart)
		if err != nil || minutes < 0 || minutes >= 60 || len(minutePart) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, label)
		}
	}

	return sign * (float64(hours) + float64(minutes)/60), nil
}

// ParseTimezoneOffset extracts the current numeric offset from a timezone string.
// Examples:
//   - "UTC-4" returns -4
//   - "UTC+5:30" returns 5.5
//   - "UTC" returns 0
//   - "America/New_York" returns -4 or -5 depending on DST
//   - Invalid input returns 0
func ParseTimezoneOffset(timezone string) float64 {
	return ParseTimezoneOffsetAt(timezone, time.Now())
}

// ParseTimezoneOffsetAt is ParseTimezoneOffset evaluated at a given instant.
func ParseTimezoneOffsetAt(timezone string, at time.Time) float64 {
	if off, err := ParseOffset(timezone); err == nil {
		return off
	}
	if timezone == "" || timezone == "Local" {
		return 0
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return 0 // Invalid timezone
	}
	_, offset := at.In(loc).Zone()
	return float64(offset) / 3600
}
