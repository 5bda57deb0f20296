package worldclock

import (
	"fmt"
	"strings"
	"time"
)

// FormatErrorText is what FormatTime returns when a timestamp cannot be rendered.
const FormatErrorText = "时间格式错误"

// FormatSpec selects which fields FormatTime renders. Hours are 24-hour unless Hour12 is set.
type FormatSpec struct {
	Year   bool `json:"year,omitempty" yaml:"year"`
	Month  bool `json:"month,omitempty" yaml:"month"`
	Day    bool `json:"day,omitempty" yaml:"day"`
	Hour   bool `json:"hour,omitempty" yaml:"hour"`
	Minute bool `json:"minute,omitempty" yaml:"minute"`
	Second bool `json:"second,omitempty" yaml:"second"`
	Hour12 bool `json:"hour12,omitempty" yaml:"hour12"`
}

// Common layouts.
var (
	FullFormat = FormatSpec{Year: true, Month: true, Day: true, Hour: true, Minute: true, Second: true}
	DateOnly   = FormatSpec{Year: true, Month: true, Day: true}
	TimeOnly   = FormatSpec{Hour: true, Minute: true, Second: true}
	ShortTime  = FormatSpec{Hour: true, Minute: true}
)

func (s FormatSpec) empty() bool {
	return !s.Year && !s.Month && !s.Day && !s.Hour && !s.Minute && !s.Second
}

// Format renders the instant t as seen in zone id, zh-CN style:
// "2024/01/15 14:30:05", or "2024/01/15 下午02:30:05" with Hour12.
// An empty spec renders every field.
func (d *Directory) Format(t time.Time, id string, spec FormatSpec) (string, error) {
	loc, err := d.Zone(id)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if spec.empty() {
		spec.Year, spec.Month, spec.Day = true, true, true
		spec.Hour, spec.Minute, spec.Second = true, true, true
	}
	return render(t.In(loc), spec), nil
}

// FormatTime is Format that returns FormatErrorText on failure.
func (d *Directory) FormatTime(t time.Time, id string, spec FormatSpec) string {
	s, err := d.Format(t, id, spec)
	if err != nil {
		d.logger.Debug("format fallback", "timezone", id, "error", err)
		return FormatErrorText
	}
	return s
}

func render(w time.Time, spec FormatSpec) string {
	var date []string
	if spec.Year {
		date = append(date, fmt.Sprintf("%04d", w.Year()))
	}
	if spec.Month {
		date = append(date, fmt.Sprintf("%02d", int(w.Month())))
	}
	if spec.Day {
		date = append(date, fmt.Sprintf("%02d", w.Day()))
	}

	var clock []string
	if spec.Hour {
		h := w.Hour()
		if spec.Hour12 {
			h %= 12
			if h == 0 {
				h = 12
			}
		}
		clock = append(clock, fmt.Sprintf("%02d", h))
	}
	if spec.Minute {
		clock = append(clock, fmt.Sprintf("%02d", w.Minute()))
	}
	if spec.Second {
		clock = append(clock, fmt.Sprintf("%02d", w.Second()))
	}

	var b strings.Builder
	b.WriteString(strings.Join(date, "/"))
	if len(clock) > 0 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if spec.Hour12 && spec.Hour {
			if w.Hour() < 12 {
				b.WriteString("上午")
			} else {
				b.WriteString("下午")
			}
		}
		b.WriteString(strings.Join(clock, ":"))
	}
	return b.String()
}
