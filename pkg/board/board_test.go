package board

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/worldclock"
	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

var noon = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

func find(t *testing.T, dir *worldclock.Directory, iana string) worldclock.Record {
	t.Helper()
	rec, ok := dir.FindByIANA(iana)
	if !ok {
		t.Fatalf("%s missing", iana)
	}
	return rec
}

func TestPeriodOf(t *testing.T) {
	tests := []struct {
		hour float64
		want Period
	}{
		{0, Night},
		{5.99, Night},
		{6, Morning},
		{11.5, Morning},
		{12, Day},
		{17.75, Day},
		{18, Evening},
		{21.5, Evening},
		{22, Night},
		{23.9, Night},
	}
	for _, tt := range tests {
		if got := PeriodOf(tt.hour); got != tt.want {
			t.Errorf("PeriodOf(%v) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestDifference(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "same"},
		{13, "+13h"},
		{-13, "-13h"},
		{-2.5, "-2.5h"},
		{5.75, "+5.75h"},
	}
	for _, tt := range tests {
		if got := Difference(tt.hours); got != tt.want {
			t.Errorf("Difference(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	dir := worldclock.New(worldclock.WithClock(func() time.Time { return noon }))
	cities := []worldclock.Record{
		find(t, dir, "Asia/Shanghai"),
		find(t, dir, "America/New_York"),
		find(t, dir, "Europe/London"),
		find(t, dir, "Australia/Sydney"),
	}

	var buf bytes.Buffer
	err := Render(&buf, dir, cities, Options{
		Local:    "Asia/Shanghai",
		Format:   worldclock.ShortTime,
		Title:    "World Clock",
		Favorite: func(iana string) bool { return iana == "Europe/London" },
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2+len(cities) {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "World Clock" {
		t.Errorf("title = %q", lines[0])
	}

	checks := []struct {
		line  string
		parts []string
		not   []string
	}{
		{lines[2], []string{"🇨🇳 北京", "🌆 20:00", "UTC+08:00", "same"}, []string{"DST", "★"}},
		{lines[3], []string{"🇺🇸 纽约", "🌅 07:00", "UTC-05:00", "-13h", "DST"}, []string{"★"}},
		{lines[4], []string{"🇬🇧 伦敦", "☀️ 12:00", "UTC+00:00", "-8h", "DST", "★"}, nil},
		{lines[5], []string{"🇦🇺 悉尼", "🌙 23:00", "UTC+11:00", "+3h", "DST"}, []string{"★"}},
	}
	for _, c := range checks {
		for _, p := range c.parts {
			if !strings.Contains(c.line, p) {
				t.Errorf("line %q missing %q", c.line, p)
			}
		}
		for _, p := range c.not {
			if strings.Contains(c.line, p) {
				t.Errorf("line %q should not contain %q", c.line, p)
			}
		}
	}

	// Wide names are padded to the same cell width, so clocks line up.
	if !strings.HasPrefix(lines[5], "🇦🇺 悉尼  澳大利亚  ") || !strings.HasPrefix(lines[2], "🇨🇳 北京  中国      ") {
		t.Errorf("columns not aligned:\n%s\n%s", lines[2], lines[5])
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, worldclock.New(), nil, Options{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No cities selected\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestRenderUnknownZoneFallsBack(t *testing.T) {
	dir := worldclock.New(worldclock.WithClock(func() time.Time { return noon }))
	var buf bytes.Buffer
	err := Render(&buf, dir, []worldclock.Record{{Name: "Nowhere", IANA: "Mars/Olympus", Country: "Mars"}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), worldclock.FormatErrorText) || !strings.Contains(buf.String(), "UTC+00:00") {
		t.Errorf("unexpected fallback rendering: %q", buf.String())
	}
}

func TestDisplayWidth(t *testing.T) {
	if got := displayWidth("北京"); got != 4 {
		t.Errorf("displayWidth(北京) = %d, want 4", got)
	}
	if got := displayWidth("NYC"); got != 3 {
		t.Errorf("displayWidth(NYC) = %d, want 3", got)
	}
}
