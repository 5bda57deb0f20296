package worldclock

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/worldclock/pkg/tzconvert"
)

func TestFormatTime(t *testing.T) {
	d := New()
	morning := time.Date(2025, time.January, 15, 1, 5, 9, 0, time.UTC)  // 09:05:09 in Shanghai
	evening := time.Date(2025, time.January, 15, 6, 30, 5, 0, time.UTC) // 14:30:05 in Shanghai
	midnight := time.Date(2025, time.January, 14, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		t        time.Time
		timezone string
		spec     FormatSpec
		want     string
	}{
		{"full", evening, "Asia/Shanghai", FullFormat, "2025/01/15 14:30:05"},
		{"empty spec means full", evening, "Asia/Shanghai", FormatSpec{}, "2025/01/15 14:30:05"},
		{"date only", evening, "Asia/Shanghai", DateOnly, "2025/01/15"},
		{"time only", evening, "Asia/Shanghai", TimeOnly, "14:30:05"},
		{"short time", morning, "Asia/Shanghai", ShortTime, "09:05"},
		{"12 hour afternoon", evening, "Asia/Shanghai", FormatSpec{Hour: true, Minute: true, Second: true, Hour12: true}, "下午02:30:05"},
		{"12 hour morning", morning, "Asia/Shanghai", FormatSpec{Year: true, Month: true, Day: true, Hour: true, Minute: true, Hour12: true}, "2025/01/15 上午09:05"},
		{"12 hour midnight", midnight, "Asia/Shanghai", FormatSpec{Hour: true, Minute: true, Hour12: true}, "上午12:00"},
		{"other zone crosses date", evening, "America/Los_Angeles", FullFormat, "2025/01/14 22:30:05"},
		{"year and month", evening, "UTC", FormatSpec{Year: true, Month: true}, "2025/01"},
		{"unsupported zone", evening, "not/a/zone", FullFormat, FormatErrorText},
		{"empty zone", evening, "", FullFormat, FormatErrorText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.FormatTime(tt.t, tt.timezone, tt.spec); got != tt.want {
				t.Errorf("FormatTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatErrorWrapsCause(t *testing.T) {
	d := New()
	_, err := d.Format(winter, "not/a/zone", FullFormat)
	if !errors.Is(err, ErrFormat) {
		t.Errorf("error %v should wrap ErrFormat", err)
	}
	if !errors.Is(err, ErrUnsupportedZone) {
		t.Errorf("error %v should wrap ErrUnsupportedZone", err)
	}
}

func TestSnapshot(t *testing.T) {
	d := New(fixedClock(winter))

	info, err := d.Snapshot("Asia/Shanghai")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	want := ZoneInfo{
		Timezone:  "Asia/Shanghai",
		Time:      "2025-01-15T20:00:00Z",
		Timestamp: time.Date(2025, time.January, 15, 20, 0, 0, 0, time.UTC).UnixMilli(),
		Formatted: "2025/01/15 20:00:00",
		DateInfo:  "2025/01/15 星期三",
		Offset:    8,
		IsDST:     false,
		DayOfWeek: 3,
		DayOfYear: 15,
	}
	if info != want {
		t.Errorf("Snapshot() = %+v, want %+v", info, want)
	}

	infos, err := d.Snapshots("America/New_York", "Asia/Kolkata")
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(infos) != 2 || !infos[0].IsDST || infos[1].Offset != 5.5 {
		t.Errorf("Snapshots() = %+v", infos)
	}

	if _, err := d.Snapshots("Asia/Tokyo", "not/a/zone"); !errors.Is(err, ErrUnsupportedZone) {
		t.Errorf("Snapshots error = %v, want ErrUnsupportedZone", err)
	}
}

func TestRelativeTime(t *testing.T) {
	d := New(fixedClock(winter))

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "刚刚"},
		{59 * time.Second, "刚刚"},
		{-time.Hour, "刚刚"},
		{5 * time.Minute, "5分钟前"},
		{3 * time.Hour, "3小时前"},
		{49 * time.Hour, "2天前"},
		{10 * 24 * time.Hour, "2025/01/05"},
	}
	for _, tt := range tests {
		if got := d.RelativeTime(winter.Add(-tt.ago)); got != tt.want {
			t.Errorf("RelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestUnixRoundTrip(t *testing.T) {
	sec := Unix(winter)
	if got := FromUnix(sec); !got.Equal(winter) {
		t.Errorf("FromUnix(Unix(t)) = %v, want %v", got, winter)
	}
}

func TestCatalogIntegrity(t *testing.T) {
	d := New()

	for _, r := range d.All() {
		if r.Name == "" || r.Country == "" || r.Region == "" || len(r.CountryCode) != 2 || r.Flag == "" {
			t.Errorf("incomplete record %+v", r)
		}

		jan, err := d.Offset(r.IANA, winter)
		if err != nil {
			t.Errorf("%s: %v", r.IANA, err)
			continue
		}
		jul, err := d.Offset(r.IANA, summer)
		if err != nil {
			t.Errorf("%s: %v", r.IANA, err)
			continue
		}

		label, err := tzconvert.ParseOffset(r.Offset)
		if err != nil {
			t.Errorf("%s: bad offset label %q: %v", r.Name, r.Offset, err)
			continue
		}
		// Labels carry the standard offset, the smaller of the two seasons.
		if standard := math.Min(jan, jul); label != standard {
			t.Errorf("%s (%s) labelled %s, standard offset is %s", r.Name, r.IANA, r.Offset, tzconvert.FormatOffset(standard))
		}
	}
}

func TestDefaultCities(t *testing.T) {
	got := names(DefaultCities())
	want := []string{"北京", "纽约", "伦敦", "东京", "悉尼", "巴黎"}
	if len(got) != len(want) {
		t.Fatalf("DefaultCities() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DefaultCities()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
