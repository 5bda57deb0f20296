package worldclock

import (
	"fmt"
	"time"
)

var weekdays = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// ZoneInfo describes the current moment in one zone.
type ZoneInfo struct {
	Timezone  string  `json:"timezone"`
	Time      string  `json:"time"`      // projected wall clock, RFC 3339
	Timestamp int64   `json:"timestamp"` // projected wall clock, Unix milliseconds
	Formatted string  `json:"formatted"`
	DateInfo  string  `json:"dateInfo"`
	Offset    float64 `json:"offset"`
	IsDST     bool    `json:"isDST"`
	DayOfWeek int     `json:"dayOfWeek"` // 0 is Sunday
	DayOfYear int     `json:"dayOfYear"`
}

// Snapshot captures the current time, offset and calendar position of a zone.
func (d *Directory) Snapshot(id string) (ZoneInfo, error) {
	loc, err := d.Zone(id)
	if err != nil {
		return ZoneInfo{}, err
	}
	now := d.now()
	wall := project(now, loc)
	local := now.In(loc)

	offset, err := d.Offset(id, now)
	if err != nil {
		return ZoneInfo{}, err
	}
	dst, err := d.ObservesDST(id, local.Year())
	if err != nil {
		return ZoneInfo{}, err
	}

	return ZoneInfo{
		Timezone:  id,
		Time:      wall.Format(time.RFC3339),
		Timestamp: wall.UnixMilli(),
		Formatted: render(local, FullFormat),
		DateInfo:  fmt.Sprintf("%s %s", render(local, DateOnly), weekdays[local.Weekday()]),
		Offset:    offset,
		IsDST:     dst,
		DayOfWeek: int(local.Weekday()),
		DayOfYear: local.YearDay(),
	}, nil
}

// Snapshots returns one ZoneInfo per id, stopping at the first unsupported zone.
func (d *Directory) Snapshots(ids ...string) ([]ZoneInfo, error) {
	out := make([]ZoneInfo, 0, len(ids))
	for _, id := range ids {
		info, err := d.Snapshot(id)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// Unix returns t as whole seconds since the epoch.
func Unix(t time.Time) int64 {
	return t.Unix()
}

// FromUnix is the inverse of Unix, in UTC.
func FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// RelativeTime describes how long ago t was: 刚刚, N分钟前, N小时前, N天前,
// or the Beijing date for anything a week or older.
func (d *Directory) RelativeTime(t time.Time) string {
	diff := d.now().Sub(t)
	seconds := int64(diff / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case seconds < 60:
		return "刚刚"
	case minutes < 60:
		return fmt.Sprintf("%d分钟前", minutes)
	case hours < 24:
		return fmt.Sprintf("%d小时前", hours)
	case days < 7:
		return fmt.Sprintf("%d天前", days)
	default:
		return d.FormatTime(t, "Asia/Shanghai", DateOnly)
	}
}
