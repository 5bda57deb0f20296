package worldclock

import (
	"time"
)

// project returns t as seen on the wall clock of loc, with those calendar
// fields stamped as UTC. The result is a different instant than t; only its
// fields are meaningful.
func project(t time.Time, loc *time.Location) time.Time {
	w := t.In(loc)
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), time.UTC)
}

// Now returns the directory's current instant.
func (d *Directory) Now() time.Time {
	return d.now()
}

// TimeIn returns now projected onto the wall clock of the zone.
func (d *Directory) TimeIn(id string) (time.Time, error) {
	loc, err := d.Zone(id)
	if err != nil {
		return time.Time{}, err
	}
	return project(d.now(), loc), nil
}

// CurrentTimeIn is TimeIn that falls back to the unmodified current time.
func (d *Directory) CurrentTimeIn(id string) time.Time {
	t, err := d.TimeIn(id)
	if err != nil {
		d.logger.Debug("current time fallback", "timezone", id, "error", err)
		return d.now()
	}
	return t
}

// Offset returns the zone's UTC offset in hours at the given instant.
// Fractional offsets (India +5.5, Nepal +5.75) are preserved.
func (d *Directory) Offset(id string, at time.Time) (float64, error) {
	loc, err := d.Zone(id)
	if err != nil {
		return 0, err
	}
	return project(at, loc).Sub(at).Hours(), nil
}

// OffsetHours is the zone's current UTC offset in hours, or 0 if the zone is unknown.
func (d *Directory) OffsetHours(id string) float64 {
	off, err := d.Offset(id, d.now())
	if err != nil {
		d.logger.Debug("offset fallback", "timezone", id, "error", err)
		return 0
	}
	return off
}

// TimeDifferenceHours returns OffsetHours(a) - OffsetHours(b), with both
// offsets taken at the same instant.
func (d *Directory) TimeDifferenceHours(a, b string) float64 {
	now := d.now()
	offA, err := d.Offset(a, now)
	if err != nil {
		d.logger.Debug("offset fallback", "timezone", a, "error", err)
	}
	offB, err := d.Offset(b, now)
	if err != nil {
		d.logger.Debug("offset fallback", "timezone", b, "error", err)
	}
	return offA - offB
}

// ConvertWallClock reads t's wall-clock fields in from, treats them as UTC,
// and projects that onto the wall clock of to.
//
// This operates on displayed fields, not elapsed time: converting back does
// not generally return t, and results around DST transitions follow the
// fields rather than the real instant. It is deterministic.
func (d *Directory) ConvertWallClock(t time.Time, from, to string) (time.Time, error) {
	src, err := d.Zone(from)
	if err != nil {
		return time.Time{}, err
	}
	dst, err := d.Zone(to)
	if err != nil {
		return time.Time{}, err
	}
	return project(project(t, src), dst), nil
}

// Convert is ConvertWallClock that returns t unchanged on failure.
func (d *Directory) Convert(t time.Time, from, to string) time.Time {
	out, err := d.ConvertWallClock(t, from, to)
	if err != nil {
		d.logger.Debug("convert fallback", "from", from, "to", to, "error", err)
		return t
	}
	return out
}

// ObservesDST reports whether the zone's offset on 1 January differs from its
// offset on 1 July of the given year.
func (d *Directory) ObservesDST(id string, year int) (bool, error) {
	loc, err := d.Zone(id)
	if err != nil {
		return false, err
	}
	jan, err := d.Offset(id, time.Date(year, time.January, 1, 0, 0, 0, 0, loc))
	if err != nil {
		return false, err
	}
	jul, err := d.Offset(id, time.Date(year, time.July, 1, 0, 0, 0, 0, loc))
	if err != nil {
		return false, err
	}
	return jan != jul, nil
}

// IsDST reports whether the zone shifts its clocks during the current year.
// Each reference date uses its own offset; unknown zones report false.
func (d *Directory) IsDST(id string) bool {
	loc, err := d.Zone(id)
	if err != nil {
		d.logger.Debug("dst fallback", "timezone", id, "error", err)
		return false
	}
	dst, err := d.ObservesDST(id, d.now().In(loc).Year())
	if err != nil {
		d.logger.Debug("dst fallback", "timezone", id, "error", err)
		return false
	}
	return dst
}
