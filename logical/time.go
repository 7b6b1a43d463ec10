package logical

import (
	"fmt"
	"time"
)

// Date is a calendar date without time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// DateFromEpochDays returns the date days after 1970-01-01.
func DateFromEpochDays(days int64) Date {
	return DateOf(epoch.AddDate(0, 0, int(days)))
}

// EpochDays returns the number of days since 1970-01-01.
func (d Date) EpochDays() int64 {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return floorDiv(t.Unix(), 86400)
}

// Time returns midnight of d in UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// String renders the ISO-8601 form, e.g. 2008-06-03.
func (d Date) String() string {
	if d.Year > 9999 {
		return fmt.Sprintf("+%d-%02d-%02d", d.Year, int(d.Month), d.Day)
	}
	if d.Year < 0 {
		return fmt.Sprintf("-%04d-%02d-%02d", -d.Year, int(d.Month), d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Day is the length of a TimeOfDay range.
const Day = 24 * time.Hour

// TimeOfDay is the elapsed time since midnight, in [0, 24h).
type TimeOfDay time.Duration

// NewTimeOfDay builds a time of day from its components.
func NewTimeOfDay(hour, minute, second, nanos int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second + time.Duration(nanos))
}

// Valid reports whether t lies within one day.
func (t TimeOfDay) Valid() bool { return t >= 0 && time.Duration(t) < Day }

func (t TimeOfDay) Hour() int       { return int(time.Duration(t) / time.Hour) }
func (t TimeOfDay) Minute() int     { return int(time.Duration(t) % time.Hour / time.Minute) }
func (t TimeOfDay) Second() int     { return int(time.Duration(t) % time.Minute / time.Second) }
func (t TimeOfDay) Nanosecond() int { return int(time.Duration(t) % time.Second) }

// Millis returns the milliseconds since midnight, truncating.
func (t TimeOfDay) Millis() int64 { return time.Duration(t).Milliseconds() }

// Micros returns the microseconds since midnight, truncating.
func (t TimeOfDay) Micros() int64 { return time.Duration(t).Microseconds() }

// String renders HH:mm, HH:mm:ss or HH:mm:ss with a 3, 6 or 9 digit fraction,
// using the shortest form that keeps the value.
func (t TimeOfDay) String() string {
	s := fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
	sec, ns := t.Second(), t.Nanosecond()
	if sec == 0 && ns == 0 {
		return s
	}
	s += fmt.Sprintf(":%02d", sec)
	switch {
	case ns == 0:
	case ns%1_000_000 == 0:
		s += fmt.Sprintf(".%03d", ns/1_000_000)
	case ns%1_000 == 0:
		s += fmt.Sprintf(".%06d", ns/1_000)
	default:
		s += fmt.Sprintf(".%09d", ns)
	}
	return s
}

// LocalDateTime is a date and time of day without time zone.
type LocalDateTime struct {
	Date Date
	Time TimeOfDay
}

// LocalDateTimeOf drops the location of t, keeping its wall clock.
func LocalDateTimeOf(t time.Time) LocalDateTime {
	h, m, s := t.Clock()
	return LocalDateTime{Date: DateOf(t), Time: NewTimeOfDay(h, m, s, t.Nanosecond())}
}

// LocalFromEpochMillis reads a local timestamp stored as milliseconds from
// 1970-01-01T00:00.
func LocalFromEpochMillis(ms int64) LocalDateTime {
	return LocalDateTimeOf(time.UnixMilli(ms).UTC())
}

// LocalFromEpochMicros reads a local timestamp stored as microseconds from
// 1970-01-01T00:00.
func LocalFromEpochMicros(us int64) LocalDateTime {
	return LocalDateTimeOf(time.UnixMicro(us).UTC())
}

// UTC returns the wall clock interpreted in UTC.
func (l LocalDateTime) UTC() time.Time {
	return l.Date.Time().Add(time.Duration(l.Time))
}

// EpochMillis returns the wall clock as milliseconds from 1970-01-01T00:00.
func (l LocalDateTime) EpochMillis() int64 { return l.UTC().UnixMilli() }

// EpochMicros returns the wall clock as microseconds from 1970-01-01T00:00.
func (l LocalDateTime) EpochMicros() int64 { return l.UTC().UnixMicro() }

// String renders the ISO-8601 form, e.g. 2008-06-03T10:15:30.
func (l LocalDateTime) String() string { return l.Date.String() + "T" + l.Time.String() }

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
