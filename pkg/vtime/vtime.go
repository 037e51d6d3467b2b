// Package vtime implements the virtual-time data model from spec.md §3/§6:
// a monotonic nanosecond timestamp in a UTC-anchored time base, with
// helpers to parse (YYYYMMDD, HHMMSS, microseconds) triples and format
// them back as "YYYYMMDD:HHMMSS.uuuuuu". Grounded on original_source's
// src/time/Time.hpp, translated from chrono arithmetic to Go's time.Time.
package vtime

import (
	"fmt"
	"time"
)

// Time is a monotonic nanosecond timestamp relative to the UTC epoch.
// It is the totally-ordered value every Event and Source reports.
type Time int64

// Duration is a signed nanosecond duration.
type Duration int64

// Epoch is the zero virtual time: 1970-01-01T00:00:00Z.
const Epoch Time = 0

// FromTime converts a time.Time (interpreted in UTC) to a Time.
func FromTime(t time.Time) Time {
	return Time(t.UTC().UnixNano())
}

// ToTime converts a Time back to a time.Time in UTC.
func (t Time) ToTime() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

// Add returns t+d.
func (t Time) Add(d Duration) Time {
	return t + Time(d)
}

// Sub returns the duration from u to t (t - u).
func (t Time) Sub(u Time) Duration {
	return Duration(t - u)
}

// Before reports whether t occurs strictly before u.
func (t Time) Before(u Time) bool { return t < u }

// After reports whether t occurs strictly after u.
func (t Time) After(u Time) bool { return t > u }

// YmdHms constructs a Time at midday-independent precision from a
// (YYYYMMDD, HHMMSS) pair in UTC, e.g. YmdHms(20220610, 162905).
func YmdHms(ymd, hms uint32) (Time, error) {
	return YmdHmsUsec(ymd, hms, 0)
}

// YmdMidnight constructs midnight UTC on the given calendar date.
func YmdMidnight(ymd uint32) (Time, error) {
	return YmdHms(ymd, 0)
}

// YmdHmsUsec constructs a Time from a (YYYYMMDD, HHMMSS, microseconds) triple.
func YmdHmsUsec(ymd, hms, usec uint32) (Time, error) {
	year := ymd / 10000
	month := (ymd % 10000) / 100
	day := ymd % 100

	hour := hms / 10000
	minute := (hms % 10000) / 100
	second := hms % 100

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, fmt.Errorf("vtime: invalid date %08d", ymd)
	}
	if hour > 23 || minute > 59 || second > 60 {
		return 0, fmt.Errorf("vtime: invalid time-of-day %06d", hms)
	}

	t := time.Date(int(year), time.Month(month), int(day), int(hour), int(minute), int(second), 0, time.UTC)
	t = t.Add(time.Duration(usec) * time.Microsecond)

	return FromTime(t), nil
}

// FormatYmdHmsUsec formats t as "YYYYMMDD:HHMMSS.uuuuuu".
func FormatYmdHmsUsec(t Time) string {
	tt := t.ToTime()
	usec := tt.Nanosecond() / 1000
	return fmt.Sprintf("%04d%02d%02d:%02d%02d%02d.%06d",
		tt.Year(), int(tt.Month()), tt.Day(),
		tt.Hour(), tt.Minute(), tt.Second(), usec)
}

// String implements fmt.Stringer using the spec's fixed format.
func (t Time) String() string {
	return FormatYmdHmsUsec(t)
}
