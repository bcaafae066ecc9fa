// Package gtime implements GPS-time arithmetic with sub-second precision.
//
// Time is kept as a whole-second count since the Unix epoch plus a
// fractional remainder, mirroring the source RTKLIB-family representation
// rather than time.Time, because the conversion engine needs exact,
// monotonic GPS-time arithmetic (week/tow folding, tolerance comparisons)
// that is awkward to express against a civil calendar type.
package gtime

import (
	"fmt"
	"math"
)

// gpst0Unix is 1980/1/6 00:00:00 UTC, the GPS time origin, expressed as a Unix
// second count.
const gpst0Unix = 315964800

// Time is a GPS timestamp: whole seconds since the Unix epoch plus a
// fractional remainder in [0,1).
type Time struct {
	Sec  int64   // whole seconds
	Frac float64 // fraction of a second, 0 <= Frac < 1
}

// IsZero reports whether t is the unset/zero timestamp.
func (t Time) IsZero() bool {
	return t.Sec == 0 && t.Frac == 0
}

// Add returns t shifted by sec seconds (may be negative or fractional).
func Add(t Time, sec float64) Time {
	t.Frac += sec
	whole := math.Floor(t.Frac)
	t.Sec += int64(whole)
	t.Frac -= whole
	return t
}

// Diff returns t1-t2 in seconds.
func Diff(t1, t2 Time) float64 {
	return float64(t1.Sec-t2.Sec) + t1.Frac - t2.Frac
}

// Before reports whether t1 is strictly earlier than t2.
func Before(t1, t2 Time) bool { return Diff(t1, t2) < 0 }

// FromEpoch builds a Time from a civil GPS-time calendar tuple
// {year,month,day,hour,min,sec}.
func FromEpoch(ep [6]float64) Time {
	doy := [12]int{1, 32, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335}
	year, mon, day := int(ep[0]), int(ep[1]), int(ep[2])
	if year < 1970 || year > 2099 || mon < 1 || mon > 12 {
		return Time{}
	}
	days := (year-1970)*365 + (year-1969)/4 + doy[mon-1] + day - 2
	if year%4 == 0 && mon >= 3 {
		days++
	}
	sec := int64(ep[3])*3600 + int64(ep[4])*60 + int64(ep[5])
	return Time{Sec: int64(days)*86400 + sec, Frac: ep[5] - math.Floor(ep[5])}
}

// Epoch returns t as a civil GPS-time calendar tuple.
func (t Time) Epoch() [6]float64 {
	mday := [48]int{
		31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31,
		31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31,
		31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31,
		31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31,
	}
	days := int(t.Sec / 86400)
	sec := int(t.Sec - int64(days)*86400)
	day := days % 1461
	mon := 0
	for ; mon < 48; mon++ {
		if day < mday[mon] {
			break
		}
		day -= mday[mon]
	}
	year := 1970 + days/1461*4 + mon/12
	var ep [6]float64
	ep[0] = float64(year)
	ep[1] = float64(mon%12 + 1)
	ep[2] = float64(day + 1)
	ep[3] = float64(sec / 3600)
	ep[4] = float64(sec % 3600 / 60)
	ep[5] = float64(sec%60) + t.Frac
	return ep
}

// GPSWeekTow converts t to a GPS week number and time-of-week in seconds.
func (t Time) GPSWeekTow() (week int, tow float64) {
	t0 := Time{Sec: gpst0Unix}
	sec := t.Sec - t0.Sec
	w := int(sec / (86400 * 7))
	return w, float64(sec-int64(w)*86400*7) + t.Frac
}

// FromGPSWeekTow builds a Time from a GPS week number and time-of-week.
func FromGPSWeekTow(week int, tow float64) Time {
	t := Time{Sec: gpst0Unix}
	if tow < -1e9 || tow > 1e9 {
		tow = 0
	}
	t.Sec += int64(week)*86400*7 + int64(tow)
	t.Frac = tow - math.Floor(tow)
	return t
}

// String formats t as "yyyy/mm/dd hh:mm:ss.sss" with 3 fractional digits.
func (t Time) String() string {
	return t.Format(3)
}

// Format renders t with n digits after the decimal point (0<=n<=9).
func (t Time) Format(n int) string {
	if n < 0 {
		n = 0
	} else if n > 9 {
		n = 9
	}
	if 1.0-t.Frac < 0.5/math.Pow(10, float64(n)) {
		t.Sec++
		t.Frac = 0
	}
	ep := t.Epoch()
	if n == 0 {
		return sprintf6(ep)
	}
	return sprintf6Frac(ep, n)
}

func sprintf6(ep [6]float64) string {
	return fmt.Sprintf("%04.0f/%02.0f/%02.0f %02.0f:%02.0f:%02.0f",
		ep[0], ep[1], ep[2], ep[3], ep[4], ep[5])
}

func sprintf6Frac(ep [6]float64, n int) string {
	width := n + 3
	return fmt.Sprintf("%04.0f/%02.0f/%02.0f %02.0f:%02.0f:%0*.*f",
		ep[0], ep[1], ep[2], ep[3], ep[4], width, n, ep[5])
}
