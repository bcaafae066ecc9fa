// Package screen implements the epoch time-window filter and duplicate
// guard, grounded on RTKLIB's screent/screent_ttol in convrnx.go.
package screen

import "github.com/fxgnss/rnxengine/internal/gtime"

// DefaultTol is the default epoch-match tolerance in seconds (DTTOL).
const DefaultTol = 0.025

// Window holds the screening parameters for one output category.
type Window struct {
	TS, TE gtime.Time
	TInt   float64
	TTol   float64

	seen    gtime.Time
	hasSeen bool
}

// NewWindow returns a Window with tol defaulted to DefaultTol when <= 0.
func NewWindow(ts, te gtime.Time, tint, tol float64) *Window {
	if tol <= 0 {
		tol = DefaultTol
	}
	return &Window{TS: ts, TE: te, TInt: tint, TTol: tol}
}

// Pass reports whether time clears the configured window and sampling
// interval: pass = (tint<=0 or (time mod tint) within 2*ttol of a tick)
// and (ts unset or time >= ts-ttol) and (te unset or time < te+ttol).
func (w *Window) Pass(time gtime.Time) bool {
	if w.TInt > 0 {
		week, tow := time.GPSWeekTow()
		_ = week
		rem := mod(tow+w.TTol, w.TInt)
		if rem > 2*w.TTol {
			return false
		}
	}
	if !w.TS.IsZero() && gtime.Diff(time, w.TS) < -w.TTol {
		return false
	}
	if !w.TE.IsZero() && gtime.Diff(time, w.TE) >= w.TTol {
		return false
	}
	return true
}

func mod(a, b float64) float64 {
	r := a - b*float64(int(a/b))
	if r < 0 {
		r += b
	}
	return r
}

// Duplicate reports whether time is within ttol of the last-accepted time
// for this window (the duplicate guard), without updating the cursor.
func (w *Window) Duplicate(time gtime.Time) bool {
	return w.hasSeen && gtime.Diff(time, w.seen) < w.TTol
}

// Advance records time as the new duplicate-guard cursor.
func (w *Window) Advance(time gtime.Time) {
	w.seen = time
	w.hasSeen = true
}
