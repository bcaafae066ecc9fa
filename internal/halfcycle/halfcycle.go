// Package halfcycle tracks per-satellite, per-band half-cycle ambiguity
// intervals across the scan pass and resolves them during the convert
// pass, following RTKLIB's resolve_halfc/set_halfc state machine.
package halfcycle

import (
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
)

// Status values for a half-cycle interval.
const (
	Idle       = 0
	Unresolved = 1
	ResolvedAdd = 2
	ResolvedSub = 3
	ResolvedNoAdj = 4
)

// Interval is one [ts,te] half-cycle window with its resolution status.
type Interval struct {
	TS, TE gtime.Time
	Status int
}

// Tracker holds one interval list per (sat-1, band), indexed
// [sat-1][band], each list ordered oldest-first with the active interval
// (if any) last.
type Tracker struct {
	lists map[[2]int][]Interval
	tol   float64
}

// New returns a tracker using tol as the write-time interval-match
// tolerance (DTTOL, 0.025s, when unset).
func New(tol float64) *Tracker {
	if tol <= 0 {
		tol = 0.025
	}
	return &Tracker{lists: make(map[[2]int][]Interval), tol: tol}
}

func key(sat, band int) [2]int { return [2]int{sat - 1, band} }

func (t *Tracker) head(sat, band int) *Interval {
	l := t.lists[key(sat, band)]
	if len(l) == 0 {
		return nil
	}
	return &l[len(l)-1]
}

func (t *Tracker) push(sat, band int, iv Interval) {
	k := key(sat, band)
	t.lists[k] = append(t.lists[k], iv)
}

// Observe feeds one band's LLI at time for (sat,band) through the scan-pass
// state machine. L is the carrier-phase value; observation is skipped
// when L is zero (no phase tracked on this band this epoch).
func (t *Tracker) Observe(sat, band int, time gtime.Time, l float64, lli rinexdata.LLI) {
	if l == 0 {
		return
	}
	h := t.head(sat, band)
	if h == nil {
		t.push(sat, band, Interval{TS: time, TE: time, Status: Idle})
		h = t.head(sat, band)
	}

	if lli.Any(rinexdata.LLISlip) {
		// A true cycle slip always invalidates a pending resolution, even
		// when HALFA/HALFS also happen to be set on the same record.
		h.Status = Idle
		return
	}

	if lli.Any(rinexdata.LLIHalfC) {
		if h.Status == Idle {
			h.TS = time
		}
		h.TE = time
		h.Status = Unresolved
		return
	}

	if h.Status == Unresolved {
		switch {
		case lli.Any(rinexdata.LLIHalfA):
			h.Status = ResolvedAdd
		case lli.Any(rinexdata.LLIHalfS):
			h.Status = ResolvedSub
		default:
			h.Status = ResolvedNoAdj
		}
		t.push(sat, band, Interval{TS: time, TE: time, Status: Idle})
	}
}

// Resolve applies write-time half-cycle correction to every band of obs:
// for each band whose interval list has a ResolvedAdd/ResolvedSub node
// covering obs.Time (within tolerance), shifts L by +-0.5 cycles and
// clears the HALFC bit. HALFA/HALFS are always cleared from the outgoing
// record (scan-pass bookkeeping only).
func (t *Tracker) Resolve(obs *rinexdata.ObsD) {
	for band := 0; band < rinexdata.NumBands; band++ {
		obs.LLI[band] = obs.LLI[band].Clear(rinexdata.LLIHalfA | rinexdata.LLIHalfS)
		if obs.L[band] == 0 {
			continue
		}
		l, ok := t.lists[key(obs.Sat, band)]
		if !ok {
			continue
		}
		for _, iv := range l {
			if iv.Status != ResolvedAdd && iv.Status != ResolvedSub {
				continue
			}
			if t.covers(iv, obs.Time) {
				if iv.Status == ResolvedAdd {
					obs.L[band] += 0.5
				} else {
					obs.L[band] -= 0.5
				}
				obs.LLI[band] = obs.LLI[band].Clear(rinexdata.LLIHalfC)
				break
			}
		}
	}
}

func (t *Tracker) covers(iv Interval, time gtime.Time) bool {
	return gtime.Diff(time, iv.TS) >= -t.tol && gtime.Diff(iv.TE, time) >= -t.tol
}
