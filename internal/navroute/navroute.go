// Package navroute implements the navigation dispatcher:
// time-screens each decoded ephemeris and routes it to the correct output
// file slot under the combined/separated nav-file policy.
package navroute

import (
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/satsys"
)

// Slot indices into the nine-file output layout.
const (
	SlotObs = iota
	SlotNav
	SlotGNav
	SlotHNav
	SlotQNav
	SlotLNav
	SlotCNav
	SlotINav
	SlotSbasLog
)

// maxDtoe is the per-system broadcast-validity half-window used to screen
// ephemeris time against the session window.
var maxDtoe = map[int]float64{
	satsys.GPS: 7200, satsys.QZS: 7200, satsys.IRN: 7200,
	satsys.GLO: 1800, satsys.GAL: 14400, satsys.CMP: 21600, satsys.SBS: 360,
}

func maxDtoeFor(sys int) float64 {
	if v, ok := maxDtoe[sys]; ok {
		return v
	}
	return 86400
}

// InWindow reports whether toe falls within [ts-maxDtoe(sys), te] (te
// zero meaning "open ended").
func InWindow(sys int, toe, ts, te gtime.Time) bool {
	d := maxDtoeFor(sys)
	if !ts.IsZero() && gtime.Diff(toe, ts) < -d {
		return false
	}
	if !te.IsZero() && gtime.Diff(toe, te) > 0 {
		return false
	}
	return true
}

// Route returns the output slot for an ephemeris of system sys, given
// whether separated nav-file output is enabled. Returns 0 (SlotObs, never
// a valid nav slot) if sys is unrecognised.
func Route(sys int, sepNav bool) int {
	if !sepNav {
		return SlotNav
	}
	switch sys {
	case satsys.GPS:
		return SlotNav
	case satsys.GLO:
		return SlotGNav
	case satsys.SBS:
		return SlotHNav
	case satsys.QZS:
		return SlotQNav
	case satsys.GAL:
		return SlotLNav
	case satsys.CMP:
		return SlotCNav
	case satsys.IRN:
		return SlotINav
	}
	return SlotObs
}
