// Package sbas holds the SBAS message helpers: PRN-to-system
// classification and time conversion. Exclusion and duplicate screening
// of SBAS messages is done by the session's SBAS writer.
package sbas

import (
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/satsys"
)

// Classify maps an SBAS message PRN to (system, satellite number). SBAS
// PRNs classify as-is; QZSS L1S PRNs classify as QZS with +10 offset
// (matching RTKLIB's QZS-as-SBAS PRN remap); anything else is
// unrecognised.
func Classify(prn int) (sys int, sat int, ok bool) {
	if prn >= satsys.MinPRNSBS && prn <= satsys.MaxPRNSBS {
		return satsys.SBS, satsys.SatNo(satsys.SBS, prn), true
	}
	if prn >= satsys.MinPRNQZSL1S && prn <= satsys.MaxPRNQZSL1S {
		qzsPrn := prn + 10
		return satsys.QZS, satsys.SatNo(satsys.QZS, qzsPrn), true
	}
	return satsys.None, 0, false
}

// Time converts an SBAS message's GPS week/tow into a gtime.Time.
func Time(week int, tow float64) gtime.Time {
	return gtime.FromGPSWeekTow(week, tow)
}

// LongTermUpdateCode is the long-term-correction-update return value
// that signals a fresh SBAS ephemeris is ready to dispatch through the
// navigation router.
const LongTermUpdateCode = 9
