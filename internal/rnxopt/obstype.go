package rnxopt

import (
	"github.com/fxgnss/rnxengine/internal/obscode"
	"github.com/fxgnss/rnxengine/internal/satsys"
)

// kindLetters is the fixed C/L/D/S prefix-letter order obstype-mask bit j
// corresponds to.
const kindLetters = "CLDS"

// PopulateObsTypes expands the scan pass's per-system code inventory into
// the RINEX obs-type strings that go in opt.TObs, applying the freqtype
// mask, the per-code Mask enable table, the obstype/types gates, the
// codeless guard and (for ver.3 output) the version-gating table, grounded
// on the teacher's SetOptObsType. For ver.2 output it additionally applies
// the ver.3->ver.2 downconversion rules and merges every system's result
// into the GPS slot. Must be called once, after the scan pass has finished
// feeding scanner.
func (o *Options) PopulateObsTypes(scanner *obscode.Scanner) {
	for idx := range o.NObs {
		o.NObs[idx] = 0
		o.TObs[idx] = o.TObs[idx][:0]
		o.Shift[idx] = o.Shift[idx][:0]
	}

	for idx, sys := range satsys.Order {
		if !o.SysEnabled(sys) {
			continue
		}
		codes := scanner.Codes(sys)
		types := scanner.Types(sys)
		for i, code := range codes {
			id := satsys.Code2Obs(code)
			freqIdx := satsys.Code2Idx(sys, code)
			if id == "" || freqIdx < 0 {
				continue
			}
			if o.FreqType&(1<<uint(freqIdx)) == 0 || !o.Mask[idx][code-1] {
				continue
			}
			if o.IsVer3() {
				ver := satsys.VerCode[idx][code-1]
				if ver < '0' || ver > byte('0'+(o.RnxVer-300)) {
					continue
				}
			}
			for j := 0; j < 4; j++ {
				if o.ObsType&(1<<uint(j)) == 0 {
					continue
				}
				if types[i]&(1<<uint(j)) == 0 {
					continue
				}

				t := string(kindLetters[j]) + id
				if t[0] == 'C' && t[2] == 'N' {
					continue // codeless tracking, no pseudorange available
				}

				if !o.IsVer3() {
					t = ver2Legacy(sys, o.RnxVer, t)
					o.addObsType(0, t)
				} else {
					o.addObsType(idx, t)
				}
			}
		}
	}

	o.SetPhaseShift()
}

// addObsType appends t to slot idx's obs-type list unless it is already
// present or the list is full, keeping Shift in lockstep with TObs.
func (o *Options) addObsType(idx int, t string) {
	for _, existing := range o.TObs[idx] {
		if existing == t {
			return
		}
	}
	if o.NObs[idx] >= MaxObsType {
		return
	}
	o.TObs[idx] = append(o.TObs[idx], t)
	o.Shift[idx] = append(o.Shift[idx], 0)
	o.NObs[idx]++
}

// ver2Legacy applies the RINEX ver.3->ver.2 obs-type rewrite rules
// (teacher's ConvRinexCode3_2) to a single ver.3 type string, e.g. "C1C".
func ver2Legacy(sys, rnxVer int, t string) string {
	band := t[1:3]
	switch {
	case rnxVer >= 212 && (sys == satsys.GPS || sys == satsys.QZS || sys == satsys.SBS) && band == "1C":
		return t[:1] + "A"
	case rnxVer >= 212 && (sys == satsys.GPS || sys == satsys.QZS) && (band == "1S" || band == "1L" || band == "1X"):
		return t[:1] + "B"
	case rnxVer >= 212 && (sys == satsys.GPS || sys == satsys.QZS) && (band == "2S" || band == "2L" || band == "2X"):
		return t[:1] + "C"
	case rnxVer >= 212 && sys == satsys.GLO && band == "1C":
		return t[:1] + "A"
	case rnxVer >= 212 && sys == satsys.GLO && band == "2C":
		return t[:1] + "D"
	case sys == satsys.CMP && (band == "2I" || band == "2Q" || band == "2X"):
		return t[:1] + "2"
	case t[0] == 'C' && (band == "1P" || band == "1W" || band == "1Y" || band == "1N"):
		return "P1"
	case t[0] == 'C' && (band == "2P" || band == "2W" || band == "2Y" || band == "2N" || band == "2D"):
		return "P2"
	default:
		return t[:2]
	}
}
