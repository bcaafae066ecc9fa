package rnxopt

import "github.com/fxgnss/rnxengine/internal/satsys"

// SetPhaseShift fills o.Shift from o.TObs per RINEX 3.04 Annex 23: every
// carrier-phase ("L*") obs type gets a fixed per-(system,code) cycle shift.
// A no-op unless o.PhShift is set.
func (o *Options) SetPhaseShift() {
	if !o.PhShift {
		return
	}
	for i, sys := range satsys.Order {
		for j, t := range o.TObs[i] {
			if len(t) < 2 || t[0] != 'L' {
				continue
			}
			code := satsys.Obs2Code(t[1:])
			o.Shift[i][j] = shiftFor(sys, code)
		}
	}
}

func shiftFor(sys int, code uint8) float64 {
	c := satsys.Code2Obs(code)
	switch sys {
	case satsys.GPS:
		switch c {
		case "1S", "1L", "1X", "1P", "1W", "1N":
			return 0.25
		case "2C", "2S", "2L", "2X", "5Q":
			return -0.25
		}
	case satsys.GLO:
		switch c {
		case "1P", "2P", "3Q":
			return 0.25
		}
	case satsys.GAL:
		switch c {
		case "1C":
			return 0.5
		case "5Q", "7Q", "8Q":
			return -0.25
		case "6C":
			return -0.5
		}
	case satsys.QZS:
		switch c {
		case "1S", "1L", "1X":
			return 0.25
		case "5Q", "5P":
			return -0.25
		}
	case satsys.CMP:
		switch c {
		case "2P", "7Q", "6Q":
			return -0.25
		case "1P", "5P", "7P":
			return 0.25
		}
	}
	return 0
}
