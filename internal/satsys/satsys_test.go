package satsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSatNoSysRoundTrip(t *testing.T) {
	cases := []struct {
		sys, prn int
	}{
		{GPS, 1}, {GPS, 32}, {GLO, 1}, {GLO, 27}, {GAL, 36},
		{QZS, 193}, {CMP, 63}, {IRN, 14}, {SBS, 120}, {SBS, 158},
	}
	for _, c := range cases {
		sat := SatNo(c.sys, c.prn)
		if sat == 0 {
			t.Fatalf("SatNo(%d,%d) = 0", c.sys, c.prn)
		}
		sys, prn := Sys(sat)
		assert.Equal(t, c.sys, sys)
		assert.Equal(t, c.prn, prn)
	}
}

func TestCode2ObsObs2CodeRoundTrip(t *testing.T) {
	for _, code := range []string{"1C", "2W", "5Q", "1X"} {
		id := Obs2Code(code)
		assert.NotZero(t, id)
		assert.Equal(t, code, Code2Obs(id))
	}
}

func TestCode2IdxKnownBands(t *testing.T) {
	assert.Equal(t, 0, Code2Idx(GPS, Obs2Code("1C")))
	assert.Equal(t, 1, Code2Idx(GPS, Obs2Code("2W")))
	assert.Equal(t, 2, Code2Idx(GPS, Obs2Code("5Q")))
	assert.Equal(t, -1, Code2Idx(SBS, Obs2Code("2C")))
}

func TestGetCodePriPrefersHigherRankedAttribute(t *testing.T) {
	pC := GetCodePri(GPS, Obs2Code("1C"))
	pS := GetCodePri(GPS, Obs2Code("1S"))
	assert.Greater(t, pC, pS)
}

func TestIndexOrdering(t *testing.T) {
	assert.Equal(t, 0, Index(GPS))
	assert.Equal(t, 4, Index(SBS))
	assert.Equal(t, -1, Index(None))
}
