package rnxopt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fxgnss/rnxengine/internal/satsys"
)

func TestSetPhaseShiftGPS(t *testing.T) {
	o := Default()
	o.StaID = "ABCD"
	gi := satsys.Index(satsys.GPS)
	o.TObs[gi] = []string{"C1C", "L1C", "D1C", "S1C", "C2W", "L2W", "D2W", "S2W"}
	o.NObs[gi] = len(o.TObs[gi])
	o.Shift[gi] = make([]float64, len(o.TObs[gi]))

	o.SetPhaseShift()

	assert.Equal(t, -0.25, o.Shift[gi][5]) // L2W
	assert.Equal(t, 0.0, o.Shift[gi][1])   // L1C carries no shift per Annex 23
}

func TestSetPhaseShiftNoopWhenDisabled(t *testing.T) {
	o := Default()
	o.StaID = "ABCD"
	o.PhShift = false
	gi := satsys.Index(satsys.GPS)
	o.TObs[gi] = []string{"L2W"}
	o.NObs[gi] = 1
	o.Shift[gi] = make([]float64, 1)

	o.SetPhaseShift()

	assert.Equal(t, 0.0, o.Shift[gi][0])
}
