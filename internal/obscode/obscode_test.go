package obscode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxgnss/rnxengine/internal/satsys"
)

func TestObserveAccumulatesCodesAndTypes(t *testing.T) {
	s := New()
	c1C := satsys.Obs2Code("1C")
	c2W := satsys.Obs2Code("2W")

	s.Observe(satsys.GPS, c1C, 100, 200, 0, 450)
	s.Observe(satsys.GPS, c2W, 100, 0, 0, 0)
	s.Observe(satsys.GPS, c1C, 0, 0, 5, 0) // repeat code, adds doppler

	codes := s.Codes(satsys.GPS)
	require.Len(t, codes, 2)
	assert.Equal(t, c1C, codes[0])
	assert.Equal(t, c2W, codes[1])

	types := s.Types(satsys.GPS)
	assert.Equal(t, TypeP|TypeL|TypeSNR|TypeD, types[0])
	assert.Equal(t, TypeP, types[1])
}

func TestObserveIgnoresUnrecognisedSystem(t *testing.T) {
	s := New()
	s.Observe(satsys.None, satsys.Obs2Code("1C"), 1, 1, 0, 0)
	assert.Empty(t, s.Codes(satsys.GPS))
}

func TestSortOrdersByFreqThenPriorityStably(t *testing.T) {
	s := New()
	// 2W (freq idx 1) observed before 1C (freq idx 0): sort must reorder
	// by frequency regardless of observation order.
	s.Observe(satsys.GPS, satsys.Obs2Code("2W"), 1, 1, 0, 0)
	s.Observe(satsys.GPS, satsys.Obs2Code("1C"), 1, 1, 0, 0)
	s.Observe(satsys.GPS, satsys.Obs2Code("1P"), 1, 1, 0, 0) // same freq as 1C, lower priority

	s.Sort()
	codes := s.Codes(satsys.GPS)
	require.Len(t, codes, 3)
	assert.Equal(t, satsys.Obs2Code("1C"), codes[0]) // highest priority at freq 0
	assert.Equal(t, satsys.Obs2Code("1P"), codes[1])
	assert.Equal(t, satsys.Obs2Code("2W"), codes[2])
}
