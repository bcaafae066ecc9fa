package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fxgnss/rnxengine/internal/gtime"
)

func TestPassWindowBounds(t *testing.T) {
	ts := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	te := gtime.FromEpoch([6]float64{2021, 1, 1, 1, 0, 0})
	w := NewWindow(ts, te, 0, 0.025)

	assert.True(t, w.Pass(ts))
	assert.False(t, w.Pass(gtime.Add(ts, -1)))
	assert.True(t, w.Pass(gtime.Add(te, -0.001)))
	assert.False(t, w.Pass(gtime.Add(te, 0.025)))
}

func TestPassSamplingInterval(t *testing.T) {
	base := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	w := NewWindow(gtime.Time{}, gtime.Time{}, 30, 0.025)
	assert.True(t, w.Pass(base))
	assert.True(t, w.Pass(gtime.Add(base, 30)))
	assert.False(t, w.Pass(gtime.Add(base, 15)))
}

func TestDuplicateGuard(t *testing.T) {
	base := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	w := NewWindow(gtime.Time{}, gtime.Time{}, 0, 0.025)
	assert.False(t, w.Duplicate(base))
	w.Advance(base)
	assert.True(t, w.Duplicate(gtime.Add(base, 0.01)))
	assert.False(t, w.Duplicate(gtime.Add(base, 1)))
}
