package gtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochRoundTrip(t *testing.T) {
	ep := [6]float64{2020, 1, 1, 0, 0, 0}
	tm := FromEpoch(ep)
	require.False(t, tm.IsZero())
	got := tm.Epoch()
	assert.Equal(t, ep[0], got[0])
	assert.Equal(t, ep[1], got[1])
	assert.Equal(t, ep[2], got[2])
}

func TestAddAndDiff(t *testing.T) {
	base := FromEpoch([6]float64{2020, 1, 1, 0, 0, 0})
	later := Add(base, 3600)
	assert.InDelta(t, 3600.0, Diff(later, base), 1e-9)
	assert.True(t, Before(base, later))
}

func TestGPSWeekTowRoundTrip(t *testing.T) {
	base := FromEpoch([6]float64{2020, 1, 1, 0, 0, 30.5})
	week, tow := base.GPSWeekTow()
	back := FromGPSWeekTow(week, tow)
	assert.InDelta(t, 0.0, Diff(base, back), 1e-6)
}

func TestMultiSessionWindowsAlignToGPSWeek(t *testing.T) {
	ts := FromEpoch([6]float64{2020, 1, 1, 0, 0, 0})
	te := FromEpoch([6]float64{2020, 1, 1, 3, 0, 0})
	tunit := 3600.0
	week, secStart := ts.GPSWeekTow()
	aligned := tunit * float64(int(secStart/tunit))
	var windows []Time
	for i := 0; ; i++ {
		start := FromGPSWeekTow(week, aligned+float64(i)*tunit)
		if Diff(start, te) > -0.025 {
			break
		}
		windows = append(windows, start)
	}
	require.Len(t, windows, 3)
	assert.InDelta(t, 0.0, Diff(windows[0], ts), 1e-6)
}
