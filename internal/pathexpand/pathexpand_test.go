package pathexpand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxgnss/rnxengine/internal/gtime"
)

func TestExpandNoKeywordsPassesThrough(t *testing.T) {
	got, err := Expand("plain/path.obs", gtime.Time{}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "plain/path.obs", got)
}

func TestExpandRoverAndDate(t *testing.T) {
	tm := gtime.FromEpoch([6]float64{2021, 6, 15, 13, 0, 0})
	got, err := Expand("%r_%Y%m%d.%yO", tm, "ABCD", "")
	require.NoError(t, err)
	assert.Equal(t, "ABCD_20210615.21O", got)
}

func TestExpandRequiresTimeForTimeKeywords(t *testing.T) {
	_, err := Expand("%Y%m%d.obs", gtime.Time{}, "", "")
	assert.Error(t, err)
}

func TestExpandSessionsStepsByUnit(t *testing.T) {
	ts := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	te := gtime.FromEpoch([6]float64{2021, 1, 1, 2, 0, 0})
	paths, err := ExpandSessions("%Y%m%d%h.obs", ts, te, 3600, "", "")
	require.NoError(t, err)
	assert.Len(t, paths, 3)
}
