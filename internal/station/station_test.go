package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
)

func TestUpdateStasOpensNewIntervalOnStationChange(t *testing.T) {
	tr := New()
	t0 := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	t1 := gtime.Add(t0, 30)
	t2 := gtime.Add(t0, 60)

	tr.UpdateStas(1, t0)
	tr.UpdateStas(1, t1)
	require.Len(t, tr.Nodes, 1)
	assert.Equal(t, t0, tr.Nodes[0].TS)
	assert.Equal(t, t1, tr.Nodes[0].TE)

	tr.UpdateStas(2, t2)
	require.Len(t, tr.Nodes, 2)
	assert.Equal(t, 2, tr.Head().StaID)
	assert.Equal(t, t2, tr.Head().TS)
}

func TestUpdateStaInfoOnlyAppliesToMatchingHead(t *testing.T) {
	tr := New()
	t0 := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	tr.UpdateStas(1, t0)

	tr.UpdateStaInfo(2, rinexdata.Sta{Name: "WRONG"})
	assert.Empty(t, tr.Head().Sta.Name)

	tr.UpdateStaInfo(1, rinexdata.Sta{Name: "SITE1"})
	assert.Equal(t, "SITE1", tr.Head().Sta.Name)
}

func TestMostRecentForIDFindsLatestMatchingNode(t *testing.T) {
	tr := New()
	t0 := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	t1 := gtime.Add(t0, 30)
	t2 := gtime.Add(t0, 60)

	tr.UpdateStas(1, t0)
	tr.UpdateStas(2, t1)
	tr.UpdateStas(1, t2)

	n := tr.MostRecentForID(1)
	require.NotNil(t, n)
	assert.Equal(t, t2, n.TS)

	assert.Nil(t, tr.MostRecentForID(99))
}

func TestAtOrBeforeReturnsHeadWhenTimeUnset(t *testing.T) {
	tr := New()
	t0 := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	tr.UpdateStas(1, t0)

	assert.Equal(t, tr.Head(), tr.AtOrBefore(gtime.Time{}))
}

func TestAtOrBeforeFindsEarliestQualifyingInterval(t *testing.T) {
	tr := New()
	t0 := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	t1 := gtime.Add(t0, 30)
	t2 := gtime.Add(t0, 3600)

	tr.UpdateStas(1, t0)
	tr.UpdateStas(1, t1) // extends first node's TE to t1
	tr.UpdateStas(2, t2)

	n := tr.AtOrBefore(gtime.Add(t0, 15))
	require.NotNil(t, n)
	assert.Equal(t, 1, n.StaID)
}

func TestTransitionEmittedSkipsInitialSentinel(t *testing.T) {
	assert.False(t, TransitionEmitted(-1, 1))
	assert.True(t, TransitionEmitted(1, 2))
	assert.False(t, TransitionEmitted(1, 1))
}
