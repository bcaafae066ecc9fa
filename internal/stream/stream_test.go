package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxgnss/rnxengine/decoder"
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
	"github.com/fxgnss/rnxengine/internal/station"
)

func TestReadNextTracksStationTransitions(t *testing.T) {
	t0 := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	t1 := gtime.Add(t0, 1)
	events := []decoder.Event{
		{Kind: decoder.KindObs, Time: t0, StaIDVal: 1, Obs: &rinexdata.Epoch{Time: t0, Data: []rinexdata.ObsD{{Sat: 1}}}},
		{Kind: decoder.KindObs, Time: t1, StaIDVal: 2, Obs: &rinexdata.Epoch{Time: t1, Data: []rinexdata.ObsD{{Sat: 1}}}},
	}
	f := New(decoder.NewSynthetic(events), station.New())
	require.NoError(t, f.Open(""))
	defer f.Close()

	_, err := f.ReadNext()
	require.NoError(t, err)
	_, err = f.ReadNext()
	require.NoError(t, err)

	require.Len(t, f.Stas.Nodes, 2)
	assert.Equal(t, 1, f.Stas.Nodes[0].StaID)
	assert.Equal(t, 2, f.Stas.Nodes[1].StaID)
}

func TestSaveRestoreSlips(t *testing.T) {
	f := New(decoder.NewSynthetic(nil), station.New())
	obs := []rinexdata.ObsD{{Sat: 5}}
	obs[0].LLI[0] = rinexdata.LLISlip
	f.SaveSlips(obs)

	obs2 := []rinexdata.ObsD{{Sat: 5}}
	obs2[0].L[0] = 1.0
	f.RestoreSlips(obs2)
	assert.True(t, obs2[0].LLI[0].Has(rinexdata.LLISlip))
}
