package decoder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
	"github.com/fxgnss/rnxengine/internal/rnxopt"
	"github.com/fxgnss/rnxengine/internal/satsys"

	"github.com/fxgnss/rnxengine/rinexwriter"
)

// writeSampleObs grounds the round-trip fixture on the real Text writer
// rather than a hand-built header, so the test tracks the writer's actual
// column layout instead of a guess at it.
func writeSampleObs(t *testing.T, path string) (opt *rnxopt.Options, t0 gtime.Time) {
	t.Helper()

	opt = rnxopt.Default()
	opt.StaID = "ABCD"
	opt.NavSys = satsys.GPS
	gi := satsys.Index(satsys.GPS)
	opt.TObs[gi] = []string{"C1C", "L1C", "D1C", "S1C"}
	opt.NObs[gi] = len(opt.TObs[gi])

	t0 = gtime.FromEpoch([6]float64{2021, 3, 15, 1, 0, 0})
	opt.TStart = t0

	w, err := rinexwriter.NewText(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteObsHeader(opt, &rinexdata.Nav{}))

	sat := satsys.SatNo(satsys.GPS, 5)
	code := satsys.Obs2Code("1C")
	epoch := &rinexdata.Epoch{
		Time: t0,
		Data: []rinexdata.ObsD{{
			Sat:  sat,
			Code: [rinexdata.NumBands]uint8{code},
			P:    [rinexdata.NumBands]float64{20123456.789},
			L:    [rinexdata.NumBands]float64{105764321.123},
			D:    [rinexdata.NumBands]float64{-1234.5},
			SNR:  [rinexdata.NumBands]uint16{45000},
		}},
	}
	require.NoError(t, w.WriteObsEpoch(opt, epoch))
	require.NoError(t, w.Close())
	return opt, t0
}

func TestRinexFileRoundTripsHeaderAndEpoch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.obs")
	_, t0 := writeSampleObs(t, path)

	r := NewRinexFile()
	require.NoError(t, r.Open(path))
	defer r.Close()

	kind, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, KindObs, kind)

	assert.Equal(t, t0, r.Time())
	ep := r.Obs()
	require.Len(t, ep.Data, 1)

	d := ep.Data[0]
	assert.Equal(t, satsys.SatNo(satsys.GPS, 5), d.Sat)
	assert.InDelta(t, 20123456.789, d.P[0], 1e-3)
	assert.InDelta(t, 105764321.123, d.L[0], 1e-3)
	assert.InDelta(t, -1234.5, d.D[0], 1e-3)
	assert.InDelta(t, 45.0, float64(d.SNR[0])/1000.0, 1e-3)

	kind, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, KindEOF, kind)
}

func TestRinexFileParsesMarkerName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample2.obs")
	opt, _ := writeSampleObs(t, path)
	opt.Marker = "SITE1"

	w, err := rinexwriter.NewText(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteObsHeader(opt, &rinexdata.Nav{}))
	require.NoError(t, w.Close())

	r := NewRinexFile()
	require.NoError(t, r.Open(path))
	defer r.Close()

	assert.Equal(t, "SITE1", r.Sta().Name)
}
