package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxgnss/rnxengine/decoder"
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/navroute"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
	"github.com/fxgnss/rnxengine/internal/rnxopt"
	"github.com/fxgnss/rnxengine/internal/satsys"

	"github.com/fxgnss/rnxengine/rinexwriter"
)

func TestGateNavSysDownProjectsByVersion(t *testing.T) {
	full := satsys.All
	assert.Equal(t, satsys.GPS|satsys.GLO|satsys.SBS, gateNavSys(210, full))
	assert.Equal(t, satsys.GPS|satsys.GLO|satsys.SBS|satsys.GAL, gateNavSys(211, full))
	assert.Equal(t, full, gateNavSys(304, full))
}

// recordingWriter is an in-memory rinexwriter.Writer that counts calls
// instead of touching the filesystem, standing in for rinexwriter.Text in
// tests.
type recordingWriter struct {
	obsHeaders int
	navHeaders int
	obsEpochs  int
	ephs       int
	gephs      int
	sephs      int
	sbasLogs   int
	events     int
	closed     bool
}

func (w *recordingWriter) WriteObsHeader(*rnxopt.Options, *rinexdata.Nav) error {
	w.obsHeaders++
	return nil
}
func (w *recordingWriter) WriteNavHeader(*rnxopt.Options, *rinexdata.Nav, int) error {
	w.navHeaders++
	return nil
}
func (w *recordingWriter) WriteObsEpoch(*rnxopt.Options, *rinexdata.Epoch) error {
	w.obsEpochs++
	return nil
}
func (w *recordingWriter) WriteEvent(*rnxopt.Options, gtime.Time, rinexwriter.Event, string, *rinexdata.Sta, int) error {
	w.events++
	return nil
}
func (w *recordingWriter) WriteEph(*rnxopt.Options, *rinexdata.Eph) error   { w.ephs++; return nil }
func (w *recordingWriter) WriteGEph(*rnxopt.Options, *rinexdata.GEph) error { w.gephs++; return nil }
func (w *recordingWriter) WriteSEph(*rnxopt.Options, *rinexdata.SEph) error { w.sephs++; return nil }
func (w *recordingWriter) WriteSbasLog(*rinexdata.SbasMsg) error            { w.sbasLogs++; return nil }
func (w *recordingWriter) Rewind() error                                   { return nil }
func (w *recordingWriter) Close() error                                    { w.closed = true; return nil }

func baseOpt() *rnxopt.Options {
	o := rnxopt.Default()
	o.StaID = "ABCD"
	o.NavSys = satsys.GPS
	return o
}

func TestRunSingleSessionWritesObsEpochsAndHeader(t *testing.T) {
	t0 := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	t1 := gtime.Add(t0, 30)
	events := []decoder.Event{
		{Kind: decoder.KindObs, Time: t0, StaIDVal: 1, Obs: &rinexdata.Epoch{
			Time: t0, Data: []rinexdata.ObsD{{Sat: satsys.SatNo(satsys.GPS, 1), Code: [rinexdata.NumBands]uint8{satsys.Obs2Code("1C")}, L: [rinexdata.NumBands]float64{1234.5}}},
		}},
		{Kind: decoder.KindObs, Time: t1, StaIDVal: 1, Obs: &rinexdata.Epoch{
			Time: t1, Data: []rinexdata.ObsD{{Sat: satsys.SatNo(satsys.GPS, 1), Code: [rinexdata.NumBands]uint8{satsys.Obs2Code("1C")}, L: [rinexdata.NumBands]float64{1234.6}}},
		}},
	}

	rec := &recordingWriter{}
	opt := baseOpt()
	var out [nOutFile]string
	out[navroute.SlotObs] = "out.obs"

	d := New(Config{
		NewDecoder: func() decoder.Decoder { return decoder.NewSynthetic(events) },
		NewWriter:  func(string) (rinexwriter.Writer, error) { return rec, nil },
		Input:      "in.dat",
		Output:     out,
		Opt:        opt,
	})

	results, err := d.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Counts[navroute.SlotObs])
	assert.Equal(t, 2, rec.obsHeaders)
	assert.Equal(t, 2, rec.obsEpochs)
	assert.True(t, rec.closed)
	assert.Equal(t, t0, opt.TStart)
	assert.Equal(t, t1, opt.TEnd)
}

func TestRunRoutesEphemerisToNavSlot(t *testing.T) {
	t0 := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	events := []decoder.Event{
		{Kind: decoder.KindEph, Time: t0, Nav: &rinexdata.Nav{
			Ephs: []rinexdata.Eph{{Sat: satsys.SatNo(satsys.GPS, 1), Iode: 1, Iodc: 1, Toe: t0}},
		}},
	}

	rec := &recordingWriter{}
	opt := baseOpt()
	var out [nOutFile]string
	out[navroute.SlotNav] = "out.nav"

	d := New(Config{
		NewDecoder: func() decoder.Decoder { return decoder.NewSynthetic(events) },
		NewWriter:  func(string) (rinexwriter.Writer, error) { return rec, nil },
		Input:      "in.dat",
		Output:     out,
		Opt:        opt,
	})

	results, err := d.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Counts[navroute.SlotNav])
	assert.Equal(t, 1, rec.ephs)
	assert.Equal(t, 2, rec.navHeaders)
}

func TestRunAbortStopsConversion(t *testing.T) {
	t0 := gtime.FromEpoch([6]float64{2021, 1, 1, 0, 0, 0})
	var events []decoder.Event
	for i := 0; i < 50; i++ {
		tn := gtime.Add(t0, float64(i))
		events = append(events, decoder.Event{Kind: decoder.KindObs, Time: tn, StaIDVal: 1, Obs: &rinexdata.Epoch{
			Time: tn, Data: []rinexdata.ObsD{{Sat: satsys.SatNo(satsys.GPS, 1)}},
		}})
	}

	rec := &recordingWriter{}
	opt := baseOpt()
	var out [nOutFile]string
	out[navroute.SlotObs] = "out.obs"

	calls := 0
	d := New(Config{
		NewDecoder: func() decoder.Decoder { return decoder.NewSynthetic(events) },
		NewWriter:  func(string) (rinexwriter.Writer, error) { return rec, nil },
		Input:      "in.dat",
		Output:     out,
		Opt:        opt,
		Abort: func() bool {
			calls++
			return calls > 1
		},
	})

	_, err := d.Run()
	assert.ErrorIs(t, err, ErrAborted)
}
