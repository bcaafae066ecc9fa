// Package convert implements the epoch converter: the
// per-obs-epoch pipeline that screens, deduplicates, resolves slips and
// half-cycle ambiguities, emits station-transition events, and finally
// writes the record through the RINEX writer contract. The step order
// below is contractual.
package convert

import (
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/halfcycle"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
	"github.com/fxgnss/rnxengine/internal/rnxopt"
	"github.com/fxgnss/rnxengine/internal/screen"
	"github.com/fxgnss/rnxengine/internal/station"
	"github.com/fxgnss/rnxengine/internal/stream"

	"github.com/fxgnss/rnxengine/rinexwriter"
)

// Converter drives one session's obs output file.
type Converter struct {
	Opt    *rnxopt.Options
	Window *screen.Window
	Half   *halfcycle.Tracker
	Stas   *station.Tracker
	Writer rinexwriter.Writer

	prevStaID  int // -1: no station seen yet
	eventCount int
}

// New returns a Converter in its initial state (no station seen yet).
func New(opt *rnxopt.Options, window *screen.Window, half *halfcycle.Tracker, stas *station.Tracker, w rinexwriter.Writer) *Converter {
	return &Converter{Opt: opt, Window: window, Half: half, Stas: stas, Writer: w, prevStaID: -1}
}

// EventCount returns the number of external-event (flag==5) records
// converted so far.
func (c *Converter) EventCount() int { return c.eventCount }

// Convert runs the 12-step pipeline on one decoded obs epoch from f,
// writing through c.Writer as appropriate. A nil or empty epoch is a
// silent no-op (step 1).
func (c *Converter) Convert(f *stream.File, epoch *rinexdata.Epoch) error {
	if epoch == nil || len(epoch.Data) == 0 {
		return nil
	}
	t := epoch.Time // step 2

	if c.Window.Duplicate(t) { // step 3
		return nil
	}

	f.SaveSlips(epoch.Data) // step 4

	if !c.Window.Pass(t) { // step 5
		return nil
	}

	f.RestoreSlips(epoch.Data) // step 6

	if err := c.handleStationTransition(f, t, epoch.Data); err != nil { // step 7
		return err
	}

	if c.Opt.HalfCyc { // step 8
		for i := range epoch.Data {
			c.Half.Resolve(&epoch.Data[i])
		}
	}

	if err := c.Writer.WriteObsEpoch(c.Opt, epoch); err != nil { // step 9
		return err
	}
	c.Window.Advance(t)

	if epoch.Flag == 5 { // step 10
		c.eventCount++
	}
	epoch.Flag = 0 // step 11

	if c.Opt.TStart.IsZero() { // step 12
		c.Opt.TStart = t
	}
	c.Opt.TEnd = t
	return nil
}

func (c *Converter) handleStationTransition(f *stream.File, t gtime.Time, data []rinexdata.ObsD) error {
	staID := f.StaID
	if !station.TransitionEmitted(c.prevStaID, staID) {
		c.prevStaID = staID
		return nil
	}
	node := c.Stas.MostRecentForID(c.prevStaID)
	var sta *rinexdata.Sta
	if node != nil {
		sta = &node.Sta
	}
	if err := c.Writer.WriteEvent(c.Opt, t, rinexwriter.EventNewSite, c.Opt.Marker, sta, c.prevStaID); err != nil {
		return err
	}
	for i := range data {
		for band := 0; band < rinexdata.NumBands; band++ {
			if data[i].L[band] != 0 {
				data[i].LLI[band] = data[i].LLI[band].Set(rinexdata.LLISlip)
			}
		}
	}
	c.prevStaID = staID
	return nil
}
