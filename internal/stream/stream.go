// Package stream implements the stream-file façade: a
// uniform open/read/close surface over any decoder.Decoder back-end,
// bundled with the per-session station history those reads feed. Half-cycle
// tracking is scan-pass-only bookkeeping (internal/halfcycle is fed
// directly by the session driver's scan loop) and is deliberately not
// wired through this façade, so the convert pass can only ever read a
// fully-resolved tracker, never extend it.
package stream

import (
	"fmt"

	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
	"github.com/fxgnss/rnxengine/internal/station"

	"github.com/fxgnss/rnxengine/decoder"
)

// File wraps one decoder.Decoder instance for the duration of one input
// file, normalising station-ID semantics across RTCM/raw/RINEX back-ends
// and feeding every observation through the station tracker.
type File struct {
	Dec decoder.Decoder

	StaID  int
	EphSat int
	EphSet int
	Time   gtime.Time
	TStart gtime.Time

	Stas *station.Tracker

	// SlipPending is the sticky slip-flag matrix keyed by [sat][band],
	// used by the epoch converter's save/restore-slips steps.
	SlipPending map[[2]int]bool
}

// New returns a File ready to Open, sharing the station tracker across the
// whole session (it must survive across the multiple input files a
// session may process).
func New(dec decoder.Decoder, stas *station.Tracker) *File {
	return &File{
		Dec:         dec,
		StaID:       -1,
		Stas:        stas,
		SlipPending: make(map[[2]int]bool),
	}
}

// Open opens path through the underlying decoder.
func (f *File) Open(path string) error {
	if err := f.Dec.Open(path); err != nil {
		return fmt.Errorf("stream: open %s: %w", path, err)
	}
	return nil
}

// Close closes the underlying decoder.
func (f *File) Close() error { return f.Dec.Close() }

// ReadNext advances the decoder by one record, updating the façade's
// time/ephemeris/station cursors and feeding the station tracker on every
// Obs record.
func (f *File) ReadNext() (decoder.Kind, error) {
	kind, err := f.Dec.Next()
	if err != nil {
		return kind, err
	}
	switch kind {
	case decoder.KindObs, decoder.KindEph, decoder.KindSbas, decoder.KindStaInfo:
		f.Time = f.Dec.Time()
		f.EphSat = f.Dec.EphSat()
		f.EphSet = f.Dec.EphSet()
		f.StaID = f.Dec.StationID()
		if f.TStart.IsZero() && !f.Time.IsZero() {
			f.TStart = f.Time
		}
	}

	switch kind {
	case decoder.KindObs:
		f.observeStation()
	case decoder.KindStaInfo:
		if sta := f.Dec.Sta(); sta != nil {
			f.Stas.UpdateStaInfo(f.StaID, *sta)
		}
	}
	return kind, err
}

func (f *File) observeStation() {
	epoch := f.Dec.Obs()
	if epoch == nil || len(epoch.Data) == 0 {
		return
	}
	f.Stas.UpdateStas(f.StaID, epoch.Time)
}

// SaveSlips marks every band of obs whose LLI carries SLIP in the sticky
// matrix (epoch converter step "save slips").
func (f *File) SaveSlips(obs []rinexdata.ObsD) {
	for i := range obs {
		for band := 0; band < rinexdata.NumBands; band++ {
			if obs[i].LLI[band].Has(rinexdata.LLISlip) {
				f.SlipPending[[2]int{obs[i].Sat - 1, band}] = true
			}
		}
	}
}

// RestoreSlips re-applies any sticky SLIP flag to bands carrying a
// carrier-phase measurement, clearing the sticky entry as it goes (epoch
// converter step "restore slips").
func (f *File) RestoreSlips(obs []rinexdata.ObsD) {
	for i := range obs {
		for band := 0; band < rinexdata.NumBands; band++ {
			k := [2]int{obs[i].Sat - 1, band}
			if obs[i].L[band] != 0 && f.SlipPending[k] {
				obs[i].LLI[band] = obs[i].LLI[band].Set(rinexdata.LLISlip)
				delete(f.SlipPending, k)
			}
		}
	}
}
