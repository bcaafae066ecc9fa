package decoder

import (
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
)

// Event is one record a Synthetic decoder will replay, in order.
type Event struct {
	Kind      Kind
	Time      gtime.Time
	EphSatVal int
	EphSetVal int
	StaIDVal  int

	Obs  *rinexdata.Epoch
	Nav  *rinexdata.Nav
	Sta  *rinexdata.Sta
	Sbas *rinexdata.SbasMsg
}

// Synthetic plays back a fixed Event sequence, standing in for a real
// RTCM/raw-receiver decoder in tests. Open/Close are no-ops beyond
// tracking open state; the path argument is ignored.
type Synthetic struct {
	Events []Event

	open bool
	pos  int
	cur  Event
}

// NewSynthetic returns a Synthetic decoder that will replay events.
func NewSynthetic(events []Event) *Synthetic {
	return &Synthetic{Events: events}
}

func (s *Synthetic) Open(path string) error {
	s.open = true
	s.pos = 0
	return nil
}

func (s *Synthetic) Close() error {
	s.open = false
	return nil
}

func (s *Synthetic) Next() (Kind, error) {
	if !s.open {
		return KindError, ErrNotOpen
	}
	if s.pos >= len(s.Events) {
		return KindEOF, nil
	}
	s.cur = s.Events[s.pos]
	s.pos++
	return s.cur.Kind, nil
}

func (s *Synthetic) Time() gtime.Time       { return s.cur.Time }
func (s *Synthetic) EphSat() int            { return s.cur.EphSatVal }
func (s *Synthetic) EphSet() int            { return s.cur.EphSetVal }
func (s *Synthetic) StationID() int         { return s.cur.StaIDVal }
func (s *Synthetic) Obs() *rinexdata.Epoch  { return s.cur.Obs }
func (s *Synthetic) Nav() *rinexdata.Nav    { return s.cur.Nav }
func (s *Synthetic) Sta() *rinexdata.Sta    { return s.cur.Sta }
func (s *Synthetic) Sbas() *rinexdata.SbasMsg { return s.cur.Sbas }
