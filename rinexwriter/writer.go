// Package rinexwriter defines the writer contract the epoch converter,
// navigation dispatcher, SBAS handler and session driver emit through,
// and ships a concrete RINEX 2/3 text formatter. A production system may
// substitute any other Writer (binary intermediate formats, streaming
// uploaders); the engine only depends on this interface.
package rinexwriter

import (
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
	"github.com/fxgnss/rnxengine/internal/rnxopt"
)

// Event identifies a RINEX event record kind.
type Event int

const (
	EventStartMove Event = 2
	EventNewSite   Event = 3
	EventHeader    Event = 4
	EventExternal  Event = 5
)

// Writer is the output-side contract: header writers are called twice
// per file (once on open with provisional info, once on close with final
// info after the convert pass has populated opt.TObs/TStart/TEnd/etc).
type Writer interface {
	WriteObsHeader(opt *rnxopt.Options, nav *rinexdata.Nav) error
	WriteNavHeader(opt *rnxopt.Options, nav *rinexdata.Nav, sys int) error

	WriteObsEpoch(opt *rnxopt.Options, epoch *rinexdata.Epoch) error
	WriteEvent(opt *rnxopt.Options, time gtime.Time, event Event, staName string, sta *rinexdata.Sta, staID int) error

	WriteEph(opt *rnxopt.Options, eph *rinexdata.Eph) error
	WriteGEph(opt *rnxopt.Options, geph *rinexdata.GEph) error
	WriteSEph(opt *rnxopt.Options, seph *rinexdata.SEph) error

	WriteSbasLog(msg *rinexdata.SbasMsg) error

	// Rewind seeks the underlying output back to the start so the header
	// can be rewritten with final information once the convert pass has
	// populated opt.TObs/TStart/TEnd/AppPos/Comment.
	Rewind() error
	Close() error
}
