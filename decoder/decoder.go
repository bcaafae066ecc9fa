// Package decoder defines the contract the stream-file façade drives, and
// ships two concrete back-ends: a RINEX-input decoder (round-trip and
// reconversion support) and a synthetic decoder used by tests and
// demonstrations to stand in for the out-of-scope RTCM/raw-receiver
// binary decoders. Production RTCM/raw decoders are external
// collaborators that satisfy the same Decoder interface.
package decoder

import (
	"errors"

	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
)

// Kind identifies what a Decoder's last Next() call produced, mirroring
// RTKLIB's input_* return codes.
type Kind int

const (
	KindNone    Kind = 0  // no message decoded yet, keep reading
	KindEOF     Kind = -2
	KindError   Kind = -1
	KindObs     Kind = 1
	KindEph     Kind = 2
	KindSbas    Kind = 3
	KindStaInfo Kind = 5
	KindIonUtc  Kind = 9
)

// ErrNotOpen is returned by Next/Close when called before Open succeeds.
var ErrNotOpen = errors.New("decoder: not open")

// Decoder is the uniform interface the stream-file façade drives over
// RTCM, raw-receiver and RINEX-input back-ends. Open/Close bracket one
// file; Next advances one message at a time. After a Next call returning
// KindObs/KindEph/KindSbas/KindStaInfo, the corresponding accessor
// returns the freshly decoded payload; accessors are only valid until the
// next Next call (the decoder is free to reuse buffers).
type Decoder interface {
	Open(path string) error
	Close() error
	Next() (Kind, error)

	Time() gtime.Time
	EphSat() int
	EphSet() int
	StationID() int

	Obs() *rinexdata.Epoch
	Nav() *rinexdata.Nav
	Sta() *rinexdata.Sta
	Sbas() *rinexdata.SbasMsg
}
