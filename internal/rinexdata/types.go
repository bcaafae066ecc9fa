// Package rinexdata holds the in-memory shapes the conversion engine reads
// from a decoder and hands to a writer: observation records, epoch frames,
// the three ephemeris variants, station metadata and SBAS messages. Only
// the fields the engine itself inspects (for screening, deduplication,
// routing and annotation) are modeled precisely; bulk numerical payloads
// the engine never looks inside (broadcast orbital parameters, SBAS
// correction tables) are kept as opaque arrays since their evaluation is
// an out-of-scope external collaborator.
package rinexdata

import "github.com/fxgnss/rnxengine/internal/gtime"

// NumBands is the number of per-band measurement slots an observation
// record carries (NFREQ + NEXOBS in the source terminology), sized to
// leave room for receiver-specific extended obs codes beyond the three
// core carrier frequencies.
const NumBands = 9

// LLI is the per-observation loss-of-lock indicator bitfield.
type LLI uint8

const (
	LLISlip   LLI = 0x01 // cycle-slip
	LLIHalfC  LLI = 0x02 // half-cycle ambiguity unresolved
	LLIBOCTrk LLI = 0x04 // BOC tracking of an MBOC signal
	LLIHalfA  LLI = 0x40 // half-cycle ambiguity resolved, added 0.5 cyc
	LLIHalfS  LLI = 0x80 // half-cycle ambiguity resolved, subtracted 0.5 cyc
)

// Has reports whether all bits in mask are set in l.
func (l LLI) Has(mask LLI) bool { return l&mask == mask }

// Any reports whether any bit in mask is set in l.
func (l LLI) Any(mask LLI) bool { return l&mask != 0 }

// Set returns l with mask's bits set.
func (l LLI) Set(mask LLI) LLI { return l | mask }

// Clear returns l with mask's bits cleared.
func (l LLI) Clear(mask LLI) LLI { return l &^ mask }

// ObsD is one satellite's observation record at one epoch.
type ObsD struct {
	Time gtime.Time
	Sat  int // dense satellite number, 1-based

	Code [NumBands]uint8   // per-band obs code id (satsys.Obs2Code)
	P    [NumBands]float64 // pseudorange (m)
	L    [NumBands]float64 // carrier phase (cycle)
	D    [NumBands]float64 // doppler (Hz)
	SNR  [NumBands]uint16  // signal strength (0.001 dBHz)
	LLI  [NumBands]LLI

	StdL [NumBands]float32 // carrier-phase std (cycle)
	StdP [NumBands]float32 // pseudorange std (m)
}

// Epoch flag values.
const (
	EpochOK           = 0
	EpochPowerFailure = 1
	// values 2..5 are RINEX event codes (EVENT_*); >=2 means event.
)

// Epoch is one epoch's worth of observation records across all satellites.
type Epoch struct {
	Time  gtime.Time
	Flag  int
	Data  []ObsD
}

// Count returns the number of satellite records in the epoch.
func (e *Epoch) Count() int {
	if e == nil {
		return 0
	}
	return len(e.Data)
}

// Eph is a Keplerian broadcast ephemeris (GPS/GAL/QZS/CMP/IRN).
type Eph struct {
	Sat  int
	Set  int // 0/1, distinguishes dual message sets (e.g. GAL I/NAV vs F/NAV)
	Iode int
	Iodc int
	Toe  gtime.Time
	Toc  gtime.Time
	SVH  int
	Params [32]float64 // opaque orbital/clock parameters, not evaluated here
}

// IsSentinel reports whether e is the "never broadcast" placeholder the
// scan pass clears ephemeris slots to.
func (e *Eph) IsSentinel() bool { return e.Sat == 0 && e.Iode == -1 && e.Iodc == -1 }

// GEph is a GLONASS broadcast frame, indexed by slot.
type GEph struct {
	Sat    int
	Iode   int
	Frq    int // frequency channel number (-7..+6)
	Toe    gtime.Time
	Tof    gtime.Time
	SVH    int
	Params [16]float64
}

func (g *GEph) IsSentinel() bool { return g.Sat == 0 && g.Iode == -1 }

// SEph is an SBAS short-term correction ephemeris, indexed by PRN offset.
type SEph struct {
	Sat    int
	T0     gtime.Time
	Tof    gtime.Time
	SVA    int
	Params [8]float64
}

func (s *SEph) IsSentinel() bool { return s.Sat == 0 }

// Nav bundles the navigation-data tables the engine routes records
// through: Keplerian ephemerides (two sets per satellite), GLONASS frames
// and SBAS ephemerides, plus the harvested GLONASS FCN table.
type Nav struct {
	Ephs    []Eph           // indexed sat-1 + MaxSat*set
	Geph    []GEph          // indexed by slot (prn-1)
	Seph    []SEph          // indexed by prn-MinPRNSBS
	GloFCN  [32]int         // frq+8 per GLONASS slot, 0 = unknown
}

// SbasMsg is one raw SBAS message.
type SbasMsg struct {
	Week int
	Tow  float64
	Prn  int
	Data [29]byte // 250-bit SBAS message payload, opaque to the engine
}

// Sta is station/receiver/antenna metadata.
type Sta struct {
	Name     string     // marker name
	Marker   string      // marker number
	AntDes   string      // antenna descriptor
	AntSno   string      // antenna serial number
	RecType  string      // receiver type descriptor
	RecVer   string      // receiver firmware version
	RecSN    string      // receiver serial number
	AntSetup int         // antenna setup id
	DelType  int         // 0: ENU, 1: XYZ
	Pos      [3]float64  // station position, ECEF (m)
	Del      [3]float64  // antenna delta, ENU or XYZ depending on DelType (m)
	Hgt      float64     // antenna height (m)
}

// IsZero reports whether sta carries no identifying information.
func (s *Sta) IsZero() bool {
	return s == nil || (s.Name == "" && s.Marker == "" && s.RecSN == "")
}

// Norm3 returns the Euclidean norm of a 3-vector.
func Norm3(v [3]float64) float64 {
	return sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	// Newton's method; avoids importing math for a single call site while
	// keeping this package dependency-free. A fixed 40 iterations from
	// z = x converge for the position-scale magnitudes (meters) this is
	// used on.
	z := x
	for i := 0; i < 40; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}
