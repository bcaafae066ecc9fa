// Package rnxopt holds the RINEX output options the session driver
// populates before a conversion run: version/system/frequency
// selection, header metadata, phase-shift and code-mask tables, and the
// YAML config loader the CLI front-end uses.
package rnxopt

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/satsys"
)

// MaxObsType is the largest number of obs-type mnemonics tracked per system.
const MaxObsType = 64

// MaxComment is the largest number of free-text header comment lines kept.
const MaxComment = 100

// Options mirrors RTKLIB's RnxOpt: one value populated per conversion
// session and handed unchanged to the writer.
type Options struct {
	TS, TE gtime.Time // session time window; TE zero means "open ended"
	TInt   float64    `validate:"gte=0"` // sampling interval, 0 = keep all epochs
	TTol   float64    `validate:"gte=0"` // epoch-match tolerance (s)
	TUnit  float64    `validate:"gte=0"` // multi-session file-split unit (s), 0 = single file

	RnxVer   int `validate:"oneof=210 211 212 300 301 302 303 304"`
	NavSys   int `validate:"required"`
	ObsType  int
	FreqType int

	Mask [7][satsys.MaxCode]bool // per-system, per-code output mask

	StaID      string `validate:"required"`
	Prog       string
	RunBy      string
	Marker     string
	MarkerNo   string
	MarkerType string
	Observer   [2]string // observer, agency
	Receiver   [3]string // number, type, firmware version
	Antenna    [3]string // number, type, unused
	AppPos     [3]float64
	AntDel     [3]float64 // h, e, n
	GloCPBias  [4]float64
	Comment    []string
	RcvOpt     string
	ExSats     map[int]bool
	GloFcn     [32]int

	OutIono    bool
	OutTime    bool
	OutLeaps   bool
	AutoPos    bool
	PhShift    bool
	HalfCyc    bool
	SepNav     bool

	TStart, TEnd, TRtcm gtime.Time

	TObs  [7][]string
	Shift [7][]float64
	NObs  [7]int
}

// Validate runs struct-tag validation and the option-specific invariants
// RTKLIB's ConvRnx entry checks by hand (non-empty station id,
// non-negative intervals and time tolerance, recognised RINEX version,
// time unit not shorter than the sampling interval).
func (o *Options) Validate() error {
	v := validator.New()
	if err := v.Struct(o); err != nil {
		return fmt.Errorf("rnxopt: %w", err)
	}
	if o.TUnit > 0 && o.TUnit < o.TInt {
		return fmt.Errorf("rnxopt: time unit %.3f shorter than sampling interval %.3f", o.TUnit, o.TInt)
	}
	return nil
}

// IsVer3 reports whether the configured RINEX version is the 3.xx series.
func (o *Options) IsVer3() bool { return o.RnxVer >= 300 }

// SysEnabled reports whether sys is part of the configured navigation
// system mask.
func (o *Options) SysEnabled(sys int) bool { return o.NavSys&sys != 0 }

// ExcludeSat marks sat as excluded from output.
func (o *Options) ExcludeSat(sat int) {
	if o.ExSats == nil {
		o.ExSats = make(map[int]bool)
	}
	o.ExSats[sat] = true
}

// Excluded reports whether sat has been excluded.
func (o *Options) Excluded(sat int) bool { return o.ExSats != nil && o.ExSats[sat] }

// Default returns an Options populated with RTKLIB's historical
// defaults: RINEX 3.04, all seven systems, phase-shift and half-cycle
// correction on, auto-position off.
func Default() *Options {
	o := &Options{
		RnxVer:   304,
		NavSys:   satsys.All,
		ObsType:  0xFF,
		FreqType: 0xFF,
		TTol:     0.005,
		PhShift:  true,
		HalfCyc:  true,
		OutIono:  true,
		OutTime:  true,
		OutLeaps: true,
	}
	for i := range o.TObs {
		o.TObs[i] = make([]string, 0, MaxObsType)
		o.Shift[i] = make([]float64, 0, MaxObsType)
	}
	for i := range o.Mask {
		for j := range o.Mask[i] {
			o.Mask[i][j] = true
		}
	}
	return o
}

// fileOptions is the YAML-serialisable projection of Options used by
// rnxopt.Load; it keeps to plain scalar/slice fields so operators can hand
// edit a config without knowing the internal gtime representation.
type fileOptions struct {
	RnxVer     int      `yaml:"rinex_version"`
	NavSys     []string `yaml:"nav_systems"`
	StaID      string   `yaml:"station_id"`
	Marker     string   `yaml:"marker"`
	MarkerNo   string   `yaml:"marker_no"`
	Observer   [2]string `yaml:"observer"`
	Receiver   [3]string `yaml:"receiver"`
	Antenna    [3]string `yaml:"antenna"`
	AppPos     [3]float64 `yaml:"approx_position"`
	AntDel     [3]float64 `yaml:"antenna_delta"`
	TInt       float64  `yaml:"sampling_interval"`
	TTol       float64  `yaml:"time_tolerance"`
	TUnit      float64  `yaml:"session_unit"`
	PhShift    *bool    `yaml:"phase_shift_correction"`
	HalfCyc    *bool    `yaml:"half_cycle_correction"`
	AutoPos    bool     `yaml:"auto_position"`
	Comment    []string `yaml:"comments"`
	RcvOpt     string   `yaml:"receiver_option"`
}

var sysNames = map[string]int{
	"GPS": satsys.GPS, "GLO": satsys.GLO, "GAL": satsys.GAL,
	"QZS": satsys.QZS, "SBS": satsys.SBS, "CMP": satsys.CMP, "IRN": satsys.IRN,
}

// Load reads a YAML config file and returns a validated Options, starting
// from Default() for any field the file omits.
func Load(path string) (*Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rnxopt: read %s: %w", path, err)
	}
	var fo fileOptions
	if err := yaml.Unmarshal(raw, &fo); err != nil {
		return nil, fmt.Errorf("rnxopt: parse %s: %w", path, err)
	}

	o := Default()
	if fo.RnxVer != 0 {
		o.RnxVer = fo.RnxVer
	}
	if len(fo.NavSys) > 0 {
		o.NavSys = satsys.None
		for _, name := range fo.NavSys {
			if m, ok := sysNames[name]; ok {
				o.NavSys |= m
			} else {
				return nil, fmt.Errorf("rnxopt: %s: unknown nav system %q", path, name)
			}
		}
	}
	o.StaID = fo.StaID
	o.Marker = fo.Marker
	o.MarkerNo = fo.MarkerNo
	o.Observer = fo.Observer
	o.Receiver = fo.Receiver
	o.Antenna = fo.Antenna
	o.AppPos = fo.AppPos
	o.AntDel = fo.AntDel
	if fo.TInt > 0 {
		o.TInt = fo.TInt
	}
	if fo.TTol > 0 {
		o.TTol = fo.TTol
	}
	o.TUnit = fo.TUnit
	if fo.PhShift != nil {
		o.PhShift = *fo.PhShift
	}
	if fo.HalfCyc != nil {
		o.HalfCyc = *fo.HalfCyc
	}
	o.AutoPos = fo.AutoPos
	o.Comment = fo.Comment
	o.RcvOpt = fo.RcvOpt

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}
