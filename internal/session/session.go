// Package session drives one end-to-end conversion run: it gates the
// navigation-system mask by RINEX version, splits a time range into
// fixed-length sessions, and for each one runs the two-pass scan/convert
// pipeline over stream.File, wiring together obscode, halfcycle, screen,
// station, navroute, sbas and rinexwriter. Grounded on RTKLIB's
// ConvRnx/convrnx_s pair in convrnx.go.
package session

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fxgnss/rnxengine/decoder"
	"github.com/fxgnss/rnxengine/internal/convert"
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/halfcycle"
	"github.com/fxgnss/rnxengine/internal/navroute"
	"github.com/fxgnss/rnxengine/internal/obscode"
	"github.com/fxgnss/rnxengine/internal/pathexpand"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
	"github.com/fxgnss/rnxengine/internal/rnxopt"
	"github.com/fxgnss/rnxengine/internal/sbas"
	"github.com/fxgnss/rnxengine/internal/satsys"
	"github.com/fxgnss/rnxengine/internal/screen"
	"github.com/fxgnss/rnxengine/internal/station"
	"github.com/fxgnss/rnxengine/internal/stream"

	"github.com/fxgnss/rnxengine/rinexwriter"
)

// nOutFile is the number of output file slots, one per navroute.Slot*.
const nOutFile = navroute.SlotSbasLog + 1

// ErrAborted is returned by Run/runSingle when Config.Abort reported true
// mid-session.
var ErrAborted = errors.New("session: aborted")

// Stats counts the records written to each output slot plus external
// events, for one session.
type Stats struct {
	Counts [nOutFile]int
	Events int
}

// Config wires one conversion run. NewDecoder must return a fresh,
// unopened decoder.Decoder each call — runSingle calls it twice per input
// file, once for the scan pass and once for the convert pass.
type Config struct {
	NewDecoder func() decoder.Decoder
	NewWriter  func(path string) (rinexwriter.Writer, error)

	Input  string           // input path template, may contain a glob
	Output [nOutFile]string // output path templates, "" disables that slot

	Opt *rnxopt.Options

	Rover, Base string

	Log   logrus.FieldLogger
	Abort func() bool // polled periodically; nil means never abort
}

// Driver runs a possibly multi-session conversion under one Config.
type Driver struct {
	cfg Config
	id  string
}

// New returns a Driver with a fresh session-correlation id and a
// guaranteed-non-nil logger.
func New(cfg Config) *Driver {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	return &Driver{cfg: cfg, id: uuid.New().String()}
}

// gateNavSys down-projects a navigation-system mask to what a given RINEX
// version can express, mirroring RTKLIB's version switch in ConvRnx.
func gateNavSys(rnxver, navSys int) int {
	const grs = satsys.GPS | satsys.GLO | satsys.SBS
	switch {
	case rnxver <= 210:
		return navSys & grs
	case rnxver <= 211:
		return navSys & (grs | satsys.GAL)
	case rnxver <= 212:
		return navSys & (grs | satsys.GAL | satsys.CMP)
	case rnxver <= 300:
		return navSys & (grs | satsys.GAL)
	case rnxver <= 301:
		return navSys & (grs | satsys.GAL | satsys.CMP)
	case rnxver <= 302:
		return navSys & (grs | satsys.GAL | satsys.CMP | satsys.QZS)
	}
	return navSys
}

// Run executes the configured conversion: a single session if Opt.TS, TE
// or TUnit is unset, otherwise one session per TUnit-second window between
// TS and TE. Opt.TStart/TEnd are updated to the overall first/last
// observation converted, mirroring RTKLIB's ConvRnx contract.
func (d *Driver) Run() ([]Stats, error) {
	opt := *d.cfg.Opt
	opt.NavSys = gateNavSys(opt.RnxVer, opt.NavSys)
	if opt.RnxVer <= 210 {
		opt.FreqType &= 0x3
	}

	log := d.cfg.Log.WithField("run_id", d.id)

	var sessions []*rnxopt.Options
	if opt.TS.IsZero() || opt.TE.IsZero() || opt.TUnit <= 0 {
		o := opt
		o.TStart, o.TEnd = gtime.Time{}, gtime.Time{}
		sessions = append(sessions, &o)
	} else if gtime.Before(opt.TS, opt.TE) {
		tu := 86400.0
		if opt.TUnit < 86400.0 {
			tu = opt.TUnit
		}
		week, tow := opt.TS.GPSWeekTow()
		ts := tu * math.Floor(tow/tu)
		for i := 0; ; i++ {
			winTS := gtime.FromGPSWeekTow(week, ts+float64(i)*tu)
			winTE := gtime.Add(winTS, tu)
			if gtime.Diff(winTS, opt.TE) > -opt.TTol {
				break
			}
			if gtime.Before(winTS, opt.TS) {
				winTS = opt.TS
			}
			if gtime.Diff(winTE, opt.TE) > 0 {
				winTE = opt.TE
			}
			o := opt
			o.TS, o.TE = winTS, winTE
			o.TStart, o.TEnd = gtime.Time{}, gtime.Time{}
			sessions = append(sessions, &o)
		}
	} else {
		return nil, fmt.Errorf("session: TS is not before TE")
	}

	var results []Stats
	var firstStart, lastEnd gtime.Time
	for i, o := range sessions {
		sessNum := 0
		if len(sessions) > 1 {
			sessNum = i + 1
		}
		st, err := d.runSingle(sessNum, o, log)
		if err != nil {
			return results, err
		}
		results = append(results, st)
		if firstStart.IsZero() || (!o.TStart.IsZero() && gtime.Before(o.TStart, firstStart)) {
			firstStart = o.TStart
		}
		if !o.TEnd.IsZero() && gtime.Before(lastEnd, o.TEnd) {
			lastEnd = o.TEnd
		}
	}
	d.cfg.Opt.TStart = firstStart
	d.cfg.Opt.TEnd = lastEnd
	return results, nil
}

// runSingle is the per-session scan-then-convert pipeline, grounded on
// RTKLIB's convrnx_s.
func (d *Driver) runSingle(sessNum int, opt *rnxopt.Options, log logrus.FieldLogger) (Stats, error) {
	log = log.WithField("session", sessNum)

	staname := opt.StaID
	if staname == "" {
		staname = "0000"
	}

	inTmpl, err := pathexpand.Expand(d.cfg.Input, opt.TS, staname, "")
	if err != nil {
		return Stats{}, fmt.Errorf("session: %w", err)
	}
	inputs, err := filepath.Glob(inTmpl)
	if err != nil {
		return Stats{}, fmt.Errorf("session: glob %s: %w", inTmpl, err)
	}
	if len(inputs) == 0 {
		inputs = []string{inTmpl}
	}

	scanner := obscode.New()
	stas := station.New()
	half := halfcycle.New(opt.TTol)
	fcn := opt.GloFcn
	tstart := gtime.Time{}
	for _, in := range inputs {
		if err := d.scanFile(in, opt, scanner, stas, half, &fcn, &tstart); err != nil {
			log.WithError(err).WithField("file", in).Warn("scan pass failed, continuing")
		}
	}
	scanner.Sort()
	opt.PopulateObsTypes(scanner)
	opt.PopulateStationInfo(stas)
	opt.GloFcn = fcn

	refTime := opt.TS
	if refTime.IsZero() {
		refTime = tstart
	}

	rov := staname
	if d.cfg.Rover != "" {
		rov = d.cfg.Rover
	}
	writers, paths, err := d.openOutputs(opt, refTime, rov)
	if err != nil {
		closeOutputs(opt, &rinexdata.Nav{}, writers, paths, &Stats{})
		return Stats{}, err
	}

	var st Stats
	win := screen.NewWindow(opt.TS, opt.TE, opt.TInt, opt.TTol)
	sbasWin := screen.NewWindow(opt.TS, opt.TE, 0, opt.TTol)

	nav := &rinexdata.Nav{GloFCN: fcn}
	if writers[navroute.SlotObs] != nil {
		if err := writers[navroute.SlotObs].WriteObsHeader(opt, nav); err != nil {
			closeOutputs(opt, nav, writers, paths, &st)
			return st, fmt.Errorf("session: write obs header: %w", err)
		}
	}
	if err := writeNavHeaders(opt, nav, writers); err != nil {
		closeOutputs(opt, nav, writers, paths, &st)
		return st, fmt.Errorf("session: write nav header: %w", err)
	}

	records := 0
	var convErr error
	for _, in := range inputs {
		if err := d.convertFile(in, opt, stas, half, win, sbasWin, writers, &st, log, &records); err != nil {
			convErr = err
			break
		}
	}

	if err := closeOutputs(opt, nav, writers, paths, &st); err != nil && convErr == nil {
		return st, err
	}
	return st, convErr
}

func (d *Driver) scanFile(path string, opt *rnxopt.Options, scanner *obscode.Scanner, stas *station.Tracker, half *halfcycle.Tracker, fcn *[32]int, tstart *gtime.Time) error {
	dec := d.cfg.NewDecoder()
	if err := dec.Open(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer dec.Close()

	staID := -1
	for {
		kind, err := dec.Next()
		if err != nil || kind == decoder.KindEOF {
			break
		}
		switch kind {
		case decoder.KindObs, decoder.KindStaInfo:
			staID = dec.StationID()
		}
		if kind == decoder.KindObs {
			epoch := dec.Obs()
			if epoch == nil {
				continue
			}
			if tstart.IsZero() && !epoch.Time.IsZero() {
				*tstart = epoch.Time
			}
			stas.UpdateStas(staID, epoch.Time)
			for i := range epoch.Data {
				o := &epoch.Data[i]
				sys, _ := satsys.Sys(o.Sat)
				if sys == satsys.None {
					continue
				}
				for band := 0; band < rinexdata.NumBands; band++ {
					if o.Code[band] != 0 {
						scanner.Observe(sys, o.Code[band], o.P[band], o.L[band], o.D[band], o.SNR[band])
					}
					half.Observe(o.Sat, band, epoch.Time, o.L[band], o.LLI[band])
				}
			}
		}
		if kind == decoder.KindStaInfo {
			if sta := dec.Sta(); sta != nil {
				stas.UpdateStaInfo(staID, *sta)
			}
		}
		if kind == decoder.KindEph {
			if nav := dec.Nav(); nav != nil {
				for i, f := range nav.GloFCN {
					if f != 0 {
						fcn[i] = f
					}
				}
			}
		}
	}
	return nil
}

func (d *Driver) openOutputs(opt *rnxopt.Options, refTime gtime.Time, staname string) ([nOutFile]rinexwriter.Writer, [nOutFile]string, error) {
	var writers [nOutFile]rinexwriter.Writer
	var paths [nOutFile]string
	for slot, tmpl := range d.cfg.Output {
		if tmpl == "" {
			continue
		}
		path, err := pathexpand.Expand(tmpl, refTime, staname, d.cfg.Base)
		if err != nil {
			return writers, paths, fmt.Errorf("session: output slot %d: %w", slot, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return writers, paths, fmt.Errorf("session: create directory for %s: %w", path, err)
		}
		w, err := d.cfg.NewWriter(path)
		if err != nil {
			return writers, paths, fmt.Errorf("session: open %s: %w", path, err)
		}
		writers[slot] = w
		paths[slot] = path
	}
	return writers, paths, nil
}

// closeOutputs implements §4.J step 10 / §6.2: a slot that never received a
// record is closed and its file removed; the obs/nav slots that did are
// rewound and rewritten with the final header (TObs/TStart/TEnd/AppPos/
// Comment, now fully populated by the convert pass) before closing.
func closeOutputs(opt *rnxopt.Options, nav *rinexdata.Nav, writers [nOutFile]rinexwriter.Writer, paths [nOutFile]string, st *Stats) error {
	var firstErr error
	for slot, w := range writers {
		if w == nil {
			continue
		}
		if st.Counts[slot] == 0 {
			if err := w.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("session: close slot %d: %w", slot, err)
			}
			if paths[slot] != "" {
				os.Remove(paths[slot])
			}
			continue
		}
		if slot == navroute.SlotSbasLog {
			if err := w.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("session: close slot %d: %w", slot, err)
			}
			continue
		}
		if err := w.Rewind(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("session: rewind slot %d: %w", slot, err)
			}
			w.Close()
			continue
		}
		var werr error
		switch {
		case slot == navroute.SlotObs:
			werr = w.WriteObsHeader(opt, nav)
		case slot == navroute.SlotNav && !opt.SepNav:
			werr = w.WriteNavHeader(opt, nav, satsys.None)
		case slot == navroute.SlotNav:
			werr = w.WriteNavHeader(opt, nav, satsys.GPS)
		default:
			werr = w.WriteNavHeader(opt, nav, slotSys[slot])
		}
		if werr != nil && firstErr == nil {
			firstErr = fmt.Errorf("session: rewrite header slot %d: %w", slot, werr)
		}
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("session: close slot %d: %w", slot, err)
		}
	}
	return firstErr
}

// discardWriter stands in for the obs writer when the caller only wants
// navigation output, so the converter still runs its station/half-cycle
// bookkeeping without needing a nil check on every write.
type discardWriter struct{}

func (discardWriter) WriteObsHeader(*rnxopt.Options, *rinexdata.Nav) error        { return nil }
func (discardWriter) WriteNavHeader(*rnxopt.Options, *rinexdata.Nav, int) error   { return nil }
func (discardWriter) WriteObsEpoch(*rnxopt.Options, *rinexdata.Epoch) error       { return nil }
func (discardWriter) WriteEvent(*rnxopt.Options, gtime.Time, rinexwriter.Event, string, *rinexdata.Sta, int) error {
	return nil
}
func (discardWriter) WriteEph(*rnxopt.Options, *rinexdata.Eph) error   { return nil }
func (discardWriter) WriteGEph(*rnxopt.Options, *rinexdata.GEph) error { return nil }
func (discardWriter) WriteSEph(*rnxopt.Options, *rinexdata.SEph) error { return nil }
func (discardWriter) WriteSbasLog(*rinexdata.SbasMsg) error            { return nil }
func (discardWriter) Rewind() error                                   { return nil }
func (discardWriter) Close() error                                    { return nil }

func (d *Driver) convertFile(path string, opt *rnxopt.Options, stas *station.Tracker, half *halfcycle.Tracker, win, sbasWin *screen.Window, writers [nOutFile]rinexwriter.Writer, st *Stats, log logrus.FieldLogger, records *int) error {
	f := stream.New(d.cfg.NewDecoder(), stas)
	if err := f.Open(path); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer f.Close()

	obsWriter := writers[navroute.SlotObs]
	if obsWriter == nil {
		obsWriter = discardWriter{}
	}
	conv := convert.New(opt, win, half, stas, obsWriter)

	for {
		*records++
		if d.cfg.Abort != nil && *records%11 == 0 && d.cfg.Abort() {
			log.Warn("conversion aborted by caller")
			return ErrAborted
		}

		kind, err := f.ReadNext()
		if err != nil || kind == decoder.KindEOF {
			break
		}
		switch kind {
		case decoder.KindObs:
			epoch := f.Dec.Obs()
			if epoch == nil {
				continue
			}
			prevEvents := conv.EventCount()
			if err := conv.Convert(f, epoch); err != nil {
				return fmt.Errorf("session: convert: %w", err)
			}
			st.Counts[navroute.SlotObs]++
			st.Events += conv.EventCount() - prevEvents
		case decoder.KindEph:
			if nav := f.Dec.Nav(); nav != nil {
				d.writeNav(opt, nav, writers, st)
			}
		case decoder.KindSbas:
			if msg := f.Dec.Sbas(); msg != nil {
				d.writeSbas(opt, msg, sbasWin, writers, st)
			}
		}
	}
	return nil
}

// slotSys maps a separated-file nav slot back to the single system it
// carries, for header labelling.
var slotSys = map[int]int{
	navroute.SlotGNav: satsys.GLO,
	navroute.SlotHNav: satsys.SBS,
	navroute.SlotQNav: satsys.QZS,
	navroute.SlotLNav: satsys.GAL,
	navroute.SlotCNav: satsys.CMP,
	navroute.SlotINav: satsys.IRN,
}

// writeNavHeaders emits one RINEX nav header per opened nav output slot:
// a single mixed-system header in combined mode, or one per-system header
// per separated slot.
func writeNavHeaders(opt *rnxopt.Options, nav *rinexdata.Nav, writers [nOutFile]rinexwriter.Writer) error {
	if !opt.SepNav {
		if w := writers[navroute.SlotNav]; w != nil {
			return w.WriteNavHeader(opt, nav, satsys.None)
		}
		return nil
	}
	if w := writers[navroute.SlotNav]; w != nil {
		if err := w.WriteNavHeader(opt, nav, satsys.GPS); err != nil {
			return err
		}
	}
	for slot, sys := range slotSys {
		if w := writers[slot]; w != nil {
			if err := w.WriteNavHeader(opt, nav, sys); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Driver) writeNav(opt *rnxopt.Options, nav *rinexdata.Nav, writers [nOutFile]rinexwriter.Writer, st *Stats) {
	for i := range nav.Ephs {
		e := &nav.Ephs[i]
		if e.IsSentinel() || opt.Excluded(e.Sat) {
			continue
		}
		sys, _ := satsys.Sys(e.Sat)
		if !opt.SysEnabled(sys) || !navroute.InWindow(sys, e.Toe, opt.TS, opt.TE) {
			continue
		}
		slot := navroute.Route(sys, opt.SepNav)
		if w := writers[slot]; w != nil {
			if err := w.WriteEph(opt, e); err == nil {
				st.Counts[slot]++
			}
		}
	}
	for i := range nav.Geph {
		g := &nav.Geph[i]
		if g.IsSentinel() || opt.Excluded(g.Sat) || !opt.SysEnabled(satsys.GLO) || !navroute.InWindow(satsys.GLO, g.Toe, opt.TS, opt.TE) {
			continue
		}
		slot := navroute.Route(satsys.GLO, opt.SepNav)
		if w := writers[slot]; w != nil {
			if err := w.WriteGEph(opt, g); err == nil {
				st.Counts[slot]++
			}
		}
	}
	for i := range nav.Seph {
		s := &nav.Seph[i]
		if s.IsSentinel() || opt.Excluded(s.Sat) || !opt.SysEnabled(satsys.SBS) || !navroute.InWindow(satsys.SBS, s.T0, opt.TS, opt.TE) {
			continue
		}
		slot := navroute.Route(satsys.SBS, opt.SepNav)
		if w := writers[slot]; w != nil {
			if err := w.WriteSEph(opt, s); err == nil {
				st.Counts[slot]++
			}
		}
	}
}

// writeSbas screens an SBAS message against the session time window, the
// satellite exclude set and the t_end_seen duplicate guard (same mechanism
// as the nav ephemeris screen, §4.I), then dispatches it to the log slot.
func (d *Driver) writeSbas(opt *rnxopt.Options, msg *rinexdata.SbasMsg, win *screen.Window, writers [nOutFile]rinexwriter.Writer, st *Stats) {
	sys, sat, ok := sbas.Classify(msg.Prn)
	if !ok || !opt.SysEnabled(sys) || opt.Excluded(sat) {
		return
	}
	t := sbas.Time(msg.Week, msg.Tow)
	if !opt.TS.IsZero() && gtime.Before(t, opt.TS) {
		return
	}
	if !opt.TE.IsZero() && gtime.Before(opt.TE, t) {
		return
	}
	if win.Duplicate(t) {
		return
	}
	win.Advance(t)
	if w := writers[navroute.SlotSbasLog]; w != nil {
		if err := w.WriteSbasLog(msg); err == nil {
			st.Counts[navroute.SlotSbasLog]++
		}
	}
}
