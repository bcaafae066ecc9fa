package rinexwriter

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
	"github.com/fxgnss/rnxengine/internal/rnxopt"
	"github.com/fxgnss/rnxengine/internal/satsys"
)

// sysLetter maps a system bitmask to its RINEX one-letter code.
var sysLetter = map[int]byte{
	satsys.GPS: 'G', satsys.GLO: 'R', satsys.GAL: 'E', satsys.QZS: 'J',
	satsys.SBS: 'S', satsys.CMP: 'C', satsys.IRN: 'I',
}

// Text is a RINEX 2/3 observation/navigation/SBAS-log text writer bound
// to a single output file, grounded on RTKLIB's OutRnxObsHeader/
// OutRnxObsBody/OutRnxEvent/OutNavf family in renix.go.
type Text struct {
	f *os.File
	w *bufio.Writer
}

// NewText opens path for writing (truncating any existing content) and
// returns a Text writer over it.
func NewText(path string) (*Text, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("rinexwriter: create %s: %w", path, err)
	}
	return &Text{f: f, w: bufio.NewWriter(f)}, nil
}

// Rewind seeks back to the start of the file so a header can be rewritten
// with final information at session close.
func (t *Text) Rewind() error {
	if err := t.w.Flush(); err != nil {
		return err
	}
	_, err := t.f.Seek(0, io.SeekStart)
	return err
}

func (t *Text) Close() error {
	if err := t.w.Flush(); err != nil {
		t.f.Close()
		return err
	}
	return t.f.Close()
}

func (t *Text) WriteObsHeader(opt *rnxopt.Options, nav *rinexdata.Nav) error {
	ver := "3.04"
	if !opt.IsVer3() {
		ver = "2.11"
	}
	fmt.Fprintf(t.w, "%9s%11s%-20s%-20s%-20s\n", ver, "", "OBSERVATION DATA", "M (MIXED)", "RINEX VERSION / TYPE")
	fmt.Fprintf(t.w, "%-20s%-20s%-20s%-20s\n", opt.Prog, opt.RunBy, "", "PGM / RUN BY / DATE")
	for _, c := range opt.Comment {
		fmt.Fprintf(t.w, "%-60s%-20s\n", c, "COMMENT")
	}
	fmt.Fprintf(t.w, "%-60s%-20s\n", opt.Marker, "MARKER NAME")
	fmt.Fprintf(t.w, "%-20s%-40s%-20s\n", opt.MarkerNo, "", "MARKER NUMBER")
	fmt.Fprintf(t.w, "%-20s%-40s%-20s\n", opt.Observer[0], opt.Observer[1], "OBSERVER / AGENCY")
	fmt.Fprintf(t.w, "%-20s%-20s%-20s%-20s\n", opt.Receiver[0], opt.Receiver[1], opt.Receiver[2], "REC # / TYPE / VERS")
	fmt.Fprintf(t.w, "%-20s%-20s%-20s%-20s\n", opt.Antenna[0], opt.Antenna[1], "", "ANT # / TYPE")
	fmt.Fprintf(t.w, "%14.4f%14.4f%14.4f%-18s%-20s\n", opt.AppPos[0], opt.AppPos[1], opt.AppPos[2], "", "APPROX POSITION XYZ")
	fmt.Fprintf(t.w, "%14.4f%14.4f%14.4f%-18s%-20s\n", opt.AntDel[0], opt.AntDel[1], opt.AntDel[2], "", "ANTENNA: DELTA H/E/N")

	if opt.IsVer3() {
		for i, sys := range satsys.Order {
			if !opt.SysEnabled(sys) || opt.NObs[i] == 0 {
				continue
			}
			t.writeObsTypesVer3(sysLetter[sys], opt.TObs[i])
		}
	} else if opt.NObs[0] > 0 {
		t.writeObsTypesVer2(opt.TObs[0])
	}

	if opt.PhShift {
		t.writePhaseShift(opt)
	}
	if !opt.TStart.IsZero() {
		fmt.Fprintf(t.w, "%s%-20s\n", rnxEpochHeader(opt.TStart), "TIME OF FIRST OBS")
	}
	if !opt.TEnd.IsZero() {
		fmt.Fprintf(t.w, "%s%-20s\n", rnxEpochHeader(opt.TEnd), "TIME OF LAST OBS")
	}
	fmt.Fprintf(t.w, "%-60s%-20s\n", "", "END OF HEADER")
	return t.w.Flush()
}

func rnxEpochHeader(tm gtime.Time) string {
	ep := tm.Epoch()
	return fmt.Sprintf("  %04.0f%6.0f%6.0f%6.0f%6.0f%13.7f     GPS         ",
		ep[0], ep[1], ep[2], ep[3], ep[4], ep[5])
}

func (t *Text) writeObsTypesVer3(sysCh byte, tobs []string) {
	const perLine = 13
	for i := 0; i < len(tobs); i += perLine {
		end := i + perLine
		if end > len(tobs) {
			end = len(tobs)
		}
		line := ""
		prefix := fmt.Sprintf("%c  %3d", sysCh, len(tobs))
		if i > 0 {
			prefix = "      "
		}
		line += prefix
		for _, o := range tobs[i:end] {
			line += fmt.Sprintf(" %3s", o)
		}
		fmt.Fprintf(t.w, "%-60s%-20s\n", line, "SYS / # / OBS TYPES")
	}
}

func (t *Text) writeObsTypesVer2(tobs []string) {
	const perLine = 9
	for i := 0; i < len(tobs); i += perLine {
		end := i + perLine
		if end > len(tobs) {
			end = len(tobs)
		}
		line := ""
		if i == 0 {
			line = fmt.Sprintf("%6d", len(tobs))
		} else {
			line = "      "
		}
		for _, o := range tobs[i:end] {
			line += fmt.Sprintf("%4s  ", o)
		}
		fmt.Fprintf(t.w, "%-60s%-20s\n", line, "# / TYPES OF OBSERV")
	}
}

func (t *Text) writePhaseShift(opt *rnxopt.Options) {
	for i, sys := range satsys.Order {
		if !opt.SysEnabled(sys) {
			continue
		}
		for j, tobs := range opt.TObs[i] {
			if len(tobs) < 1 || tobs[0] != 'L' || j >= len(opt.Shift[i]) || opt.Shift[i][j] == 0 {
				continue
			}
			fmt.Fprintf(t.w, "%c %3s %8.5f%40s%-20s\n", sysLetter[sys], tobs, opt.Shift[i][j], "", "SYS / PHASE SHIFT")
		}
	}
}

func (t *Text) WriteNavHeader(opt *rnxopt.Options, nav *rinexdata.Nav, sys int) error {
	kind := "NAVIGATION DATA"
	sysCh := byte(' ')
	if l, ok := sysLetter[sys]; ok {
		sysCh = l
	}
	fmt.Fprintf(t.w, "%9s%11s%c%-19s%-20s%-20s\n", "3.04", "", sysCh, "", kind, "RINEX VERSION / TYPE")
	fmt.Fprintf(t.w, "%-20s%-20s%-20s%-20s\n", opt.Prog, opt.RunBy, "", "PGM / RUN BY / DATE")
	fmt.Fprintf(t.w, "%-60s%-20s\n", "", "END OF HEADER")
	return t.w.Flush()
}

func (t *Text) WriteObsEpoch(opt *rnxopt.Options, epoch *rinexdata.Epoch) error {
	if epoch.Flag >= 2 {
		return t.writeEventEpoch(opt, epoch)
	}
	ep := epoch.Time.Epoch()

	type rec struct {
		satCode string
		sysIdx  int
		sys     int
		obs     *rinexdata.ObsD
	}
	var recs []rec
	for i := range epoch.Data {
		o := &epoch.Data[i]
		sys, prn := satsys.Sys(o.Sat)
		if sys == satsys.None || opt.Excluded(o.Sat) || !opt.SysEnabled(sys) {
			continue
		}
		idx := satsys.Index(sys)
		if idx < 0 {
			continue
		}
		v := idx
		if !opt.IsVer3() {
			v = 0
		}
		if opt.NObs[v] == 0 {
			continue
		}
		recs = append(recs, rec{satCode: fmt.Sprintf("%c%02d", sysLetter[sys], prn), sysIdx: v, sys: sys, obs: o})
	}
	if len(recs) == 0 {
		return nil
	}

	if opt.IsVer3() {
		fmt.Fprintf(t.w, "> %04.0f %02.0f %02.0f %02.0f %02.0f%11.7f  %d%3d%21s\n",
			ep[0], ep[1], ep[2], ep[3], ep[4], ep[5], epoch.Flag, len(recs), "")
	} else {
		fmt.Fprintf(t.w, " %02d %2.0f %2.0f %2.0f %2.0f%11.7f  %d%3d", int(ep[0])%100, ep[1], ep[2], ep[3], ep[4], ep[5], epoch.Flag, len(recs))
		for _, r := range recs {
			fmt.Fprintf(t.w, "%-3s", r.satCode)
		}
		fmt.Fprint(t.w, "\n")
	}

	for _, r := range recs {
		if opt.IsVer3() {
			fmt.Fprintf(t.w, "%-3s", r.satCode)
		}
		for j, tobs := range opt.TObs[r.sysIdx] {
			code := satsys.Obs2Code(tobs[1:])
			band := satsys.Code2Idx(r.sys, code)
			if band < 0 || band >= rinexdata.NumBands {
				fmt.Fprintf(t.w, "%16s", "")
				continue
			}
			switch tobs[0] {
			case 'C', 'P':
				writeField(t.w, r.obs.P[band], -1)
			case 'L':
				shift := 0.0
				if r.obs.L[band] != 0 && j < len(opt.Shift[r.sysIdx]) {
					shift = opt.Shift[r.sysIdx][j]
				}
				writeField(t.w, r.obs.L[band]+shift, int(r.obs.LLI[band]))
			case 'D':
				writeField(t.w, r.obs.D[band], -1)
			case 'S':
				writeField(t.w, float64(r.obs.SNR[band])/1000.0, -1)
			}
		}
		fmt.Fprint(t.w, "\n")
	}
	return t.w.Flush()
}

func writeField(w io.Writer, val float64, lli int) {
	if val == 0 {
		fmt.Fprintf(w, "%16s", "")
		return
	}
	if lli >= 0 {
		fmt.Fprintf(w, "%14.3f%1d%1s", val, lli&1, "")
	} else {
		fmt.Fprintf(w, "%14.3f%2s", val, "")
	}
}

func (t *Text) writeEventEpoch(opt *rnxopt.Options, epoch *rinexdata.Epoch) error {
	return t.WriteEvent(opt, epoch.Time, Event(epoch.Flag), opt.Marker, nil, 0)
}

func (t *Text) WriteEvent(opt *rnxopt.Options, time gtime.Time, event Event, staName string, sta *rinexdata.Sta, staID int) error {
	switch event {
	case EventStartMove:
		fmt.Fprintf(t.w, "%32s%d%3d\n", "", int(event), 2)
		fmt.Fprintf(t.w, "%-60s%-20s\n", "EVENT: START MOVING ANTENNA", "COMMENT")
		fmt.Fprintf(t.w, "%-60s%-20s\n", opt.Marker, "MARKER NAME")
	case EventNewSite:
		fmt.Fprintf(t.w, "%32s%d%3d\n", "", int(event), 6)
		fmt.Fprintf(t.w, "%-60s%-20s\n", "EVENT: NEW SITE OCCUPATION", "COMMENT")
		if sta == nil {
			fmt.Fprintf(t.w, "%04d%56s%-20s\n", staID, "", "MARKER NAME")
			return t.w.Flush()
		}
		fmt.Fprintf(t.w, "%-60s%-20s\n", sta.Name, "MARKER NAME")
		fmt.Fprintf(t.w, "%-20.20s%-20.20s%-20.20s%-20s\n", sta.RecSN, sta.RecType, sta.RecVer, "REC # / TYPE / VERS")
		fmt.Fprintf(t.w, "%-20.20s%-20.20s%-20s%-20s\n", sta.AntSno, sta.AntDes, "", "ANT # / TYPE")
		fmt.Fprintf(t.w, "%14.4f%14.4f%14.4f%-18s%-20s\n", sta.Pos[0], sta.Pos[1], sta.Pos[2], "", "APPROX POSITION XYZ")
		del := rnxopt.AntennaDelta(sta.Del, sta.DelType, sta.Pos, sta.Hgt)
		fmt.Fprintf(t.w, "%14.4f%14.4f%14.4f%-18s%-20s\n", del[0], del[1], del[2], "", "ANTENNA: DELTA H/E/N")
	case EventExternal:
		ep := time.Epoch()
		fmt.Fprintf(t.w, "> %04.0f %02.0f %02.0f %02.0f %02.0f%11.7f  %d%3d\n", ep[0], ep[1], ep[2], ep[3], ep[4], ep[5], int(event), 0)
	}
	return t.w.Flush()
}

func (t *Text) WriteEph(opt *rnxopt.Options, eph *rinexdata.Eph) error {
	ep := eph.Toc.Epoch()
	sys, prn := satsys.Sys(eph.Sat)
	fmt.Fprintf(t.w, "%c%02d %04.0f %02.0f %02.0f %02.0f %02.0f %02.0f", sysLetter[sys], prn, ep[0], ep[1], ep[2], ep[3], ep[4], ep[5])
	for i := 0; i < 3 && i < len(eph.Params); i++ {
		outNavField(t.w, eph.Params[i])
	}
	fmt.Fprint(t.w, "\n")
	return t.w.Flush()
}

func (t *Text) WriteGEph(opt *rnxopt.Options, geph *rinexdata.GEph) error {
	ep := geph.Toe.Epoch()
	_, prn := satsys.Sys(geph.Sat)
	fmt.Fprintf(t.w, "R%02d %04.0f %02.0f %02.0f %02.0f %02.0f %02.0f\n", prn, ep[0], ep[1], ep[2], ep[3], ep[4], ep[5])
	return t.w.Flush()
}

func (t *Text) WriteSEph(opt *rnxopt.Options, seph *rinexdata.SEph) error {
	ep := seph.T0.Epoch()
	_, prn := satsys.Sys(seph.Sat)
	fmt.Fprintf(t.w, "S%02d %04.0f %02.0f %02.0f %02.0f %02.0f %02.0f\n", prn, ep[0], ep[1], ep[2], ep[3], ep[4], ep[5])
	return t.w.Flush()
}

func (t *Text) WriteSbasLog(msg *rinexdata.SbasMsg) error {
	fmt.Fprintf(t.w, "%4d%10.3f %3d", msg.Week, msg.Tow, msg.Prn)
	for _, b := range msg.Data {
		fmt.Fprintf(t.w, " %02X", b)
	}
	fmt.Fprint(t.w, "\n")
	return t.w.Flush()
}

func outNavField(w io.Writer, v float64) {
	fmt.Fprintf(w, "%19.12E", v)
}
