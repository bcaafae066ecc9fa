package decoder

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
	"github.com/fxgnss/rnxengine/internal/satsys"
)

// RinexFile decodes a RINEX 3 observation text file back into Epoch
// records, the shape needed for round-trip conversion (R1). It supports
// the subset of the format the engine itself writes: header station
// metadata, per-system "SYS / # / OBS TYPES" lines, and epoch/record
// bodies. Navigation bodies are not parsed (no in-scope component reads
// them back from an already-converted RINEX nav file); Nav() always
// returns an empty table.
type RinexFile struct {
	f   *os.File
	rd  *bufio.Reader
	sta rinexdata.Sta
	nav rinexdata.Nav

	sysObs  map[byte][]string // system letter -> ordered obs-type mnemonics
	lastSys byte

	cur rinexdata.Epoch
}

// NewRinexFile returns an unopened RinexFile decoder.
func NewRinexFile() *RinexFile { return &RinexFile{sysObs: make(map[byte][]string)} }

func (r *RinexFile) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("decoder: open %s: %w", path, err)
	}
	r.f = f
	r.rd = bufio.NewReader(f)
	if err := r.readHeader(); err != nil {
		f.Close()
		return err
	}
	return nil
}

func (r *RinexFile) Close() error {
	if r.f == nil {
		return nil
	}
	return r.f.Close()
}

func (r *RinexFile) readHeader() error {
	for {
		line, err := r.rd.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("decoder: unexpected end of header")
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 60 {
			if strings.Contains(line, "END OF HEADER") {
				return nil
			}
			continue
		}
		label := strings.TrimSpace(line[60:])
		switch {
		case strings.Contains(label, "MARKER NAME"):
			r.sta.Name = strings.TrimSpace(line[:60])
		case strings.Contains(label, "MARKER NUMBER"):
			r.sta.Marker = strings.TrimSpace(line[:20])
		case strings.Contains(label, "REC # / TYPE / VERS"):
			r.sta.RecSN = strings.TrimSpace(line[0:20])
			r.sta.RecType = strings.TrimSpace(line[20:40])
			r.sta.RecVer = strings.TrimSpace(line[40:60])
		case strings.Contains(label, "ANT # / TYPE"):
			r.sta.AntSno = strings.TrimSpace(line[0:20])
			r.sta.AntDes = strings.TrimSpace(line[20:40])
		case strings.Contains(label, "APPROX POSITION XYZ"):
			fields := strings.Fields(line[:60])
			for i := 0; i < 3 && i < len(fields); i++ {
				r.sta.Pos[i], _ = strconv.ParseFloat(fields[i], 64)
			}
		case strings.Contains(label, "ANTENNA: DELTA H/E/N"):
			fields := strings.Fields(line[:60])
			for i := 0; i < 3 && i < len(fields); i++ {
				r.sta.Del[i], _ = strconv.ParseFloat(fields[i], 64)
			}
			r.sta.DelType = 0
		case strings.Contains(label, "SYS / # / OBS TYPES"):
			r.parseObsTypes(line)
		case strings.Contains(label, "END OF HEADER"):
			return nil
		}
	}
}

func (r *RinexFile) parseObsTypes(line string) {
	sysCh := line[0]
	fields := strings.Fields(line[1:60])
	if sysCh != ' ' {
		// first line of a (possibly continued) block: fields[0] is count
		if len(fields) > 0 {
			fields = fields[1:]
		}
		r.sysObs[sysCh] = append(r.sysObs[sysCh], fields...)
		r.lastSys = sysCh
		return
	}
	r.sysObs[r.lastSys] = append(r.sysObs[r.lastSys], fields...)
}

func (r *RinexFile) Next() (Kind, error) {
	line, err := r.rd.ReadString('\n')
	if err != nil && line == "" {
		return KindEOF, nil
	}
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, ">") {
		return KindNone, nil
	}
	fields := strings.Fields(line[1:])
	if len(fields) < 7 {
		return KindError, fmt.Errorf("decoder: malformed epoch line %q", line)
	}
	var ep [6]float64
	for i := 0; i < 6; i++ {
		ep[i], _ = strconv.ParseFloat(fields[i], 64)
	}
	flag, _ := strconv.Atoi(fields[6])
	n := 0
	if len(fields) > 7 {
		n, _ = strconv.Atoi(fields[7])
	}
	r.cur = rinexdata.Epoch{Time: gtime.FromEpoch(ep), Flag: flag}
	for i := 0; i < n; i++ {
		l, err := r.rd.ReadString('\n')
		if err != nil && l == "" {
			break
		}
		l = strings.TrimRight(l, "\r\n")
		r.cur.Data = append(r.cur.Data, r.decodeRecord(l))
	}
	return KindObs, nil
}

func (r *RinexFile) decodeRecord(line string) rinexdata.ObsD {
	var d rinexdata.ObsD
	if len(line) < 3 {
		return d
	}
	satID := strings.TrimSpace(line[:3])
	sys := sysFromLetter(satID[0])
	prn, _ := strconv.Atoi(satID[1:])
	d.Sat = satsys.SatNo(sys, prn)
	types := r.sysObs[satID[0]]
	pos := 3
	for i, t := range types {
		if pos+16 > len(line) {
			break
		}
		field := line[pos : pos+14]
		val, _ := strconv.ParseFloat(strings.TrimSpace(field), 64)
		lli := 0
		if pos+15 <= len(line) {
			if c := line[pos+14]; c >= '0' && c <= '9' {
				lli = int(c - '0')
			}
		}
		band := satsys.Code2Idx(sys, satsys.Obs2Code(t[1:]))
		if band < 0 || band >= rinexdata.NumBands {
			pos += 16
			continue
		}
		switch t[0] {
		case 'C':
			d.P[band] = val
		case 'L':
			d.L[band] = val
			d.LLI[band] = rinexdata.LLI(lli)
		case 'D':
			d.D[band] = val
		case 'S':
			d.SNR[band] = uint16(val * 1000)
		}
		d.Code[band] = satsys.Obs2Code(t[1:])
		_ = i
		pos += 16
	}
	return d
}

func sysFromLetter(c byte) int {
	switch c {
	case 'G':
		return satsys.GPS
	case 'R':
		return satsys.GLO
	case 'E':
		return satsys.GAL
	case 'J':
		return satsys.QZS
	case 'S':
		return satsys.SBS
	case 'C':
		return satsys.CMP
	case 'I':
		return satsys.IRN
	}
	return satsys.None
}

func (r *RinexFile) Time() gtime.Time       { return r.cur.Time }
func (r *RinexFile) EphSat() int            { return 0 }
func (r *RinexFile) EphSet() int            { return 0 }
func (r *RinexFile) StationID() int         { return 0 }
func (r *RinexFile) Obs() *rinexdata.Epoch  { return &r.cur }
func (r *RinexFile) Nav() *rinexdata.Nav    { return &r.nav }
func (r *RinexFile) Sta() *rinexdata.Sta    { return &r.sta }
func (r *RinexFile) Sbas() *rinexdata.SbasMsg { return nil }
