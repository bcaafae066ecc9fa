package rnxopt

import (
	"fmt"

	"github.com/fxgnss/rnxengine/internal/station"
)

// PopulateStationInfo seeds marker/receiver/antenna/position fields from
// the station history built during the scan pass, grounded on the
// teacher's SetOptSta/SetOptStaList. It picks the first node, oldest first,
// whose interval has not ended before the session start
// (station.Tracker.AtOrBefore). When the tracker holds no node it leaves
// the options unchanged; the decoder's own station record is not
// consulted. Marker, receiver, antenna and antenna delta are filled only
// when the caller left them blank; AppPos is overwritten whenever AutoPos
// is off and the station position is non-zero. When more than one
// station appears in the session it also
// appends the literal "STAID / TIME OF FIRST OBS / TIME OF LAST OBS"
// comment block enumerating every station.
func (o *Options) PopulateStationInfo(stas *station.Tracker) {
	node := stas.AtOrBefore(o.TS)
	if node == nil {
		return
	}
	sta := node.Sta

	if o.Marker == "" && o.MarkerNo == "" {
		o.Marker = sta.Name
		o.MarkerNo = sta.Marker
	}
	if o.Receiver[0] == "" && o.Receiver[1] == "" && o.Receiver[2] == "" {
		o.Receiver[0] = sta.RecSN
		o.Receiver[1] = sta.RecType
		o.Receiver[2] = sta.RecVer
	}
	if o.Antenna[0] == "" && o.Antenna[1] == "" && o.Antenna[2] == "" {
		o.Antenna[0] = sta.AntSno
		o.Antenna[1] = sta.AntDes
		if sta.AntSetup > 0 {
			o.Antenna[2] = fmt.Sprintf("%d", sta.AntSetup)
		}
	}

	if !o.AutoPos && norm3(sta.Pos) > 0 {
		o.AppPos = sta.Pos
	}

	if norm3(o.AntDel) == 0 {
		o.AntDel = AntennaDelta(sta.Del, sta.DelType, sta.Pos, sta.Hgt)
	}

	if len(stas.Nodes) > 1 {
		o.appendStationList(stas)
	}
}

func (o *Options) appendStationList(stas *station.Tracker) {
	if len(o.Comment) >= MaxComment {
		return
	}
	o.Comment = append(o.Comment, fmt.Sprintf("%5s  %22s  %22s", "STAID", "TIME OF FIRST OBS", "TIME OF LAST OBS"))
	for _, n := range stas.Nodes {
		if len(o.Comment) >= MaxComment {
			return
		}
		o.Comment = append(o.Comment, fmt.Sprintf(" %04d  %s  %s", n.StaID, n.TS.Format(2), n.TE.Format(2)))
	}
}
