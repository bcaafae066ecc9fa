// Package station tracks the station-ID history of one conversion session:
// a list of (staid, ts, te, sta) intervals built as the
// decoder reports observations and station-info records. Per design note
// "linked lists -> owned vectors", RTKLIB's linked Stas list becomes
// an ordered slice, most-recent entry last.
package station

import (
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
)

// Node is one station-ID interval.
type Node struct {
	StaID int
	TS, TE gtime.Time
	Sta    rinexdata.Sta
}

// Tracker holds the ordered history for one session. Head() is the most
// recently opened interval (tracker.Nodes[len-1]).
type Tracker struct {
	Nodes []Node
}

// New returns an empty tracker.
func New() *Tracker { return &Tracker{} }

// Head returns the most recent node, or nil if the tracker is empty.
func (t *Tracker) Head() *Node {
	if len(t.Nodes) == 0 {
		return nil
	}
	return &t.Nodes[len(t.Nodes)-1]
}

// UpdateStas implements update_stas: opens a new interval when staid
// changes from the head's, otherwise extends the head's te.
func (t *Tracker) UpdateStas(staid int, time gtime.Time) {
	h := t.Head()
	if h == nil || h.StaID != staid {
		t.Nodes = append(t.Nodes, Node{StaID: staid, TS: time, TE: time})
		return
	}
	h.TE = time
}

// UpdateStaInfo implements update_stainf: copies sta into the head node
// iff the head's staid matches the currently reported staid. Later calls
// overwrite earlier ones for the same station (last-writer-wins).
func (t *Tracker) UpdateStaInfo(staid int, sta rinexdata.Sta) {
	h := t.Head()
	if h == nil || h.StaID != staid {
		return
	}
	h.Sta = sta
}

// AtOrBefore returns the first node (scanning from the oldest) whose
// interval ends at or after ts, or the head if ts is zero or no node
// qualifies. Used to pick which station's metadata seeds the output
// header when a session start time is configured.
func (t *Tracker) AtOrBefore(ts gtime.Time) *Node {
	if len(t.Nodes) == 0 {
		return nil
	}
	if ts.IsZero() {
		return t.Head()
	}
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if !gtime.Before(n.TE, ts) {
			return n
		}
	}
	return t.Head()
}

// MostRecentForID returns the most recent node carrying staid, or nil if
// none exists. Used by the epoch converter to recover the departing
// station's metadata for a NEW_SITE event, after the tracker has already
// opened the incoming station's node.
func (t *Tracker) MostRecentForID(staid int) *Node {
	for i := len(t.Nodes) - 1; i >= 0; i-- {
		if t.Nodes[i].StaID == staid {
			return &t.Nodes[i]
		}
	}
	return nil
}

// TransitionEmitted reports whether moving from prevStaID to staid should
// emit a NEW_SITE event: every transition except the very first (from the
// sentinel -1) does.
func TransitionEmitted(prevStaID, staid int) bool {
	return prevStaID != staid && prevStaID != -1
}
