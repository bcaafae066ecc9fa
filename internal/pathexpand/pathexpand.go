// Package pathexpand expands the %-keyword placeholders the session driver
// accepts in output-file templates, grounded on RTKLIB's
// RepPath/RepPaths.
package pathexpand

import (
	"fmt"
	"math"
	"strings"

	"github.com/fxgnss/rnxengine/internal/gtime"
)

// timeKeywords lists every placeholder that requires a non-zero time to
// resolve; Expand rejects a template containing one of these when t is the
// zero time.
var timeKeywords = []string{
	"%ha", "%hb", "%hc", "%Y", "%y", "%m", "%d", "%h", "%M", "%S",
	"%n", "%W", "%D", "%H", "%t",
}

// Expand replaces keywords in path with values derived from t, station and
// the rover/base ids. rov/base are left untouched if empty. Returns an
// error if the template needs a time keyword but t is zero.
func Expand(path string, t gtime.Time, rov, base string) (string, error) {
	if !strings.Contains(path, "%") {
		return path, nil
	}
	out := path
	if rov != "" {
		out = strings.ReplaceAll(out, "%r", rov)
	}
	if base != "" {
		out = strings.ReplaceAll(out, "%b", base)
	}
	if t.IsZero() {
		for _, kw := range timeKeywords {
			if strings.Contains(out, kw) {
				return "", fmt.Errorf("pathexpand: %s: needs time but none given", path)
			}
		}
		return out, nil
	}

	ep := t.Epoch()
	week, tow := t.GPSWeekTow()
	dow := int(math.Floor(tow / 86400.0))
	ep0 := [6]float64{ep[0], 1, 1, 0, 0, 0}
	doy := int(gtime.Diff(t, gtime.FromEpoch(ep0))/86400.0) + 1

	repl := map[string]string{
		"%ha": fmt.Sprintf("%02d", int(ep[3]/3)*3),
		"%hb": fmt.Sprintf("%02d", int(ep[3]/6)*6),
		"%hc": fmt.Sprintf("%02d", int(ep[3]/12)*12),
		"%Y":  fmt.Sprintf("%04.0f", ep[0]),
		"%y":  fmt.Sprintf("%02.0f", math.Mod(ep[0], 100.0)),
		"%m":  fmt.Sprintf("%02.0f", ep[1]),
		"%d":  fmt.Sprintf("%02.0f", ep[2]),
		"%h":  fmt.Sprintf("%02.0f", ep[3]),
		"%M":  fmt.Sprintf("%02.0f", ep[4]),
		"%S":  fmt.Sprintf("%02.0f", math.Floor(ep[5])),
		"%n":  fmt.Sprintf("%03d", doy),
		"%W":  fmt.Sprintf("%04d", week),
		"%D":  fmt.Sprintf("%d", dow),
		"%H":  string(rune('a' + int(ep[3]))),
		"%t":  fmt.Sprintf("%02d", int(ep[4]/15)*15),
	}
	// Longer keys must be replaced before their single-letter prefixes
	// (e.g. "%ha" before "%h"), so walk in the fixed declaration order.
	for _, kw := range timeKeywords {
		out = strings.ReplaceAll(out, kw, repl[kw])
	}
	return out, nil
}

// ExpandSessions expands path once per session window between ts and te,
// stepping by tunit seconds (minimum 900s, matching RTKLIB's
// reppaths floor), deduplicating consecutive identical results.
func ExpandSessions(path string, ts, te gtime.Time, tunit float64, rov, base string) ([]string, error) {
	if tunit < 900 {
		tunit = 900
	}
	if ts.IsZero() || te.IsZero() {
		p, err := Expand(path, ts, rov, base)
		if err != nil {
			return nil, err
		}
		return []string{p}, nil
	}
	var out []string
	for t := ts; !gtime.Before(te, t); t = gtime.Add(t, tunit) {
		p, err := Expand(path, t, rov, base)
		if err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1] != p {
			out = append(out, p)
		}
	}
	return out, nil
}
