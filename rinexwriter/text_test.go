package rinexwriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/rinexdata"
	"github.com/fxgnss/rnxengine/internal/rnxopt"
	"github.com/fxgnss/rnxengine/internal/satsys"
)

func newTestOpt() *rnxopt.Options {
	opt := rnxopt.Default()
	opt.StaID = "ABCD"
	opt.Marker = "ABCD"
	opt.NavSys = satsys.GPS
	gi := satsys.Index(satsys.GPS)
	opt.TObs[gi] = []string{"C1C", "L1C"}
	opt.NObs[gi] = len(opt.TObs[gi])
	return opt
}

func readBack(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestWriteObsHeaderVer3ContainsObsTypesAndEndMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.obs")
	w, err := NewText(path)
	require.NoError(t, err)

	opt := newTestOpt()
	require.NoError(t, w.WriteObsHeader(opt, &rinexdata.Nav{}))
	require.NoError(t, w.Close())

	content := readBack(t, path)
	assert.Contains(t, content, "RINEX VERSION / TYPE")
	assert.Contains(t, content, "SYS / # / OBS TYPES")
	assert.Contains(t, content, "MARKER NAME")
	assert.Contains(t, content, "END OF HEADER")
	assert.True(t, strings.HasPrefix(content, "     3.04"))
}

func TestWriteObsHeaderVer2UsesLegacyObsTypesLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h2.obs")
	w, err := NewText(path)
	require.NoError(t, err)

	opt := newTestOpt()
	opt.RnxVer = 211

	require.NoError(t, w.WriteObsHeader(opt, &rinexdata.Nav{}))
	require.NoError(t, w.Close())

	content := readBack(t, path)
	assert.Contains(t, content, "# / TYPES OF OBSERV")
	assert.NotContains(t, content, "SYS / # / OBS TYPES")
}

func TestWriteObsEpochSkipsExcludedAndDisabledSystems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "e.obs")
	w, err := NewText(path)
	require.NoError(t, err)
	opt := newTestOpt()

	excluded := satsys.SatNo(satsys.GPS, 9)
	opt.ExcludeSat(excluded)

	epoch := &rinexdata.Epoch{
		Time: gtime.FromEpoch([6]float64{2021, 6, 1, 0, 0, 0}),
		Data: []rinexdata.ObsD{
			{Sat: satsys.SatNo(satsys.GPS, 1), Code: [rinexdata.NumBands]uint8{satsys.Obs2Code("1C")}, P: [rinexdata.NumBands]float64{111.0}},
			{Sat: excluded, Code: [rinexdata.NumBands]uint8{satsys.Obs2Code("1C")}, P: [rinexdata.NumBands]float64{222.0}},
			{Sat: satsys.SatNo(satsys.GLO, 2), Code: [rinexdata.NumBands]uint8{satsys.Obs2Code("1C")}, P: [rinexdata.NumBands]float64{333.0}},
		},
	}
	require.NoError(t, w.WriteObsEpoch(opt, epoch))
	require.NoError(t, w.Close())

	content := readBack(t, path)
	assert.Contains(t, content, "G01")
	assert.NotContains(t, content, "G09")
	assert.NotContains(t, content, "R02")
}

func TestWriteEventNewSiteWithoutStaFallsBackToMarkerNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ev.obs")
	w, err := NewText(path)
	require.NoError(t, err)
	opt := newTestOpt()

	require.NoError(t, w.WriteEvent(opt, gtime.Time{}, EventNewSite, opt.Marker, nil, 42))
	require.NoError(t, w.Close())

	content := readBack(t, path)
	assert.Contains(t, content, "EVENT: NEW SITE OCCUPATION")
	assert.Contains(t, content, "0042")
}

func TestWriteNavHeaderIncludesSystemLetter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.nav")
	w, err := NewText(path)
	require.NoError(t, err)
	opt := newTestOpt()

	require.NoError(t, w.WriteNavHeader(opt, &rinexdata.Nav{}, satsys.GLO))
	require.NoError(t, w.Close())

	content := readBack(t, path)
	assert.Contains(t, content, "RINEX VERSION / TYPE")
	require.Greater(t, len(content), 20)
	assert.Equal(t, "R", content[20:21])
}

func TestWriteSbasLogFormatsPayloadAsHex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.log")
	w, err := NewText(path)
	require.NoError(t, err)

	var data [29]byte
	data[0], data[1] = 0x1A, 0xFF
	msg := &rinexdata.SbasMsg{Week: 2160, Tow: 12345.0, Prn: 120, Data: data}
	require.NoError(t, w.WriteSbasLog(msg))
	require.NoError(t, w.Close())

	content := readBack(t, path)
	assert.Contains(t, content, "1A")
	assert.Contains(t, content, "FF")
	assert.Contains(t, content, "120")
}
