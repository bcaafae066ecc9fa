// Package satsys provides satellite-system identity and observation-code
// tables shared by the scanner, the options populator and the navigation
// dispatcher: system bitmasks, satellite numbering, and the RINEX
// obs-code <-> frequency-index <-> priority tables. It intentionally stops
// at identifiers — no orbit/clock evaluation lives here, that is the
// out-of-scope numerical GNSS model collaborator.
package satsys

// System bitmask values, ORed together to form a navigation-system mask.
const (
	None = 0x00
	GPS  = 0x01
	SBS  = 0x02
	GLO  = 0x04
	GAL  = 0x08
	QZS  = 0x10
	CMP  = 0x20
	IRN  = 0x40
	All  = 0xFF
)

// PRN ranges per system, and the satellite-number offsets derived from them.
const (
	minPRNGPS, maxPRNGPS = 1, 32
	minPRNGLO, maxPRNGLO = 1, 27
	minPRNGAL, maxPRNGAL = 1, 36
	minPRNQZS, maxPRNQZS = 193, 202
	minPRNQZSS, maxPRNQZSS = 183, 191 // QZSS L1S (SBAS-like) PRN range
	minPRNCMP, maxPRNCMP = 1, 63
	minPRNIRN, maxPRNIRN = 1, 14
	MinPRNSBS, MaxPRNSBS = 120, 158

	nSatGPS = maxPRNGPS - minPRNGPS + 1
	nSatGLO = maxPRNGLO - minPRNGLO + 1
	nSatGAL = maxPRNGAL - minPRNGAL + 1
	nSatQZS = maxPRNQZS - minPRNQZS + 1
	nSatCMP = maxPRNCMP - minPRNCMP + 1
	nSatIRN = maxPRNIRN - minPRNIRN + 1
	nSatSBS = MaxPRNSBS - MinPRNSBS + 1

	// MaxSat is the largest satellite number the engine indexes arrays by.
	MaxSat = nSatGPS + nSatGLO + nSatGAL + nSatQZS + nSatCMP + nSatIRN + nSatSBS
)

// MinPRNQZSL1S/MaxPRNQZSL1S are the QZSS L1S-as-SBAS PRN range used when
// classifying SBAS message PRNs.
const (
	MinPRNQZSL1S = minPRNQZSS
	MaxPRNQZSL1S = maxPRNQZSS
)

// Order is the fixed 7-system scan/report ordering used throughout the
// engine: GPS, GLO, GAL, QZS, SBS, CMP, IRN.
var Order = [7]int{GPS, GLO, GAL, QZS, SBS, CMP, IRN}

// Index returns the position of sys within Order, or -1 if sys is not one
// of the seven tracked systems.
func Index(sys int) int {
	for i, s := range Order {
		if s == sys {
			return i
		}
	}
	return -1
}

// SatNo maps a (system, PRN/slot) pair to a dense 1-based satellite number.
func SatNo(sys, prn int) int {
	if prn <= 0 {
		return 0
	}
	switch sys {
	case GPS:
		if prn < minPRNGPS || prn > maxPRNGPS {
			return 0
		}
		return prn - minPRNGPS + 1
	case GLO:
		if prn < minPRNGLO || prn > maxPRNGLO {
			return 0
		}
		return nSatGPS + prn - minPRNGLO + 1
	case GAL:
		if prn < minPRNGAL || prn > maxPRNGAL {
			return 0
		}
		return nSatGPS + nSatGLO + prn - minPRNGAL + 1
	case QZS:
		if prn < minPRNQZS || prn > maxPRNQZS {
			return 0
		}
		return nSatGPS + nSatGLO + nSatGAL + prn - minPRNQZS + 1
	case CMP:
		if prn < minPRNCMP || prn > maxPRNCMP {
			return 0
		}
		return nSatGPS + nSatGLO + nSatGAL + nSatQZS + prn - minPRNCMP + 1
	case IRN:
		if prn < minPRNIRN || prn > maxPRNIRN {
			return 0
		}
		return nSatGPS + nSatGLO + nSatGAL + nSatQZS + nSatCMP + prn - minPRNIRN + 1
	case SBS:
		if prn < MinPRNSBS || prn > MaxPRNSBS {
			return 0
		}
		return nSatGPS + nSatGLO + nSatGAL + nSatQZS + nSatCMP + nSatIRN + prn - MinPRNSBS + 1
	}
	return 0
}

// Sys maps a dense satellite number back to its system and PRN/slot.
func Sys(sat int) (sys, prn int) {
	if sat <= 0 || sat > MaxSat {
		return None, 0
	}
	n := sat
	if n <= nSatGPS {
		return GPS, n + minPRNGPS - 1
	}
	n -= nSatGPS
	if n <= nSatGLO {
		return GLO, n + minPRNGLO - 1
	}
	n -= nSatGLO
	if n <= nSatGAL {
		return GAL, n + minPRNGAL - 1
	}
	n -= nSatGAL
	if n <= nSatQZS {
		return QZS, n + minPRNQZS - 1
	}
	n -= nSatQZS
	if n <= nSatCMP {
		return CMP, n + minPRNCMP - 1
	}
	n -= nSatCMP
	if n <= nSatIRN {
		return IRN, n + minPRNIRN - 1
	}
	n -= nSatIRN
	if n <= nSatSBS {
		return SBS, n + MinPRNSBS - 1
	}
	return None, 0
}

// obscodes is the RINEX 3.04 obs-code table, index 0 reserved for "none".
var obscodes = []string{
	"",
	"1C", "1P", "1W", "1Y", "1M", "1N", "1S", "1L", "1E",
	"1A", "1B", "1X", "1Z", "2C", "2D", "2S", "2L", "2X", "2P",
	"2W", "2Y", "2M", "2N", "5I", "5Q", "5X", "7I", "7Q", "7X",
	"6A", "6B", "6C", "6X", "6Z", "6S", "6L", "8L", "8Q", "8X",
	"2I", "2Q", "6I", "6Q", "3I", "3Q", "3X", "1I", "1Q", "5A",
	"5B", "5C", "9A", "9B", "9C", "9X", "1D", "5D", "5P", "5Z",
	"6E", "7D", "7P", "7Z", "8D", "8P", "4A", "4B", "4X",
}

// MaxCode is the highest valid code index into obscodes/priority tables.
const MaxCode = 68

// Obs2Code maps a 2-char obs-code mnemonic ("1C","2W",...) to its numeric
// code id, or 0 if unrecognised.
func Obs2Code(obs string) uint8 {
	for i := 1; i < len(obscodes); i++ {
		if obscodes[i] == obs {
			return uint8(i)
		}
	}
	return 0
}

// Code2Obs maps a numeric code id back to its 2-char mnemonic.
func Code2Obs(code uint8) string {
	if int(code) >= len(obscodes) {
		return ""
	}
	return obscodes[code]
}

// Code2Idx returns the RINEX frequency-band index (0-based) for a given
// system and code, or -1 if the code has no defined band for that system.
func Code2Idx(sys int, code uint8) int {
	obs := Code2Obs(code)
	if obs == "" {
		return -1
	}
	band := obs[0]
	switch sys {
	case GPS, QZS, SBS:
		switch band {
		case '1':
			return 0
		case '2':
			if sys == SBS {
				return -1
			}
			return 1
		case '5':
			return 2
		case '6':
			if sys == QZS {
				return 3
			}
		}
	case GLO:
		switch band {
		case '1', '4':
			return 0
		case '2', '6':
			return 1
		case '3':
			return 2
		}
	case GAL:
		switch band {
		case '1':
			return 0
		case '7':
			return 1
		case '5':
			return 2
		case '6':
			return 3
		case '8':
			return 4
		}
	case CMP:
		switch band {
		case '1':
			return 0
		case '2':
			return 0
		case '7':
			return 1
		case '5':
			return 2
		case '6':
			return 3
		case '8':
			return 4
		}
	case IRN:
		switch band {
		case '5':
			return 0
		case '9':
			return 1
		}
	}
	return -1
}

// codepris[systemIndex][freqIndex] lists tracking-mode attribute letters in
// descending priority order, used to break ties between multiple codes
// sharing a frequency band.
var codepris = [7][5]string{
	{"CPYWMNSL", "PYWCMNDLSX", "IQX", "", ""},  // GPS
	{"CPABX", "PCABX", "IQX", "", ""},           // GLO
	{"CABXZ", "IQX", "IQX", "ABCXZ", "IQX"},     // GAL
	{"CLSXZ", "LSX", "IQXDPZ", "LSXEZ", ""},     // QZS
	{"C", "IQX", "", "", ""},                    // SBS
	{"IQXDPAN", "IQXDPZ", "DPX", "IQXA", "DPX"}, // BDS
	{"ABCX", "ABCX", "", "", ""},                // IRN
}

// GetCodePri returns the tie-break priority (14=highest, 0=unranked) of
// code within system sys, at its own frequency index.
func GetCodePri(sys int, code uint8) int {
	idx := Index(sys)
	freqIdx := Code2Idx(sys, code)
	if idx < 0 || freqIdx < 0 {
		return 0
	}
	obs := Code2Obs(code)
	if len(obs) < 2 {
		return 0
	}
	attr := obs[1]
	pos := -1
	for i := 0; i < len(codepris[idx][freqIdx]); i++ {
		if codepris[idx][freqIdx][i] == attr {
			pos = i
			break
		}
	}
	if pos < 0 {
		return 0
	}
	return 14 - pos
}

// VerCode is the RINEX-version gating table:
// VerCode[sysIndex][code-1] is the minimum rnxver minor-version digit (as
// a rune '0'-'9', or '.' meaning "never") a code is allowed to appear in.
var VerCode = [7]string{
	"00000000...0.0000000000000..........................................", // GPS
	"00...........0....0..........44.4..........222...................444", // GLO
	"0........0000..........0000000000...000.............................", // GAL
	"2.....22...22..222.....222......2422....................4444........", // QZS
	"0......................000..........................................", // SBS
	".4...4...4.4.....1......441114..1.....41111...........4444..44444...", // BDS
	".........................3......................3333333.............", // IRN
}
