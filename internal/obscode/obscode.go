// Package obscode accumulates, during the scan pass, the set of
// observation codes actually present per navigation system and the kinds
// of measurement (pseudorange/phase/doppler/SNR) seen for each, then
// sorts each system's code list by frequency index and tie-break
// priority, grounded on RTKLIB's scan-time code bookkeeping in
// convrnx.go.
package obscode

import "github.com/fxgnss/rnxengine/internal/satsys"

// Type-mask bits ORed into types[sys][i].
const (
	TypeP = 1 << iota
	TypeL
	TypeD
	TypeSNR
)

// maxCodesPerSystem bounds the per-system code table (RTKLIB caps at
// 32 entries).
const maxCodesPerSystem = 32

// Scanner holds per-system code/type tables being accumulated.
type Scanner struct {
	codes [7][]uint8
	types [7][]uint8
}

// New returns an empty scanner.
func New() *Scanner { return &Scanner{} }

// Observe records one band's code and measurement kinds for sys.
func (s *Scanner) Observe(sys int, code uint8, p, l, d float64, snr uint16) {
	if code == 0 {
		return
	}
	idx := satsys.Index(sys)
	if idx < 0 {
		return
	}
	i := -1
	for k, c := range s.codes[idx] {
		if c == code {
			i = k
			break
		}
	}
	if i < 0 {
		if len(s.codes[idx]) >= maxCodesPerSystem {
			return
		}
		s.codes[idx] = append(s.codes[idx], code)
		s.types[idx] = append(s.types[idx], 0)
		i = len(s.codes[idx]) - 1
	}
	var mask uint8
	if p != 0 {
		mask |= TypeP
	}
	if l != 0 {
		mask |= TypeL
	}
	if d != 0 {
		mask |= TypeD
	}
	if snr != 0 {
		mask |= TypeSNR
	}
	s.types[idx][i] |= mask
}

// Codes returns the accumulated codes for sys, in first-seen order until
// Sort has been called and in priority order afterwards.
func (s *Scanner) Codes(sys int) []uint8 {
	idx := satsys.Index(sys)
	if idx < 0 {
		return nil
	}
	return s.codes[idx]
}

// Types returns the type mask for each code in Codes(sys), same order.
func (s *Scanner) Types(sys int) []uint8 {
	idx := satsys.Index(sys)
	if idx < 0 {
		return nil
	}
	return s.types[idx]
}

// Sort orders every system's code list by (freq-index asc, priority
// desc); equal freq-index and equal priority preserves insertion order,
// since nothing else distinguishes two codes tied on both keys.
func (s *Scanner) Sort() {
	for idx, sys := range satsys.Order {
		n := len(s.codes[idx])
		if n < 2 {
			continue
		}
		codes := s.codes[idx]
		types := s.types[idx]
		freqIdx := make([]int, n)
		pri := make([]int, n)
		for i, c := range codes {
			freqIdx[i] = satsys.Code2Idx(sys, c)
			pri[i] = satsys.GetCodePri(sys, c)
		}
		// insertion sort for stability under equal (freqIdx,pri) pairs
		for i := 1; i < n; i++ {
			for j := i; j > 0; j-- {
				if less(freqIdx[j], pri[j], freqIdx[j-1], pri[j-1]) {
					freqIdx[j], freqIdx[j-1] = freqIdx[j-1], freqIdx[j]
					pri[j], pri[j-1] = pri[j-1], pri[j]
					codes[j], codes[j-1] = codes[j-1], codes[j]
					types[j], types[j-1] = types[j-1], types[j]
				} else {
					break
				}
			}
		}
	}
}

func less(freqA, priA, freqB, priB int) bool {
	if freqA != freqB {
		return freqA < freqB
	}
	return priA > priB
}
