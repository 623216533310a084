// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"sort"
	"strings"

	"github.com/pdiddy/landscape-pdf/pkg/types"
)

// SortNatural reorders entries by RelPath using NaturalLess. The sort is
// stable; entries is modified in place, so callers pass their own copy.
func SortNatural(entries []types.ImageEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return NaturalLess(entries[i].RelPath, entries[j].RelPath)
	})
}

// NaturalLess orders strings so that runs of digits compare by numeric value
// ("img2" < "img10") and the remaining text compares case-insensitively. Ties
// fall back to a plain byte comparison.
func NaturalLess(a, b string) bool {
	ca, cb := chunks(a), chunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		x, y := ca[i], cb[i]
		if x == y {
			continue
		}
		// Chunks alternate text, digits, text, ... so index parity fixes the kind.
		if i%2 == 1 {
			if c := compareDigits(x, y); c != 0 {
				return c < 0
			}
			continue
		}
		lx, ly := strings.ToLower(x), strings.ToLower(y)
		if lx != ly {
			return lx < ly
		}
	}
	if len(ca) != len(cb) {
		return len(ca) < len(cb)
	}
	return a < b
}

// chunks splits s into alternating text and digit runs, always starting with
// a (possibly empty) text run.
func chunks(s string) []string {
	var out []string
	start := 0
	inDigits := false
	for i := 0; i < len(s); i++ {
		d := s[i] >= '0' && s[i] <= '9'
		if d != inDigits {
			out = append(out, s[start:i])
			start = i
			inDigits = d
		}
	}
	return append(out, s[start:])
}

// compareDigits compares two digit runs by numeric value without converting
// them, so arbitrarily long runs work.
func compareDigits(x, y string) int {
	x = strings.TrimLeft(x, "0")
	y = strings.TrimLeft(y, "0")
	if len(x) != len(y) {
		if len(x) < len(y) {
			return -1
		}
		return 1
	}
	return strings.Compare(x, y)
}
