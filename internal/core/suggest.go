package core

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// closeMatches ranks candidates by their Ratcliff/Obershelp similarity to word
// and returns the best n with a ratio of at least cutoff.
//
// Candidates are compared character by character. The cheap upper bounds
// (RealQuickRatio, QuickRatio) are checked before the full ratio so most
// candidates are rejected without computing matching blocks.
func closeMatches(word string, candidates []string, n int, cutoff float64) []string {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		code  string
		score float64
	}

	m := difflib.NewMatcher(nil, splitChars(word))
	var hits []scored
	for _, c := range candidates {
		m.SetSeq1(splitChars(c))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		if score := m.Ratio(); score >= cutoff {
			hits = append(hits, scored{code: c, score: score})
		}
	}

	// Stable sort keeps candidate order for equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if len(hits) > n {
		hits = hits[:n]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.code
	}
	return out
}

func splitChars(s string) []string {
	return strings.Split(s, "")
}
