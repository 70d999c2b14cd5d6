package regex

import (
	"github.com/dekarrin/esox/chars"
)

// Lowered is a regex in lowered form. The tree contains only canonical
// CharSet leaves plus Concat, Alt, Loop, and Void; Literal has been expanded
// to one CharSet per character and CaseOverride has been dissolved into the
// leaves. This is the only form the DFA builder consumes.
type Lowered struct {
	Term Regex
}

// Lowerer lowers regexes and caches the results. Lowering the same regex
// tree under the same case-sensitivity flag twice returns the cached value,
// which matters because literal terminals share a lot of structure.
//
// A Lowerer is not safe for concurrent use; it lives inside a single build
// and is dropped with it.
type Lowerer struct {
	cache map[lowerKey]Lowered
}

type lowerKey struct {
	repr          string
	caseSensitive bool
}

// NewLowerer creates a Lowerer with an empty cache.
func NewLowerer() *Lowerer {
	return &Lowerer{cache: map[lowerKey]Lowered{}}
}

// Lower converts r into lowered form under the given grammar-level
// case-sensitivity flag.
func (lw *Lowerer) Lower(r Regex, caseSensitive bool) Lowered {
	key := lowerKey{repr: r.String(), caseSensitive: caseSensitive}
	if cached, ok := lw.cache[key]; ok {
		return cached
	}

	low := Lowered{Term: lower(r, caseSensitive)}
	lw.cache[key] = low
	return low
}

func lower(r Regex, caseSensitive bool) Regex {
	switch n := r.(type) {
	case CharSet:
		return CharSet{
			Ranges:   chars.Canonicalize(n.Ranges, caseSensitive),
			Inverted: n.Inverted,
		}
	case Literal:
		if len(n) == 0 {
			return Concat{}
		}
		out := make(Concat, 0, len(n))
		for _, c := range string(n) {
			out = append(out, CharSet{
				Ranges: chars.Canonicalize([]chars.Range{chars.Single(c)}, caseSensitive),
			})
		}
		return out
	case Concat:
		out := make(Concat, len(n))
		for i := range n {
			out[i] = lower(n[i], caseSensitive)
		}
		return out
	case Alt:
		out := make(Alt, len(n))
		for i := range n {
			out[i] = lower(n[i], caseSensitive)
		}
		return out
	case Loop:
		return Loop{Term: lower(n.Term, caseSensitive), Min: n.Min, Max: n.Max}
	case CaseOverride:
		return lower(n.Term, n.CaseSensitive)
	case Void:
		return n
	default:
		panic("unknown regex node type")
	}
}
