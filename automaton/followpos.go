package automaton

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/dekarrin/esox/chars"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/regex"
)

// leaf is one position of the combined regex forest: either a character
// leaf that consumes one character, or an end leaf that marks acceptance of
// one tokenizer symbol.
type leaf struct {
	// character leaves
	ranges   []chars.Range
	inverted bool

	// end leaves
	isEnd    bool
	sym      grammar.SymbolRef
	priority int
	symOrder int
}

// posTree computes nullable, firstpos, lastpos, and followpos over the
// regex forest, assigning a distinct position to every leaf occurrence.
//
// This is the followpos construction of Algorithm 3.36, "Converting a
// regular expression directly to a DFA", from the purple dragon book,
// generalized to a forest with one tagged end leaf per symbol.
type posTree struct {
	leaves    []leaf
	followpos []*bitset.BitSet
}

func (pt *posTree) addLeaf(l leaf) uint {
	pt.leaves = append(pt.leaves, l)
	pt.followpos = append(pt.followpos, bitset.New(8))
	return uint(len(pt.leaves) - 1)
}

// nodeInfo is the result of analyzing one regex node.
type nodeInfo struct {
	nullable bool
	first    *bitset.BitSet
	last     *bitset.BitSet
}

func emptyInfo(nullable bool) nodeInfo {
	return nodeInfo{nullable: nullable, first: bitset.New(8), last: bitset.New(8)}
}

// expandLoops rewrites r so that the only remaining constructs are CharSet,
// Concat, Alt, Void, and unbounded Loop{Min: 0} (Kleene star). Bounded
// repetition is unrolled; a minimum count becomes that many copies in
// front.
func expandLoops(r regex.Regex) regex.Regex {
	switch n := r.(type) {
	case regex.CharSet, regex.Void:
		return n
	case regex.Literal:
		// lowered regexes have no literals left, but expanding one is
		// harmless: treat it as itself.
		return n
	case regex.Concat:
		out := make(regex.Concat, len(n))
		for i := range n {
			out[i] = expandLoops(n[i])
		}
		return out
	case regex.Alt:
		out := make(regex.Alt, len(n))
		for i := range n {
			out[i] = expandLoops(n[i])
		}
		return out
	case regex.Loop:
		term := expandLoops(n.Term)

		var out regex.Concat
		for i := 0; i < n.Min; i++ {
			out = append(out, term)
		}
		if n.Max < 0 {
			out = append(out, regex.Loop{Term: term, Min: 0, Max: -1})
		} else {
			for i := n.Min; i < n.Max; i++ {
				out = append(out, regex.Alt{term, regex.Concat{}})
			}
		}
		if len(out) == 1 {
			return out[0]
		}
		return out
	case regex.CaseOverride:
		// dissolved during lowering; nofin to override anymore.
		return expandLoops(n.Term)
	default:
		panic("unknown regex node type")
	}
}

// analyze computes nullable/firstpos/lastpos for node and fills in
// followpos entries as concatenations and stars are encountered. node must
// already be loop-expanded.
func (pt *posTree) analyze(node regex.Regex) nodeInfo {
	switch n := node.(type) {
	case regex.CharSet:
		if !n.Inverted && len(n.Ranges) == 0 {
			// matches no character at all; same as Void
			return emptyInfo(false)
		}
		p := pt.addLeaf(leaf{ranges: n.Ranges, inverted: n.Inverted})
		info := emptyInfo(false)
		info.first.Set(p)
		info.last.Set(p)
		return info
	case regex.Void:
		return emptyInfo(false)
	case regex.Concat:
		info := emptyInfo(true)
		for _, c := range n {
			ci := pt.analyze(c)

			// followpos: everyfin that can end the left part is followed
			// by whatever can start this child.
			for p, ok := info.last.NextSet(0); ok; p, ok = info.last.NextSet(p + 1) {
				pt.followpos[p].InPlaceUnion(ci.first)
			}

			if info.nullable {
				info.first.InPlaceUnion(ci.first)
			}
			if ci.nullable {
				info.last.InPlaceUnion(ci.last)
			} else {
				info.last = ci.last.Clone()
			}
			info.nullable = info.nullable && ci.nullable
		}
		return info
	case regex.Alt:
		info := emptyInfo(false)
		for _, c := range n {
			ci := pt.analyze(c)
			info.nullable = info.nullable || ci.nullable
			info.first.InPlaceUnion(ci.first)
			info.last.InPlaceUnion(ci.last)
		}
		return info
	case regex.Loop:
		// expandLoops guarantees this is a star
		ci := pt.analyze(n.Term)
		for p, ok := ci.last.NextSet(0); ok; p, ok = ci.last.NextSet(p + 1) {
			pt.followpos[p].InPlaceUnion(ci.first)
		}
		return nodeInfo{nullable: true, first: ci.first, last: ci.last}
	case regex.Literal:
		// only reachable on un-lowered input; expand to chars
		info := emptyInfo(true)
		for _, c := range string(n) {
			ci := pt.analyze(regex.CharSet{Ranges: []chars.Range{chars.Single(c)}})
			for p, ok := info.last.NextSet(0); ok; p, ok = info.last.NextSet(p + 1) {
				pt.followpos[p].InPlaceUnion(ci.first)
			}
			if info.nullable {
				info.first.InPlaceUnion(ci.first)
			}
			info.last = ci.last
			info.nullable = false
		}
		return info
	default:
		panic("unknown regex node type")
	}
}

// hasVariableLength returns whether r contains repetition that makes its
// match length non-constant. Symbols without it get the "fixed literal"
// DFA priority.
func hasVariableLength(r regex.Regex) bool {
	switch n := r.(type) {
	case regex.CharSet, regex.Void:
		return false
	case regex.Literal:
		return false
	case regex.Concat:
		for i := range n {
			if hasVariableLength(n[i]) {
				return true
			}
		}
		return false
	case regex.Alt:
		for i := range n {
			if hasVariableLength(n[i]) {
				return true
			}
		}
		return false
	case regex.Loop:
		return n.Min != n.Max
	case regex.CaseOverride:
		return hasVariableLength(n.Term)
	default:
		panic("unknown regex node type")
	}
}
