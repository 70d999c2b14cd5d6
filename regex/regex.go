// Package regex defines the algebraic regular expressions that tokenizer
// symbols are declared with. These are not PCRE-style pattern strings; they
// are plain values built up with combinators, which keeps the set of
// constructs exactly what a DFA can implement and makes the trees easy to
// inspect during construction.
package regex

import (
	"fmt"
	"strings"

	"github.com/dekarrin/esox/chars"
)

// Regex is a node in a regular expression tree. The concrete types are
// CharSet, Literal, Concat, Alt, Loop, CaseOverride, and Void; nothing else
// implements it.
type Regex interface {
	fmt.Stringer

	// isRegex is a marker to keep the set of implementations closed.
	isRegex()
}

// CharSet matches any single character covered by Ranges, or, when Inverted
// is set, any single character NOT covered by them.
type CharSet struct {
	Ranges   []chars.Range
	Inverted bool
}

func (r CharSet) isRegex() {}

func (r CharSet) String() string {
	var sb strings.Builder
	sb.WriteRune('[')
	if r.Inverted {
		sb.WriteRune('^')
	}
	for _, rng := range r.Ranges {
		if rng.Lo == rng.Hi {
			sb.WriteString(fmt.Sprintf("%q", rng.Lo))
		} else {
			sb.WriteString(fmt.Sprintf("%q-%q", rng.Lo, rng.Hi))
		}
	}
	sb.WriteRune(']')
	return sb.String()
}

// Literal matches its text exactly, character by character, subject to the
// effective case-sensitivity flag at lowering time.
type Literal string

func (r Literal) isRegex() {}

func (r Literal) String() string {
	return fmt.Sprintf("%q", string(r))
}

// Concat matches its terms one after another. An empty Concat matches the
// empty string.
type Concat []Regex

func (r Concat) isRegex() {}

func (r Concat) String() string {
	parts := make([]string, len(r))
	for i := range r {
		parts[i] = r[i].String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Alt matches any one of its terms.
type Alt []Regex

func (r Alt) isRegex() {}

func (r Alt) String() string {
	parts := make([]string, len(r))
	for i := range r {
		parts[i] = r[i].String()
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// Loop matches Term repeated between Min and Max times. Max < 0 means
// unbounded.
type Loop struct {
	Term Regex
	Min  int
	Max  int
}

func (r Loop) isRegex() {}

func (r Loop) String() string {
	if r.Min == 0 && r.Max < 0 {
		return r.Term.String() + "*"
	}
	if r.Min == 1 && r.Max < 0 {
		return r.Term.String() + "+"
	}
	if r.Min == 0 && r.Max == 1 {
		return r.Term.String() + "?"
	}
	if r.Max < 0 {
		return fmt.Sprintf("%s{%d,}", r.Term, r.Min)
	}
	return fmt.Sprintf("%s{%d,%d}", r.Term, r.Min, r.Max)
}

// CaseOverride overrides the grammar-level case-sensitivity flag for its
// subtree.
type CaseOverride struct {
	Term          Regex
	CaseSensitive bool
}

func (r CaseOverride) isRegex() {}

func (r CaseOverride) String() string {
	if r.CaseSensitive {
		return "(?-i:" + r.Term.String() + ")"
	}
	return "(?i:" + r.Term.String() + ")"
}

// Void matches nothing at all, not even the empty string. It is the identity
// of Alt and the absorbing element of Concat.
type Void struct{}

func (r Void) isRegex() {}

func (r Void) String() string {
	return "∅"
}

// Chars matches any single character in the given set, where set is given as
// literal characters ("abc" matches a, b, or c).
func Chars(set string) Regex {
	ranges := make([]chars.Range, 0, len(set))
	for _, c := range set {
		ranges = append(ranges, chars.Single(c))
	}
	return CharSet{Ranges: ranges}
}

// NotChars matches any single character NOT in the given set.
func NotChars(set string) Regex {
	cs := Chars(set).(CharSet)
	cs.Inverted = true
	return cs
}

// Between matches any single character in the closed range [lo, hi].
func Between(lo, hi rune) Regex {
	return CharSet{Ranges: []chars.Range{chars.NewRange(lo, hi)}}
}

// AnyOf matches any one of the given regexes.
func AnyOf(terms ...Regex) Regex {
	return Alt(terms)
}

// Seq matches the given regexes in order.
func Seq(terms ...Regex) Regex {
	return Concat(terms)
}

// String matches the given text exactly.
func String(s string) Regex {
	return Literal(s)
}

// Optional matches r or nothing.
func Optional(r Regex) Regex {
	return Loop{Term: r, Min: 0, Max: 1}
}

// Star matches r zero or more times.
func Star(r Regex) Regex {
	return Loop{Term: r, Min: 0, Max: -1}
}

// Plus matches r one or more times.
func Plus(r Regex) Regex {
	return Loop{Term: r, Min: 1, Max: -1}
}

// AtLeast matches r a minimum of n times with no upper bound.
func AtLeast(n int, r Regex) Regex {
	return Loop{Term: r, Min: n, Max: -1}
}

// Repeat matches r between min and max times.
func Repeat(min, max int, r Regex) Regex {
	return Loop{Term: r, Min: min, Max: max}
}

// CaseSensitive wraps r so that its subtree is lowered with the given
// case-sensitivity regardless of the grammar-level flag.
func CaseSensitive(r Regex, sensitive bool) Regex {
	return CaseOverride{Term: r, CaseSensitive: sensitive}
}
