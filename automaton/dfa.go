// Package automaton builds the deterministic tokenizing automaton of a
// grammar from the lowered regexes of its tokenizer symbols. The
// construction goes directly from the regex forest to a DFA by way of the
// followpos sets; there is no intermediate NFA.
package automaton

import (
	"context"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/pack"
)

// DefaultMaxStates is the tokenizer state cap used when Options leaves
// MaxStates zero.
const DefaultMaxStates = 10000

// Options adjusts DFA construction.
type Options struct {
	// PrioritizeFixedLengthSymbols resolves accept conflicts in favor of
	// the symbol with the lowest priority (fixed-length literals beat
	// variable-length regexes) when that symbol is unique.
	PrioritizeFixedLengthSymbols bool

	// MaxStates caps the number of DFA states; exceeding it aborts the
	// build with a DfaStateLimitExceeded diagnostic. Zero means
	// DefaultMaxStates.
	MaxStates int
}

// Build constructs the DFA state table for the given tokenizer symbols.
// Accept conflicts that survive prioritization are preserved in the table
// and also reported as IndistinguishableSymbols diagnostics; the caller
// decides whether those are fatal.
//
// Build returns ctx.Err with no states and no diagnostics if the context
// is canceled.
func Build(ctx context.Context, syms []grammar.TokenizerSymbol, opts Options) ([]pack.DFAState, []diag.Diagnostic, error) {
	maxStates := opts.MaxStates
	if maxStates == 0 {
		maxStates = DefaultMaxStates
	}

	// conceptually the forest is r0 | r1 | ... | rn-1 with each regex
	// ending in a distinct end leaf tagged (symbol, priority).
	pt := &posTree{}
	rootFirst := bitset.New(8)
	for i, ts := range syms {
		prio := 1
		if !hasVariableLength(ts.Pattern.Term) {
			prio = 0
		}

		info := pt.analyze(expandLoops(ts.Pattern.Term))

		endPos := pt.addLeaf(leaf{isEnd: true, sym: ts.Ref, priority: prio, symOrder: i})
		for p, ok := info.last.NextSet(0); ok; p, ok = info.last.NextSet(p + 1) {
			pt.followpos[p].Set(endPos)
		}
		if info.nullable {
			// an empty match would put the end leaf in the initial state;
			// grammar validation rejects nullable symbols before we get
			// here, so just keep the construction honest.
			rootFirst.Set(endPos)
		}

		rootFirst.InPlaceUnion(info.first)
	}

	b := &dfaBuilder{
		pt:        pt,
		stateIdx:  map[string]int{},
		opts:      opts,
		maxStates: maxStates,
	}

	b.stateFor(rootFirst)

	for next := 0; next < len(b.states); next++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if b.limitHit {
			return nil, []diag.Diagnostic{diag.New(diag.SeverityError, diag.CodeDfaStateLimitExceeded,
				diag.DfaStateLimitExceeded{Max: maxStates})}, nil
		}
		b.computeTransitions(next)
	}
	if b.limitHit {
		return nil, []diag.Diagnostic{diag.New(diag.SeverityError, diag.CodeDfaStateLimitExceeded,
			diag.DfaStateLimitExceeded{Max: maxStates})}, nil
	}

	diags := b.conflictDiags(syms)
	return b.states, diags, nil
}

type dfaBuilder struct {
	pt        *posTree
	states    []pack.DFAState
	stateSets []*bitset.BitSet
	stateIdx  map[string]int
	opts      Options
	maxStates int
	limitHit  bool
}

// stateFor returns the index of the state identified by the given position
// set, creating it if it is new.
func (b *dfaBuilder) stateFor(set *bitset.BitSet) int {
	key := set.String()
	if idx, ok := b.stateIdx[key]; ok {
		return idx
	}

	idx := len(b.states)
	if idx >= b.maxStates {
		b.limitHit = true
		return pack.FailureTarget
	}

	b.stateIdx[key] = idx
	b.stateSets = append(b.stateSets, set)
	b.states = append(b.states, pack.DFAState{Default: pack.FailureTarget})
	b.states[idx].Accepts = b.acceptsOf(set)
	return idx
}

// acceptsOf lists the accept symbols of a position set in (priority,
// declaration order) form, applying fixed-length prioritization when
// configured and unambiguous.
func (b *dfaBuilder) acceptsOf(set *bitset.BitSet) []pack.DFAAccept {
	var accepts []pack.DFAAccept
	for p, ok := set.NextSet(0); ok; p, ok = set.NextSet(p + 1) {
		l := &b.pt.leaves[p]
		if l.isEnd {
			accepts = append(accepts, pack.DFAAccept{Priority: l.priority, Symbol: l.sym})
		}
	}
	if len(accepts) == 0 {
		return nil
	}

	ordering := make(map[pack.DFAAccept]int, len(accepts))
	for p, ok := set.NextSet(0); ok; p, ok = set.NextSet(p + 1) {
		l := &b.pt.leaves[p]
		if l.isEnd {
			ordering[pack.DFAAccept{Priority: l.priority, Symbol: l.sym}] = l.symOrder
		}
	}
	sort.Slice(accepts, func(i, j int) bool {
		if accepts[i].Priority != accepts[j].Priority {
			return accepts[i].Priority < accepts[j].Priority
		}
		return ordering[accepts[i]] < ordering[accepts[j]]
	})

	if b.opts.PrioritizeFixedLengthSymbols && len(accepts) > 1 {
		if accepts[0].Priority < accepts[1].Priority {
			accepts = accepts[:1]
		}
	}

	return accepts
}

// event types of the transition sweep, in the order they sort at an equal
// character.
const (
	evStart = iota
	evInvertedStart
	evInvertedEnd
	evEnd
)

type sweepEvent struct {
	char rune
	typ  int
	leaf uint
}

// computeTransitions fills in the transition list, default target, and
// failure transitions of state i from the character leaves of its position
// set.
func (b *dfaBuilder) computeTransitions(i int) {
	set := b.stateSets[i]

	// gather the character leaves and the event list
	var events []sweepEvent
	inverted := bitset.New(8)
	anyInverted := false
	for p, ok := set.NextSet(0); ok; p, ok = set.NextSet(p + 1) {
		l := &b.pt.leaves[p]
		if l.isEnd {
			continue
		}
		if l.inverted {
			inverted.Set(p)
			anyInverted = true
			for _, rng := range l.ranges {
				events = append(events, sweepEvent{char: rng.Lo, typ: evInvertedStart, leaf: p})
				events = append(events, sweepEvent{char: rng.Hi, typ: evInvertedEnd, leaf: p})
			}
		} else {
			for _, rng := range l.ranges {
				events = append(events, sweepEvent{char: rng.Lo, typ: evStart, leaf: p})
				events = append(events, sweepEvent{char: rng.Hi, typ: evEnd, leaf: p})
			}
		}
	}

	sort.Slice(events, func(x, y int) bool {
		if events[x].char != events[y].char {
			return events[x].char < events[y].char
		}
		if events[x].typ != events[y].typ {
			return events[x].typ < events[y].typ
		}
		return events[x].leaf < events[y].leaf
	})

	// the default transition covers characters outside every explicit
	// range: there, every inverted leaf matches and nofin else does.
	defaultTarget := pack.FailureTarget
	if anyInverted {
		defaultSet := bitset.New(8)
		for p, ok := inverted.NextSet(0); ok; p, ok = inverted.NextSet(p + 1) {
			defaultSet.InPlaceUnion(b.pt.followpos[p])
		}
		defaultTarget = b.stateFor(defaultSet)
	}

	// active tracks non-inverted leaves inside one of their ranges;
	// excluded tracks inverted leaves inside one of their excluded ranges.
	active := bitset.New(8)
	excluded := bitset.New(8)
	activeDepth := map[uint]int{}

	cursor := rune(0)
	var trans []pack.DFATransition

	emit := func(lo, hi rune) {
		// skip sub-ranges that collapsed during endpoint splitting
		if lo > hi {
			return
		}

		// nofin interesting happens in a pure gap; the default (or the
		// implicit failure) already covers it.
		if active.None() && excluded.None() {
			return
		}

		matching := active.Clone()
		for p, ok := inverted.NextSet(0); ok; p, ok = inverted.NextSet(p + 1) {
			if !excluded.Test(p) {
				matching.Set(p)
			}
		}

		if matching.None() {
			// every leaf present here is inverted and excludes this
			// sub-range; shadow the default with an explicit failure.
			if defaultTarget != pack.FailureTarget {
				trans = append(trans, pack.DFATransition{Lo: lo, Hi: hi, Target: pack.FailureTarget})
			}
			return
		}

		targetSet := bitset.New(8)
		for p, ok := matching.NextSet(0); ok; p, ok = matching.NextSet(p + 1) {
			targetSet.InPlaceUnion(b.pt.followpos[p])
		}
		trans = append(trans, pack.DFATransition{Lo: lo, Hi: hi, Target: b.stateFor(targetSet)})
	}

	setDepth := func(s *bitset.BitSet, l uint, delta int) {
		activeDepth[l] += delta
		if activeDepth[l] > 0 {
			s.Set(l)
		} else {
			s.Clear(l)
		}
	}

	for _, ev := range events {
		switch ev.typ {
		case evStart:
			emit(cursor, ev.char-1)
			if ev.char > cursor {
				cursor = ev.char
			}
			setDepth(active, ev.leaf, +1)
		case evInvertedStart:
			emit(cursor, ev.char-1)
			if ev.char > cursor {
				cursor = ev.char
			}
			setDepth(excluded, ev.leaf, +1)
		case evInvertedEnd:
			emit(cursor, ev.char)
			if ev.char+1 > cursor {
				cursor = ev.char + 1
			}
			setDepth(excluded, ev.leaf, -1)
		case evEnd:
			emit(cursor, ev.char)
			if ev.char+1 > cursor {
				cursor = ev.char + 1
			}
			setDepth(active, ev.leaf, -1)
		}
	}

	// coalesce runs of adjacent sub-ranges that landed on the same target
	var merged []pack.DFATransition
	for _, t := range trans {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Target == t.Target && last.Hi+1 == t.Lo {
				last.Hi = t.Hi
				continue
			}
		}
		merged = append(merged, t)
	}

	b.states[i].Transitions = merged
	b.states[i].Default = defaultTarget
}

// conflictDiags reports every state that still accepts more than one
// symbol.
func (b *dfaBuilder) conflictDiags(syms []grammar.TokenizerSymbol) []diag.Diagnostic {
	nameOf := map[grammar.SymbolRef]string{}
	nameCount := map[string]int{}
	for _, ts := range syms {
		nameOf[ts.Ref] = ts.Name
		nameCount[ts.Name]++
	}

	var diags []diag.Diagnostic
	reported := map[string]bool{}
	for i := range b.states {
		accepts := b.states[i].Accepts
		if len(accepts) < 2 {
			continue
		}

		names := make([]string, len(accepts))
		key := ""
		for j, a := range accepts {
			n := nameOf[a.Symbol]
			if nameCount[n] > 1 {
				// two kinds share the name; disambiguate
				n = n + " (" + a.Symbol.Kind.String() + ")"
			}
			names[j] = n
			key += n + "\x00"
		}
		if reported[key] {
			continue
		}
		reported[key] = true

		diags = append(diags, diag.New(diag.SeverityError, diag.CodeIndistinguishableSymbols,
			diag.IndistinguishableSymbols{Names: names}))
	}

	return diags
}

// Match runs the DFA over s from its initial state and returns the length
// of the longest accepted prefix together with the winning accept, or
// ok=false when no prefix is accepted. It exists for testing the
// construction against direct regex semantics and for tooling; the real
// runtime drives the same table incrementally.
func Match(states []pack.DFAState, s []rune) (length int, accept pack.DFAAccept, ok bool) {
	cur := 0
	for i := 0; i <= len(s); i++ {
		if len(states[cur].Accepts) > 0 {
			length = i
			accept = states[cur].Accepts[0]
			ok = true
		}
		if i == len(s) {
			break
		}
		next := step(states, cur, s[i])
		if next == pack.FailureTarget {
			break
		}
		cur = next
	}
	return length, accept, ok
}

func step(states []pack.DFAState, cur int, c rune) int {
	st := &states[cur]
	idx := sort.Search(len(st.Transitions), func(i int) bool {
		return st.Transitions[i].Hi >= c
	})
	if idx < len(st.Transitions) && st.Transitions[idx].Lo <= c {
		return st.Transitions[idx].Target
	}
	return st.Default
}

// Step advances the DFA from state cur on character c, returning the next
// state or pack.FailureTarget.
func Step(states []pack.DFAState, cur int, c rune) int {
	return step(states, cur, c)
}
