// Package parse builds LALR(1) parse tables from a lowered grammar
// definition and drives them at parse time. Construction follows the
// canonical-LR(1) route: build the full LR(1) collection, merge sets with
// equal cores, then fill in ACTION and GOTO, resolving shift-reduce
// conflicts through the grammar's operator scope where one was declared.
package parse

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/pack"
)

// eofLA is the lookahead value standing for end of input.
const eofLA = -1

// lrSym is a grammar symbol in the flat spaces the table builder works in:
// a token id (terminals then virtuals) or a nonterminal index.
type lrSym struct {
	nt  bool
	idx int
}

// lr1Item is [A -> α.β, a] by production index, dot offset, and lookahead
// token id (or eofLA).
type lr1Item struct {
	prod int
	dot  int
	la   int
}

type lrProd struct {
	// head is the head nonterminal index; -1 for the augmented start
	// production S' -> S.
	head   int
	handle []lrSym

	// precedence resolution inputs
	precTag any
}

// tableBuilder holds everything shared across the construction passes.
type tableBuilder struct {
	def   *grammar.Definition
	prods []lrProd

	tokenCount int

	// FIRST data for nonterminals
	ntNullable []bool
	ntFirst    []map[int]bool

	// operator scope lowered to lookup maps
	termLevel map[int]int
	tagLevel  []tagLevelEntry
	levels    []grammar.PrecLevelDef
}

type tagLevelEntry struct {
	tag   any
	level int
}

// augProd is the index of the augmented start production.
func (tb *tableBuilder) augProd() int {
	return len(tb.prods) - 1
}

// Build constructs the LALR(1) state table for def. Conflicts that survive
// precedence resolution are reported as LrConflict diagnostics; the table
// returned alongside them keeps one of the competing actions in each
// conflicted cell: the shift for shift-reduce, the lowest-numbered
// production for reduce-reduce, and the accept for accept-reduce.
//
// Build returns ctx.Err with no states and no diagnostics if the context
// is canceled.
func Build(ctx context.Context, def *grammar.Definition) ([]pack.LRState, []diag.Diagnostic, error) {
	tb := &tableBuilder{
		def:        def,
		tokenCount: len(def.Terminals) + len(def.Virtuals),
	}

	for i := range def.Productions {
		p := &def.Productions[i]
		lp := lrProd{head: p.Head, precTag: p.PrecTag}
		for _, ref := range p.Handle {
			lp.handle = append(lp.handle, tb.refToSym(ref))
		}
		tb.prods = append(tb.prods, lp)
	}
	// the augmented production S' -> S
	tb.prods = append(tb.prods, lrProd{head: -1, handle: []lrSym{{nt: true, idx: def.Start}}})

	tb.computeFirst()
	tb.lowerScope()

	states, trans, err := tb.collectLALR1(ctx)
	if err != nil {
		return nil, nil, err
	}

	return tb.fillTable(ctx, states, trans)
}

func (tb *tableBuilder) refToSym(ref grammar.SymbolRef) lrSym {
	switch ref.Kind {
	case grammar.KindTerminal:
		return lrSym{idx: ref.Index}
	case grammar.KindVirtual:
		return lrSym{idx: len(tb.def.Terminals) + ref.Index}
	case grammar.KindNonterminal:
		return lrSym{nt: true, idx: ref.Index}
	default:
		panic(fmt.Sprintf("symbol %s cannot appear in a production", ref))
	}
}

// computeFirst finds nullability and FIRST sets for every nonterminal by
// iterating productions to a fixpoint.
func (tb *tableBuilder) computeFirst() {
	n := len(tb.def.Nonterminals)
	tb.ntNullable = make([]bool, n)
	tb.ntFirst = make([]map[int]bool, n)
	for i := range tb.ntFirst {
		tb.ntFirst[i] = map[int]bool{}
	}

	changed := true
	for changed {
		changed = false
		for pi := range tb.prods {
			p := &tb.prods[pi]
			if p.head < 0 {
				continue
			}

			allNullable := true
			for _, s := range p.handle {
				if !s.nt {
					if !tb.ntFirst[p.head][s.idx] {
						tb.ntFirst[p.head][s.idx] = true
						changed = true
					}
					allNullable = false
					break
				}
				for t := range tb.ntFirst[s.idx] {
					if !tb.ntFirst[p.head][t] {
						tb.ntFirst[p.head][t] = true
						changed = true
					}
				}
				if !tb.ntNullable[s.idx] {
					allNullable = false
					break
				}
			}
			if allNullable && !tb.ntNullable[p.head] {
				tb.ntNullable[p.head] = true
				changed = true
			}
		}
	}
}

// firstOfRest computes FIRST(βa) for the tail of a handle and a lookahead.
func (tb *tableBuilder) firstOfRest(rest []lrSym, la int) map[int]bool {
	out := map[int]bool{}
	for _, s := range rest {
		if !s.nt {
			out[s.idx] = true
			return out
		}
		for t := range tb.ntFirst[s.idx] {
			out[t] = true
		}
		if !tb.ntNullable[s.idx] {
			return out
		}
	}
	out[la] = true
	return out
}

// closure is the CLOSURE operation of Fig. 4.40 from the purple dragon
// book, over LR(1) items.
func (tb *tableBuilder) closure(items map[lr1Item]bool) map[lr1Item]bool {
	out := map[lr1Item]bool{}
	var queue []lr1Item
	for it := range items {
		out[it] = true
		queue = append(queue, it)
	}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		handle := tb.prods[it.prod].handle
		if it.dot >= len(handle) || !handle[it.dot].nt {
			continue
		}

		b := handle[it.dot].idx
		lookaheads := tb.firstOfRest(handle[it.dot+1:], it.la)
		for _, pi := range tb.prodsOf(b) {
			for la := range lookaheads {
				newIt := lr1Item{prod: pi, dot: 0, la: la}
				if !out[newIt] {
					out[newIt] = true
					queue = append(queue, newIt)
				}
			}
		}
	}

	return out
}

func (tb *tableBuilder) prodsOf(nt int) []int {
	return tb.def.ProdsByHead[nt]
}

// gotoSet is the GOTO operation of Fig. 4.40: advance the dot over X in
// every item that has X next, then take the closure.
func (tb *tableBuilder) gotoSet(items map[lr1Item]bool, x lrSym) map[lr1Item]bool {
	kernel := map[lr1Item]bool{}
	for it := range items {
		handle := tb.prods[it.prod].handle
		if it.dot < len(handle) && handle[it.dot] == x {
			kernel[lr1Item{prod: it.prod, dot: it.dot + 1, la: it.la}] = true
		}
	}
	if len(kernel) == 0 {
		return nil
	}
	return tb.closure(kernel)
}

func itemSetKey(items map[lr1Item]bool) string {
	keys := make([]string, 0, len(items))
	for it := range items {
		keys = append(keys, fmt.Sprintf("%d.%d.%d", it.prod, it.dot, it.la))
	}
	sort.Strings(keys)
	return strings.Join(keys, " ")
}

func coreKey(items map[lr1Item]bool) string {
	seen := map[string]bool{}
	for it := range items {
		seen[fmt.Sprintf("%d.%d", it.prod, it.dot)] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, " ")
}

type lrTransKey struct {
	state int
	sym   lrSym
}

// collectLALR1 builds the canonical collection of sets of LR(1) items and
// merges sets with equal cores, per Algorithm 4.59, "An easy, but
// space-consuming LALR table construction", from the purple dragon book.
// State 0 of the result contains the augmented start item.
func (tb *tableBuilder) collectLALR1(ctx context.Context) ([]map[lr1Item]bool, map[lrTransKey]int, error) {
	start := tb.closure(map[lr1Item]bool{
		{prod: tb.augProd(), dot: 0, la: eofLA}: true,
	})

	var sets []map[lr1Item]bool
	setIdx := map[string]int{}
	trans := map[lrTransKey]int{}

	sets = append(sets, start)
	setIdx[itemSetKey(start)] = 0

	// every grammar symbol, in a deterministic order: tokens then
	// nonterminals.
	var symbols []lrSym
	for t := 0; t < tb.tokenCount; t++ {
		symbols = append(symbols, lrSym{idx: t})
	}
	for n := 0; n < len(tb.def.Nonterminals); n++ {
		symbols = append(symbols, lrSym{nt: true, idx: n})
	}

	for next := 0; next < len(sets); next++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		for _, x := range symbols {
			g := tb.gotoSet(sets[next], x)
			if len(g) == 0 {
				continue
			}
			key := itemSetKey(g)
			idx, ok := setIdx[key]
			if !ok {
				idx = len(sets)
				sets = append(sets, g)
				setIdx[key] = idx
			}
			trans[lrTransKey{state: next, sym: x}] = idx
		}
	}

	// merge sets with equal cores to get the LALR(1) collection
	mergedIdx := map[string]int{}
	remap := make([]int, len(sets))
	var merged []map[lr1Item]bool
	for i, set := range sets {
		ck := coreKey(set)
		mi, ok := mergedIdx[ck]
		if !ok {
			mi = len(merged)
			merged = append(merged, map[lr1Item]bool{})
			mergedIdx[ck] = mi
		}
		for it := range set {
			merged[mi][it] = true
		}
		remap[i] = mi
	}

	mergedTrans := map[lrTransKey]int{}
	for k, to := range trans {
		mergedTrans[lrTransKey{state: remap[k.state], sym: k.sym}] = remap[to]
	}

	return merged, mergedTrans, nil
}
