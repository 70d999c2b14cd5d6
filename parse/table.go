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

// lowerScope indexes the grammar's operator scope for constant-time
// precedence lookups.
func (tb *tableBuilder) lowerScope() {
	tb.termLevel = map[int]int{}
	tb.levels = tb.def.Precedence
	for li, level := range tb.def.Precedence {
		for _, op := range level.Operators {
			if op.Terminal >= 0 {
				tb.termLevel[op.Terminal] = li
			} else {
				tb.tagLevel = append(tb.tagLevel, tagLevelEntry{tag: op.Tag, level: li})
			}
		}
	}
}

// prodLevel finds the precedence level of a production: its explicit tag
// if one matches the scope, otherwise the level of the last terminal of
// its handle. The second return is false when the production has no
// precedence.
func (tb *tableBuilder) prodLevel(prod int) (int, bool) {
	p := &tb.prods[prod]

	if p.precTag != nil {
		for _, e := range tb.tagLevel {
			if e.tag == p.precTag {
				return e.level, true
			}
		}
	}

	for i := len(p.handle) - 1; i >= 0; i-- {
		if !p.handle[i].nt {
			lvl, ok := tb.termLevel[p.handle[i].idx]
			return lvl, ok
		}
	}

	return 0, false
}

func (tb *tableBuilder) tokenName(token int) string {
	if token < len(tb.def.Terminals) {
		return tb.def.Terminals[token].Name
	}
	return tb.def.Virtuals[token-len(tb.def.Terminals)]
}

func (tb *tableBuilder) symName(s lrSym) string {
	if s.nt {
		return tb.def.Nonterminals[s.idx].Name
	}
	return tb.tokenName(s.idx)
}

// prodString renders a production for conflict messages, with the dot at
// the given offset (or omitted when dot < 0).
func (tb *tableBuilder) prodString(prod, dot int) string {
	p := &tb.prods[prod]

	head := "S'"
	if p.head >= 0 {
		head = tb.def.Nonterminals[p.head].Name
	}

	var parts []string
	for i, s := range p.handle {
		if i == dot {
			parts = append(parts, ".")
		}
		parts = append(parts, tb.symName(s))
	}
	if dot == len(p.handle) {
		parts = append(parts, ".")
	}
	if len(parts) == 0 {
		parts = append(parts, "ε")
	}

	return head + " -> " + strings.Join(parts, " ")
}

// cellCandidates is everything competing for one ACTION cell.
type cellCandidates struct {
	shiftTo     int // -1 when no shift
	reduceProds []int
	accept      bool
}

// fillTable turns the merged item sets and transitions into the packed
// ACTION/GOTO tables, resolving what precedence can resolve and reporting
// the rest.
//
// The ACTION construction is the one of Algorithm 4.56, "Construction of
// canonical-LR parsing tables", from the purple dragon book, applied to
// the merged sets.
func (tb *tableBuilder) fillTable(ctx context.Context, states []map[lr1Item]bool, trans map[lrTransKey]int) ([]pack.LRState, []diag.Diagnostic, error) {
	var diags []diag.Diagnostic
	out := make([]pack.LRState, len(states))

	for i, items := range states {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		cells := map[int]*cellCandidates{}
		eofCell := &cellCandidates{shiftTo: -1}
		cellFor := func(token int) *cellCandidates {
			if token == eofLA {
				return eofCell
			}
			c, ok := cells[token]
			if !ok {
				c = &cellCandidates{shiftTo: -1}
				cells[token] = c
			}
			return c
		}

		// (a) shift entries come from the goto graph on token symbols
		for t := 0; t < tb.tokenCount; t++ {
			if to, ok := trans[lrTransKey{state: i, sym: lrSym{idx: t}}]; ok {
				cellFor(t).shiftTo = to
			}
		}

		// (b) reduce entries from completed items; (c) accept from the
		// completed augmented item on EOF
		for it := range items {
			p := &tb.prods[it.prod]
			if it.dot != len(p.handle) {
				continue
			}
			if it.prod == tb.augProd() {
				eofCell.accept = true
				continue
			}
			c := cellFor(it.la)
			c.reduceProds = append(c.reduceProds, it.prod)
		}

		// resolve each cell
		var actions []pack.TermAction
		for t := 0; t < tb.tokenCount; t++ {
			c, ok := cells[t]
			if !ok {
				continue
			}
			act, cellDiags := tb.resolveCell(i, t, c)
			diags = append(diags, cellDiags...)
			if act.Kind != pack.LRError || len(cellDiags) > 0 || explicitError(c) {
				actions = append(actions, pack.TermAction{Token: t, Action: act})
			}
		}
		sort.Slice(actions, func(x, y int) bool { return actions[x].Token < actions[y].Token })
		out[i].Actions = actions

		eofAct, eofDiags := tb.resolveEOFCell(i, eofCell)
		diags = append(diags, eofDiags...)
		out[i].EOF = eofAct

		// GOTO over nonterminals
		for n := 0; n < len(tb.def.Nonterminals); n++ {
			if to, ok := trans[lrTransKey{state: i, sym: lrSym{nt: true, idx: n}}]; ok {
				out[i].Gotos = append(out[i].Gotos, pack.NTGoto{Nonterminal: n, State: to})
			}
		}
		sort.Slice(out[i].Gotos, func(x, y int) bool {
			return out[i].Gotos[x].Nonterminal < out[i].Gotos[y].Nonterminal
		})
	}

	return out, diags, nil
}

// explicitError returns whether the cell held a non-associative operator
// tie, which writes an explicit error entry rather than leaving the cell
// blank.
func explicitError(c *cellCandidates) bool {
	return c.shiftTo >= 0 && len(c.reduceProds) > 0
}

// resolveCell decides the action of one (state, token) cell.
func (tb *tableBuilder) resolveCell(state, token int, c *cellCandidates) (pack.LRAction, []diag.Diagnostic) {
	sort.Ints(c.reduceProds)

	if len(c.reduceProds) > 1 {
		items := make([]string, 0, len(c.reduceProds)+1)
		for _, p := range c.reduceProds {
			items = append(items, "reduce "+tb.prodString(p, -1))
		}
		d := diag.New(diag.SeverityError, diag.CodeLrConflict, diag.LrConflict{
			Kind:     diag.ConflictReduceReduce,
			State:    state,
			Terminal: tb.tokenName(token),
			Items:    items,
		})
		return pack.LRAction{Kind: pack.LRReduce, Payload: c.reduceProds[0]}, []diag.Diagnostic{d}
	}

	if c.shiftTo >= 0 && len(c.reduceProds) == 1 {
		return tb.resolveShiftReduce(state, token, c)
	}

	if c.shiftTo >= 0 {
		return pack.LRAction{Kind: pack.LRShift, Payload: c.shiftTo}, nil
	}
	if len(c.reduceProds) == 1 {
		return pack.LRAction{Kind: pack.LRReduce, Payload: c.reduceProds[0]}, nil
	}
	return pack.LRAction{Kind: pack.LRError}, nil
}

// resolveShiftReduce applies operator precedence to a shift-reduce tie.
func (tb *tableBuilder) resolveShiftReduce(state, token int, c *cellCandidates) (pack.LRAction, []diag.Diagnostic) {
	prod := c.reduceProds[0]
	shift := pack.LRAction{Kind: pack.LRShift, Payload: c.shiftTo}
	reduce := pack.LRAction{Kind: pack.LRReduce, Payload: prod}

	shiftLvl, shiftOK := tb.termLevel[token]
	prodLvl, prodOK := tb.prodLevel(prod)

	if shiftOK && prodOK {
		if shiftLvl > prodLvl {
			return shift, nil
		}
		if prodLvl > shiftLvl {
			return reduce, nil
		}
		switch tb.levels[shiftLvl].Assoc {
		case grammar.AssocLeft:
			return reduce, nil
		case grammar.AssocRight:
			return shift, nil
		case grammar.AssocNone:
			// a non-associative tie is a parse-time error entry
			return pack.LRAction{Kind: pack.LRError}, nil
		case grammar.AssocPrecedenceOnly:
			// precedence-only carries no associativity; fall through to
			// the unresolved report below
		}
	}

	d := diag.New(diag.SeverityError, diag.CodeLrConflict, diag.LrConflict{
		Kind:     diag.ConflictShiftReduce,
		State:    state,
		Terminal: tb.tokenName(token),
		Items: []string{
			fmt.Sprintf("shift %s", tb.tokenName(token)),
			"reduce " + tb.prodString(prod, -1),
		},
	})
	return shift, []diag.Diagnostic{d}
}

// resolveEOFCell decides the EOF action of a state.
func (tb *tableBuilder) resolveEOFCell(state int, c *cellCandidates) (pack.LRAction, []diag.Diagnostic) {
	sort.Ints(c.reduceProds)

	if c.accept && len(c.reduceProds) > 0 {
		items := []string{"accept"}
		for _, p := range c.reduceProds {
			items = append(items, "reduce "+tb.prodString(p, -1))
		}
		d := diag.New(diag.SeverityError, diag.CodeLrConflict, diag.LrConflict{
			Kind:     diag.ConflictAcceptReduce,
			State:    state,
			Terminal: "(EOF)",
			Items:    items,
		})
		return pack.LRAction{Kind: pack.LRAccept}, []diag.Diagnostic{d}
	}

	if c.accept {
		return pack.LRAction{Kind: pack.LRAccept}, nil
	}

	if len(c.reduceProds) > 1 {
		items := make([]string, 0, len(c.reduceProds))
		for _, p := range c.reduceProds {
			items = append(items, "reduce "+tb.prodString(p, -1))
		}
		d := diag.New(diag.SeverityError, diag.CodeLrConflict, diag.LrConflict{
			Kind:     diag.ConflictReduceReduce,
			State:    state,
			Terminal: "(EOF)",
			Items:    items,
		})
		return pack.LRAction{Kind: pack.LRReduce, Payload: c.reduceProds[0]}, []diag.Diagnostic{d}
	}
	if len(c.reduceProds) == 1 {
		return pack.LRAction{Kind: pack.LRReduce, Payload: c.reduceProds[0]}, nil
	}
	return pack.LRAction{Kind: pack.LRError}, nil
}
