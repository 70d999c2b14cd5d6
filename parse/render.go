package parse

import (
	"fmt"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/esox/pack"
)

// RenderTable produces a human-readable dump of a packed grammar's ACTION
// and GOTO tables, one row per state. Action columns are prefixed A:, goto
// columns G:.
func RenderTable(g *pack.Grammar) string {
	data := [][]string{}

	headers := []string{"S", "|"}
	for t := 0; t < g.TokenCount(); t++ {
		headers = append(headers, "A:"+g.TokenName(t))
	}
	headers = append(headers, "A:$", "|")
	for _, nt := range g.Nonterminals {
		headers = append(headers, "G:"+nt)
	}
	data = append(data, headers)

	for i := range g.LALR {
		st := &g.LALR[i]
		row := []string{fmt.Sprintf("%d", i), "|"}

		byToken := map[int]pack.LRAction{}
		for _, a := range st.Actions {
			byToken[a.Token] = a.Action
		}

		for t := 0; t < g.TokenCount(); t++ {
			row = append(row, actionCell(g, byToken[t]))
		}
		row = append(row, actionCell(g, st.EOF), "|")

		byNT := map[int]int{}
		for _, gt := range st.Gotos {
			byNT[gt.Nonterminal] = gt.State
		}
		for n := range g.Nonterminals {
			cell := ""
			if to, ok := byNT[n]; ok {
				cell = fmt.Sprintf("%d", to)
			}
			row = append(row, cell)
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func actionCell(g *pack.Grammar, act pack.LRAction) string {
	switch act.Kind {
	case pack.LRAccept:
		return "acc"
	case pack.LRShift:
		return fmt.Sprintf("s%d", act.Payload)
	case pack.LRReduce:
		p := &g.Productions[act.Payload]
		cell := "r" + g.Nonterminals[p.Head] + " ->"
		if len(p.Handle) == 0 {
			cell += " ε"
		}
		for _, ref := range p.Handle {
			cell += " " + g.SymbolName(ref)
		}
		return cell
	default:
		return ""
	}
}
