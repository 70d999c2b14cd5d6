package automaton

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/esox/pack"
)

// RenderDFA produces a human-readable dump of a packed DFA state table,
// one row per state.
func RenderDFA(g *pack.Grammar) string {
	data := [][]string{
		{"S", "|", "Transitions", "|", "Default", "|", "Accepts"},
	}

	for i := range g.DFA {
		st := &g.DFA[i]

		var trans []string
		for _, t := range st.Transitions {
			target := "FAIL"
			if t.Target != pack.FailureTarget {
				target = fmt.Sprintf("%d", t.Target)
			}
			if t.Lo == t.Hi {
				trans = append(trans, fmt.Sprintf("%q->%s", t.Lo, target))
			} else {
				trans = append(trans, fmt.Sprintf("%q-%q->%s", t.Lo, t.Hi, target))
			}
		}

		def := ""
		if st.Default != pack.FailureTarget {
			def = fmt.Sprintf("%d", st.Default)
		}

		var accepts []string
		for _, a := range st.Accepts {
			accepts = append(accepts, fmt.Sprintf("%s(p%d)", g.SymbolName(a.Symbol), a.Priority))
		}

		data = append(data, []string{
			fmt.Sprintf("%d", i), "|",
			strings.Join(trans, " "), "|",
			def, "|",
			strings.Join(accepts, " "),
		})
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
