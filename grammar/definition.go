package grammar

import (
	"github.com/dekarrin/esox/regex"
)

// Definition is the lowered form of a grammar: every reachable symbol
// resolved and numbered within its kind, productions expressed over
// (kind, index) refs, and all regexes lowered. It is what the DFA and LALR
// builders consume; user code normally never constructs one directly.
type Definition struct {
	Name          string
	Source        string
	CaseSensitive bool

	Terminals    []TerminalDef
	Noise        []NoiseDef
	GroupStarts  []GroupSymbolDef
	GroupEnds    []GroupSymbolDef
	Nonterminals []NonterminalDef
	Virtuals     []VirtualDef

	Productions []ProductionDef

	// ProdsByHead indexes Productions by head nonterminal.
	ProdsByHead [][]int

	Groups []GroupDef

	// Start is the index of the start nonterminal.
	Start int

	// Precedence is the lowered operator scope, lowest precedence first.
	// Empty when the grammar declared none.
	Precedence []PrecLevelDef
}

// TerminalDef is a numbered terminal. Pattern is nil for group container
// terminals, which are produced by group mode rather than the DFA.
type TerminalDef struct {
	Name      string
	Pattern   *regex.Lowered
	Transform Transformer
	Hidden    bool
}

// NoiseDef is a numbered noise symbol.
type NoiseDef struct {
	Name    string
	Pattern *regex.Lowered
}

// GroupSymbolDef is a numbered group start or group end symbol.
type GroupSymbolDef struct {
	Name    string
	Pattern *regex.Lowered
}

// NonterminalDef is a numbered nonterminal.
type NonterminalDef struct {
	Name string
}

// VirtualDef is a numbered virtual terminal.
type VirtualDef struct {
	Name string
}

// ProductionDef is a numbered production.
type ProductionDef struct {
	// Head is the index of the head nonterminal.
	Head int

	// Handle is the ordered right-hand side. Every ref is either a
	// KindTerminal, KindVirtual, or KindNonterminal ref.
	Handle []SymbolRef

	// Fuse is the production's fuser; nil means first-member semantics.
	Fuse Fuser

	// PrecTag is the production's explicit precedence tag, or nil.
	PrecTag any
}

// GroupDef is a numbered group.
type GroupDef struct {
	Name string

	// Container is the symbol the whole group region becomes: a
	// KindTerminal ref, or a KindNoise-kind marker when IsNoise is set (in
	// which case the index is -1 and the region is discarded).
	Container SymbolRef

	// Start is the index of the group's start symbol. Unique to this
	// group.
	Start int

	// End is the index of the group's end symbol. May be shared with
	// other groups.
	End int

	// Nesting lists the indices of groups allowed to open inside this
	// one.
	Nesting []int

	EndsOnEndOfInput   bool
	KeepEndToken       bool
	AdvanceByCharacter bool
	IsNoise            bool
}

// PrecOperator is one operator of a precedence level: either a terminal
// (by index) or an opaque tag matched against production tags.
type PrecOperator struct {
	// Terminal is the operator's terminal index, or -1 when the operator
	// is a tag.
	Terminal int

	// Tag is the opaque tag; only meaningful when Terminal is -1.
	Tag any
}

// PrecLevelDef is a lowered precedence level.
type PrecLevelDef struct {
	Assoc     Associativity
	Operators []PrecOperator
}

// TokenizerSymbol is one symbol the DFA must recognize, paired with the
// ref it accepts as.
type TokenizerSymbol struct {
	Ref     SymbolRef
	Name    string
	Pattern *regex.Lowered
}

// TokenizerSymbols returns every DFA-recognized symbol of the grammar:
// terminals with patterns, noise symbols, and group starts and ends.
// Group container terminals and virtual terminals have no pattern and are
// not included.
func (d *Definition) TokenizerSymbols() []TokenizerSymbol {
	var out []TokenizerSymbol
	for i := range d.Terminals {
		if d.Terminals[i].Pattern == nil {
			continue
		}
		out = append(out, TokenizerSymbol{
			Ref:     SymbolRef{Kind: KindTerminal, Index: i},
			Name:    d.Terminals[i].Name,
			Pattern: d.Terminals[i].Pattern,
		})
	}
	for i := range d.Noise {
		out = append(out, TokenizerSymbol{
			Ref:     SymbolRef{Kind: KindNoise, Index: i},
			Name:    d.Noise[i].Name,
			Pattern: d.Noise[i].Pattern,
		})
	}
	for i := range d.GroupStarts {
		out = append(out, TokenizerSymbol{
			Ref:     SymbolRef{Kind: KindGroupStart, Index: i},
			Name:    d.GroupStarts[i].Name,
			Pattern: d.GroupStarts[i].Pattern,
		})
	}
	for i := range d.GroupEnds {
		out = append(out, TokenizerSymbol{
			Ref:     SymbolRef{Kind: KindGroupEnd, Index: i},
			Name:    d.GroupEnds[i].Name,
			Pattern: d.GroupEnds[i].Pattern,
		})
	}
	return out
}

// SymbolName returns the display name of the given ref.
func (d *Definition) SymbolName(ref SymbolRef) string {
	switch ref.Kind {
	case KindTerminal:
		return d.Terminals[ref.Index].Name
	case KindNoise:
		if ref.Index < 0 {
			return "(discard)"
		}
		return d.Noise[ref.Index].Name
	case KindGroupStart:
		return d.GroupStarts[ref.Index].Name
	case KindGroupEnd:
		return d.GroupEnds[ref.Index].Name
	case KindNonterminal:
		return d.Nonterminals[ref.Index].Name
	case KindVirtual:
		return d.Virtuals[ref.Index].Name
	default:
		return ref.String()
	}
}
