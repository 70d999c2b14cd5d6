// Package pack defines the packed grammar: the immutable, serializable
// post-build representation that the runtime executes. A packed Grammar is
// pure data; transformer and fuser callbacks live beside it in the parser
// value, never inside it. Packed grammars are safe to share between any
// number of concurrent parse sessions.
//
// The package also implements the binary grammar file format used to
// persist and reload built grammars.
package pack

import (
	"github.com/dekarrin/esox/grammar"
)

// Terminal is one packed terminal symbol.
type Terminal struct {
	Name   string
	Hidden bool
}

// Production is one packed production: a head nonterminal index and a
// handle of symbol refs.
type Production struct {
	Head   int
	Handle []grammar.SymbolRef
}

// Group is one packed lexical group.
type Group struct {
	Name string

	// Container is the symbol the group region becomes. When IsNoise is
	// set, the container ref's index is -1 and the region is discarded.
	Container grammar.SymbolRef

	Start int
	End   int

	Nesting []int

	EndsOnEndOfInput   bool
	KeepEndToken       bool
	AdvanceByCharacter bool
	IsNoise            bool
}

// FailureTarget marks a DFA transition that explicitly fails instead of
// moving to another state.
const FailureTarget = -1

// DFATransition moves the tokenizer to Target on any character in the
// closed range [Lo, Hi]. A Target of FailureTarget explicitly rejects.
type DFATransition struct {
	Lo     rune
	Hi     rune
	Target int
}

// DFAAccept is one accept symbol of a DFA state in (priority, symbol)
// form. More than one accept on a state is a tokenizer conflict, which the
// packed form preserves.
type DFAAccept struct {
	Priority int
	Symbol   grammar.SymbolRef
}

// DFAState is one packed tokenizer state.
type DFAState struct {
	// Transitions is ordered by range start; ranges do not overlap.
	Transitions []DFATransition

	// Default is the target for characters outside every explicit range,
	// or FailureTarget when there is none.
	Default int

	// Accepts lists the accept symbols of the state, lowest priority
	// first. Empty for non-accepting states.
	Accepts []DFAAccept
}

// LRActionKind is the kind of an LALR ACTION entry.
type LRActionKind byte

const (
	// LRError is the implicit kind of any (state, token) pair with no
	// entry; it is also written explicitly for non-associative operator
	// ties.
	LRError LRActionKind = iota
	LRShift
	LRReduce
	LRAccept
)

func (k LRActionKind) String() string {
	switch k {
	case LRError:
		return "error"
	case LRShift:
		return "shift"
	case LRReduce:
		return "reduce"
	case LRAccept:
		return "accept"
	default:
		return "LRActionKind(?)"
	}
}

// LRAction is one ACTION table entry. Payload is the target state for
// LRShift and the production index for LRReduce; other kinds ignore it.
type LRAction struct {
	Kind    LRActionKind
	Payload int
}

// TermAction pairs a token id (see Grammar.TokenID) with its action.
type TermAction struct {
	Token  int
	Action LRAction
}

// NTGoto pairs a nonterminal index with the GOTO target state.
type NTGoto struct {
	Nonterminal int
	State       int
}

// LRState is one packed parser state.
type LRState struct {
	// Actions is ordered by token id.
	Actions []TermAction

	// EOF is the action taken when input is exhausted.
	EOF LRAction

	// Gotos is ordered by nonterminal index.
	Gotos []NTGoto
}

// Grammar is a fully built grammar, packed into contiguous tables. It is
// immutable after construction; nothing in the runtime ever writes to it.
type Grammar struct {
	Name          string
	Source        string
	CaseSensitive bool

	Terminals    []Terminal
	Noise        []string
	GroupStarts  []string
	GroupEnds    []string
	Nonterminals []string
	Virtuals     []string

	Productions []Production
	Groups      []Group

	DFA  []DFAState
	LALR []LRState

	// Start is the index of the start nonterminal.
	Start int
}

// TokenID maps a parser-visible symbol ref (a terminal or a virtual
// terminal) to its index in the flat token space the ACTION table is keyed
// by: terminals first, then virtuals.
func (g *Grammar) TokenID(ref grammar.SymbolRef) int {
	if ref.Kind == grammar.KindVirtual {
		return len(g.Terminals) + ref.Index
	}
	return ref.Index
}

// TokenName returns the display name of the given token id.
func (g *Grammar) TokenName(token int) string {
	if token < len(g.Terminals) {
		return g.Terminals[token].Name
	}
	return g.Virtuals[token-len(g.Terminals)]
}

// TokenCount returns the size of the flat token space.
func (g *Grammar) TokenCount() int {
	return len(g.Terminals) + len(g.Virtuals)
}

// TokenHidden returns whether the given token id is excluded from
// expected-token lists.
func (g *Grammar) TokenHidden(token int) bool {
	return token < len(g.Terminals) && g.Terminals[token].Hidden
}

// SymbolName returns the display name of any packed symbol ref.
func (g *Grammar) SymbolName(ref grammar.SymbolRef) string {
	switch ref.Kind {
	case grammar.KindTerminal:
		return g.Terminals[ref.Index].Name
	case grammar.KindNoise:
		if ref.Index < 0 {
			return "(discard)"
		}
		return g.Noise[ref.Index]
	case grammar.KindGroupStart:
		return g.GroupStarts[ref.Index]
	case grammar.KindGroupEnd:
		return g.GroupEnds[ref.Index]
	case grammar.KindNonterminal:
		return g.Nonterminals[ref.Index]
	case grammar.KindVirtual:
		return g.Virtuals[ref.Index]
	default:
		return ref.String()
	}
}
