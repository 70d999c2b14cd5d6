// Package grammar contains the declarative grammar builder and the lowered
// grammar definition it produces. A caller declares terminals, nonterminals,
// productions, groups, and operator scopes against a Builder; lowering walks
// the declared graph from the start symbol, numbers everything, validates
// it, and emits a Definition for the DFA and LALR builders to consume.
package grammar

import "fmt"

// SymbolKind partitions the symbols of a finished grammar. Every symbol has
// a unique index within its kind.
type SymbolKind int

const (
	// KindTerminal is matched by the tokenizer and delivered to the parser.
	KindTerminal SymbolKind = iota

	// KindNoise is matched by the tokenizer but never delivered.
	KindNoise

	// KindGroupStart opens a group region.
	KindGroupStart

	// KindGroupEnd closes a group region.
	KindGroupEnd

	// KindNonterminal is the head of productions.
	KindNonterminal

	// KindVirtual is a terminal with no regex, emitted only by user-supplied
	// tokenizers.
	KindVirtual
)

func (k SymbolKind) String() string {
	switch k {
	case KindTerminal:
		return "Terminal"
	case KindNoise:
		return "Noise"
	case KindGroupStart:
		return "Group Start"
	case KindGroupEnd:
		return "Group End"
	case KindNonterminal:
		return "Nonterminal"
	case KindVirtual:
		return "Virtual Terminal"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
}

// SymbolRef identifies a symbol in a lowered grammar by kind and index
// within that kind.
type SymbolRef struct {
	Kind  SymbolKind
	Index int
}

func (r SymbolRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.Index)
}

// IsTokenizerSymbol returns whether refs of this kind come out of the
// tokenizer (as opposed to being parser-side only).
func (r SymbolRef) IsTokenizerSymbol() bool {
	return r.Kind != KindNonterminal
}

// Symbol is anything that can appear in a production handle: terminals,
// virtual terminals, group containers, and nonterminals. Implementations
// all live in this package; they are handed out by a Builder and carry
// builder-arena ids rather than owning each other.
type Symbol interface {
	// SymName returns the display name of the symbol.
	SymName() string

	// builderID returns the arena id of the symbol within its Builder.
	builderID() int
}
