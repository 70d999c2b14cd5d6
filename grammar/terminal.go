package grammar

import (
	"github.com/dekarrin/esox/regex"
)

// Terminal is a builder-side tokenizer symbol: a regular terminal, a noise
// symbol, or a virtual terminal, depending on which Builder method created
// it. Terminals are usable in production handles (noise ones are not; the
// lowerer rejects that).
type Terminal struct {
	id        int
	name      string
	pattern   regex.Regex
	transform Transformer
	kind      SymbolKind
	hidden    bool

	// set when created via Builder.Literal so that the display name can
	// fall back to the quoted text.
	literalText string
	fromLiteral bool
}

// SymName returns the display name of the terminal.
func (t *Terminal) SymName() string {
	return t.name
}

func (t *Terminal) builderID() int {
	return t.id
}

// Hide marks the terminal as hidden, excluding it from the expected-token
// lists of syntax errors. Keywords that are also matched by a broader
// identifier terminal are the usual candidates. Returns the terminal for
// chaining.
func (t *Terminal) Hide() *Terminal {
	t.hidden = true
	return t
}

// Transform replaces the terminal's transformer. Returns the terminal for
// chaining.
func (t *Terminal) Transform(f Transformer) *Terminal {
	t.transform = f
	return t
}

// Pattern returns the regex the terminal was declared with, or nil for a
// virtual terminal.
func (t *Terminal) Pattern() regex.Regex {
	return t.pattern
}
