// Package lex is the runtime tokenizer half of the parsing engine. It
// consumes characters from a Reader in a resumable fashion, drives the
// packed DFA to produce tokens, implements group mode, and lets callers
// splice their own tokenizers in front of the default one.
package lex

import (
	"fmt"

	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/grammar"
)

// Token is one token delivered to the parser.
type Token struct {
	// Symbol is the token's symbol: a KindTerminal or KindVirtual ref.
	Symbol grammar.SymbolRef

	// Lexeme is the matched text as it appeared in the input. Virtual
	// tokens may leave it empty.
	Lexeme string

	// Value is the token's semantic value, produced by the terminal's
	// transformer (or the lexeme itself when the terminal has none).
	Value any

	// Pos is the position of the token's first character.
	Pos diag.Position
}

func (t Token) String() string {
	return fmt.Sprintf("(%s %q @%s)", t.Symbol, t.Lexeme, t.Pos)
}

// OutcomeKind says what a tokenizer did when asked for the next token.
type OutcomeKind int

const (
	// OutNone means this tokenizer has no opinion on the input here; the
	// next tokenizer in the chain is consulted.
	OutNone OutcomeKind = iota

	// OutToken delivers a token.
	OutToken

	// OutEOF means input is exhausted and final.
	OutEOF

	// OutSuspend means the tokenizer ran out of buffered input mid-match
	// and has stored its resumption state; the caller must supply more
	// input and re-invoke.
	OutSuspend

	// OutError delivers a diagnostic that aborts the session.
	OutError
)

// Outcome is the result of one tokenizer invocation.
type Outcome struct {
	Kind  OutcomeKind
	Token Token
	Err   *diag.Diagnostic
}

// Tokenizer produces tokens from a Reader. Implementations must be
// resumable: when they cannot finish a token because the Reader's buffer
// ran dry on a non-final block, they store whatever they need in the
// Reader's state store, call SuspendTokenizer on the reader, and return an
// OutSuspend outcome.
type Tokenizer interface {
	// NextToken attempts to produce the next token. ctx carries the
	// caller's session state for transformer invocations.
	NextToken(rd Reader, ctx *grammar.RunContext) Outcome
}
