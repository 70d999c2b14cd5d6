package lex

import (
	"github.com/dekarrin/esox/diag"
)

// Reader is the input contract the runtime consumes characters through. It
// exposes a sliding window of not-yet-consumed characters; the runtime
// never retains the window past the call it received it in.
type Reader interface {
	// RemainingCharacters returns the yet-unconsumed window. The slice is
	// only valid until the next call on the Reader.
	RemainingCharacters() []rune

	// IsFinalBlock returns true iff no more input will ever arrive.
	IsFinalBlock() bool

	// Consume advances the window by n characters, updating the position.
	Consume(n int)

	// Position returns the position of the first unconsumed character.
	Position() diag.Position

	// State returns the per-session store tokenizers persist resumption
	// data in.
	State() *SessionState

	// SuspendTokenizer records that tk must be the first tokenizer
	// consulted on the next invocation, skipping the ones before it in
	// the chain.
	SuspendTokenizer(tk Tokenizer)

	// SuspendedTokenizer returns the tokenizer recorded by
	// SuspendTokenizer and clears it, or nil.
	SuspendedTokenizer() Tokenizer
}

// positioner implements shared consume-and-track logic for the provided
// readers.
type positioner struct {
	buf []rune
	cur int

	line int
	col  int
}

func (p *positioner) remaining() []rune {
	return p.buf[p.cur:]
}

func (p *positioner) consume(n int) {
	for i := 0; i < n && p.cur < len(p.buf); i++ {
		if p.buf[p.cur] == '\n' {
			p.line++
			p.col = 1
		} else {
			p.col++
		}
		p.cur++
	}
}

func (p *positioner) position() diag.Position {
	return diag.Position{Line: p.line, Col: p.col, Index: p.cur}
}

// StringReader is a one-shot Reader over a complete input string. It
// reports IsFinalBlock from the outset, so sessions reading from it never
// suspend.
type StringReader struct {
	positioner
	state     SessionState
	suspended Tokenizer
}

// NewStringReader creates a StringReader over s.
func NewStringReader(s string) *StringReader {
	return &StringReader{
		positioner: positioner{buf: []rune(s), line: 1, col: 1},
	}
}

func (r *StringReader) RemainingCharacters() []rune { return r.remaining() }
func (r *StringReader) IsFinalBlock() bool          { return true }
func (r *StringReader) Consume(n int)               { r.consume(n) }
func (r *StringReader) Position() diag.Position     { return r.position() }
func (r *StringReader) State() *SessionState        { return &r.state }

func (r *StringReader) SuspendTokenizer(tk Tokenizer) {
	r.suspended = tk
}

func (r *StringReader) SuspendedTokenizer() Tokenizer {
	tk := r.suspended
	r.suspended = nil
	return tk
}

// ChunkReader is a streaming Reader fed input in chunks. Feed appends a
// chunk; FinishInput marks that no more will arrive. Until FinishInput is
// called, tokenizers that run out of buffered characters suspend instead
// of failing.
type ChunkReader struct {
	positioner
	final     bool
	state     SessionState
	suspended Tokenizer
}

// NewChunkReader creates an empty ChunkReader.
func NewChunkReader() *ChunkReader {
	return &ChunkReader{
		positioner: positioner{line: 1, col: 1},
	}
}

// Feed appends a chunk of input. Panics if FinishInput was already
// called; feeding a finished reader is a caller bug.
func (r *ChunkReader) Feed(chunk string) {
	if r.final {
		panic("Feed called after FinishInput")
	}
	r.buf = append(r.buf, []rune(chunk)...)
}

// FinishInput marks that no more input will arrive.
func (r *ChunkReader) FinishInput() {
	r.final = true
}

func (r *ChunkReader) RemainingCharacters() []rune { return r.remaining() }
func (r *ChunkReader) IsFinalBlock() bool          { return r.final }
func (r *ChunkReader) Consume(n int)               { r.consume(n) }
func (r *ChunkReader) Position() diag.Position     { return r.position() }
func (r *ChunkReader) State() *SessionState        { return &r.state }

func (r *ChunkReader) SuspendTokenizer(tk Tokenizer) {
	r.suspended = tk
}

func (r *ChunkReader) SuspendedTokenizer() Tokenizer {
	tk := r.suspended
	r.suspended = nil
	return tk
}
