package lex

import (
	"github.com/dekarrin/esox/grammar"
)

// Chain is an ordered list of tokenizers consulted in turn for each token.
// Custom tokenizers come first and may emit virtual terminals; the default
// DFA tokenizer is always last. A tokenizer that returns an OutNone
// outcome passes the decision down the chain.
type Chain struct {
	tokenizers []Tokenizer
}

// NewChain builds a chain from the given tokenizers, in consultation
// order. The caller appends the default tokenizer itself; parser
// construction in the root package does this for every parser it builds.
func NewChain(tokenizers ...Tokenizer) *Chain {
	return &Chain{tokenizers: tokenizers}
}

// Next produces the next token from the chain. A tokenizer suspended on
// the reader is consulted first, resuming exactly where it left off;
// otherwise each tokenizer gets its chance in order.
func (c *Chain) Next(rd Reader, ctx *grammar.RunContext) Outcome {
	if tk := rd.SuspendedTokenizer(); tk != nil {
		out := tk.NextToken(rd, ctx)
		if out.Kind != OutNone {
			return out
		}
		// a tokenizer that suspends and then has no opinion is odd, but
		// fall through to the full chain rather than dropping input.
	}

	for _, tk := range c.tokenizers {
		out := tk.NextToken(rd, ctx)
		if out.Kind != OutNone {
			return out
		}
	}

	// no tokenizer had an opinion; with input left that is a caller bug
	// (the default tokenizer always decides), so report end of input.
	return Outcome{Kind: OutEOF}
}
