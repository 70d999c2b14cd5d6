// Package esox is a parser toolkit: it turns a declared grammar into a
// working tokenizer and LALR(1) parser pair, with no code generation step
// in between. Grammars are declared with the builder in the grammar
// package, built into an immutable packed form, and executed by a
// streaming, resumable runtime that applies caller-supplied semantic
// callbacks as it goes.
//
// It's named for the pike genus. Pike are ambush predators that swallow
// their prey head-first, which is roughly what an LR parser does to its
// input.
package esox

import (
	"context"
	"strings"

	"github.com/dekarrin/esox/automaton"
	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/lex"
	"github.com/dekarrin/esox/pack"
	"github.com/dekarrin/esox/parse"
)

// BuildOptions adjusts grammar building.
type BuildOptions struct {
	// PrioritizeFixedLengthSymbols resolves tokenizer conflicts in favor
	// of fixed-length symbols (literals beat identifier-shaped regexes)
	// when the winner is unique.
	PrioritizeFixedLengthSymbols bool

	// MaxTokenizerStates caps DFA construction; zero means the automaton
	// package default.
	MaxTokenizerStates int
}

// DefaultBuildOptions are the options used by Build when the caller has no
// opinions.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{PrioritizeFixedLengthSymbols: true}
}

// Build lowers the grammar declared on b, constructs its DFA and LALR
// tables, and packs the result into a Parser. All problems found along the
// way are collected and returned together; the Parser is nil if any of
// them is an error. Warnings go to the builder's logger as well.
//
// Build returns ctx.Err with no diagnostics if the context is canceled.
func Build(ctx context.Context, b *grammar.Builder, start *grammar.Nonterminal, opts BuildOptions) (*Parser, []diag.Diagnostic, error) {
	def, diags := b.Lower(start)
	if def == nil {
		return nil, diags, nil
	}

	dfaStates, dfaDiags, err := automaton.Build(ctx, def.TokenizerSymbols(), automaton.Options{
		PrioritizeFixedLengthSymbols: opts.PrioritizeFixedLengthSymbols,
		MaxStates:                    opts.MaxTokenizerStates,
	})
	if err != nil {
		return nil, nil, err
	}
	diags = append(diags, dfaDiags...)

	lalrStates, lalrDiags, err := parse.Build(ctx, def)
	if err != nil {
		return nil, nil, err
	}
	diags = append(diags, lalrDiags...)

	if diag.HasErrors(diags) {
		return nil, diags, nil
	}

	g := packGrammar(def, dfaStates, lalrStates)

	transforms := make([]grammar.Transformer, len(def.Terminals))
	for i := range def.Terminals {
		transforms[i] = def.Terminals[i].Transform
	}
	fusers := make([]grammar.Fuser, len(def.Productions))
	for i := range def.Productions {
		fusers[i] = def.Productions[i].Fuse
	}

	return &Parser{g: g, transforms: transforms, fusers: fusers}, diags, nil
}

// MustBuild is Build for tests and initialization code that knows its
// grammar is good: it panics on any error diagnostic.
func MustBuild(b *grammar.Builder, start *grammar.Nonterminal) *Parser {
	p, diags, err := Build(context.Background(), b, start, DefaultBuildOptions())
	if err != nil {
		panic(err)
	}
	if p == nil {
		msgs := make([]string, 0, len(diags))
		for _, d := range diag.Errors(diags) {
			msgs = append(msgs, d.String())
		}
		panic("grammar build failed:\n" + strings.Join(msgs, "\n"))
	}
	return p
}

// packGrammar collapses a lowered definition and its built tables into the
// packed form.
func packGrammar(def *grammar.Definition, dfa []pack.DFAState, lalr []pack.LRState) *pack.Grammar {
	g := &pack.Grammar{
		Name:          def.Name,
		Source:        def.Source,
		CaseSensitive: def.CaseSensitive,
		DFA:           dfa,
		LALR:          lalr,
		Start:         def.Start,
	}

	for i := range def.Terminals {
		g.Terminals = append(g.Terminals, pack.Terminal{
			Name:   def.Terminals[i].Name,
			Hidden: def.Terminals[i].Hidden,
		})
	}
	for i := range def.Noise {
		g.Noise = append(g.Noise, def.Noise[i].Name)
	}
	for i := range def.GroupStarts {
		g.GroupStarts = append(g.GroupStarts, def.GroupStarts[i].Name)
	}
	for i := range def.GroupEnds {
		g.GroupEnds = append(g.GroupEnds, def.GroupEnds[i].Name)
	}
	for i := range def.Nonterminals {
		g.Nonterminals = append(g.Nonterminals, def.Nonterminals[i].Name)
	}
	for i := range def.Virtuals {
		g.Virtuals = append(g.Virtuals, def.Virtuals[i].Name)
	}
	for i := range def.Productions {
		g.Productions = append(g.Productions, pack.Production{
			Head:   def.Productions[i].Head,
			Handle: def.Productions[i].Handle,
		})
	}
	for i := range def.Groups {
		gd := def.Groups[i]
		g.Groups = append(g.Groups, pack.Group{
			Name:               gd.Name,
			Container:          gd.Container,
			Start:              gd.Start,
			End:                gd.End,
			Nesting:            gd.Nesting,
			EndsOnEndOfInput:   gd.EndsOnEndOfInput,
			KeepEndToken:       gd.KeepEndToken,
			AdvanceByCharacter: gd.AdvanceByCharacter,
			IsNoise:            gd.IsNoise,
		})
	}

	return g
}

// Parser is a built parser: an immutable value pairing the packed grammar
// with its semantic callback tables. One Parser serves any number of
// concurrent parse sessions.
type Parser struct {
	g          *pack.Grammar
	transforms []grammar.Transformer
	fusers     []grammar.Fuser
	customs    []lex.Tokenizer
}

// Grammar returns the parser's packed grammar.
func (p *Parser) Grammar() *pack.Grammar {
	return p.g
}

// WithTokenizers returns a copy of the parser whose sessions consult the
// given tokenizers, in order, before the default one. Custom tokenizers
// are how virtual terminals enter the token stream.
func (p *Parser) WithTokenizers(tks ...lex.Tokenizer) *Parser {
	cp := *p
	cp.customs = append(append([]lex.Tokenizer{}, p.customs...), tks...)
	return &cp
}

func (p *Parser) chain(transforms []grammar.Transformer) *lex.Chain {
	def := lex.NewDefaultTokenizer(p.g, transforms)
	tks := append(append([]lex.Tokenizer{}, p.customs...), def)
	return lex.NewChain(tks...)
}

// Session starts a parse session over rd with the given caller session
// state. Drive it with Run; feed the reader between StatusNeedMoreInput
// returns.
func (p *Parser) Session(rd lex.Reader, userState any) *parse.Driver {
	return parse.NewDriver(p.g, p.fusers, p.chain(p.transforms), rd, userState, false)
}

// Parse parses input in one shot and returns the final semantic value.
// The returned error, when not nil, is a diag.Diagnostic.
func (p *Parser) Parse(input string, userState any) (any, error) {
	d := p.Session(lex.NewStringReader(input), userState)
	switch d.Run() {
	case parse.StatusDone:
		return d.Result(), nil
	default:
		return nil, *d.Err()
	}
}

// SyntaxCheck parses input without invoking any transformer or fuser. It
// fails on the same tokenizer and syntax errors as Parse, at the same
// positions. An error returned by a transformer or fuser makes Parse fail
// but never SyntaxCheck, since those callbacks do not run here.
func (p *Parser) SyntaxCheck(input string) error {
	d := parse.NewDriver(p.g, nil, p.chain(nil), lex.NewStringReader(input), nil, true)
	if d.Run() == parse.StatusFailed {
		return *d.Err()
	}
	return nil
}

// TokenizeAll runs only the tokenizer chain over input, returning every
// token up to end of input.
func (p *Parser) TokenizeAll(input string, userState any) ([]lex.Token, error) {
	rd := lex.NewStringReader(input)
	ch := p.chain(p.transforms)
	ctx := &grammar.RunContext{State: userState}

	var toks []lex.Token
	for {
		out := ch.Next(rd, ctx)
		switch out.Kind {
		case lex.OutToken:
			toks = append(toks, out.Token)
		case lex.OutEOF:
			return toks, nil
		case lex.OutError:
			return toks, *out.Err
		case lex.OutSuspend:
			// a final-block reader never suspends; only a broken custom
			// tokenizer gets here
			return toks, nil
		}
	}
}
