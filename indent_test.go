package esox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/lex"
	"github.com/dekarrin/esox/pack"
	"github.com/dekarrin/esox/regex"
)

// indentTokenizer is a user tokenizer that turns indentation changes into
// virtual BlockStart/BlockEnd terminals, the way offside-rule languages
// tokenize. It owns the newline-plus-indent prefix of each line and leaves
// everything else to the default tokenizer.
type indentTokenizer struct {
	g          *pack.Grammar
	blockStart grammar.SymbolRef
	blockEnd   grammar.SymbolRef

	stack  []int
	queued []lex.Token
}

func newIndentTokenizer(g *pack.Grammar) *indentTokenizer {
	it := &indentTokenizer{g: g, stack: []int{0}}
	for i, name := range g.Virtuals {
		ref := grammar.SymbolRef{Kind: grammar.KindVirtual, Index: i}
		switch name {
		case "BlockStart":
			it.blockStart = ref
		case "BlockEnd":
			it.blockEnd = ref
		}
	}
	return it
}

func (it *indentTokenizer) emit(ref grammar.SymbolRef, pos diag.Position) lex.Outcome {
	return lex.Outcome{Kind: lex.OutToken, Token: lex.Token{Symbol: ref, Pos: pos}}
}

func (it *indentTokenizer) NextToken(rd lex.Reader, ctx *grammar.RunContext) lex.Outcome {
	if len(it.queued) > 0 {
		tok := it.queued[0]
		it.queued = it.queued[1:]
		return lex.Outcome{Kind: lex.OutToken, Token: tok}
	}

	chars := rd.RemainingCharacters()
	if len(chars) == 0 || chars[0] != '\n' {
		return lex.Outcome{Kind: lex.OutNone}
	}

	// consume the newline and count the indent after it
	n := 1
	indent := 0
	for n < len(chars) && chars[n] == ' ' {
		n++
		indent++
	}
	rd.Consume(n)
	pos := rd.Position()

	top := it.stack[len(it.stack)-1]
	if indent > top {
		it.stack = append(it.stack, indent)
		return it.emit(it.blockStart, pos)
	}

	for indent < it.stack[len(it.stack)-1] {
		it.stack = it.stack[:len(it.stack)-1]
		it.queued = append(it.queued, lex.Token{Symbol: it.blockEnd, Pos: pos})
	}
	if indent != it.stack[len(it.stack)-1] {
		d := diag.NewAt(diag.SeverityError, diag.CodeUserDiagnostic,
			diag.UserDiagnostic{Value: errors.New("unindent does not match any outer indentation level")}, pos)
		return lex.Outcome{Kind: lex.OutError, Err: &d}
	}

	if len(it.queued) > 0 {
		tok := it.queued[0]
		it.queued = it.queued[1:]
		return lex.Outcome{Kind: lex.OutToken, Token: tok}
	}
	return lex.Outcome{Kind: lex.OutNone}
}

func buildIndentParser(t *testing.T) *Parser {
	t.Helper()

	b := grammar.NewBuilder("indent")
	name := b.Terminal("Name", regex.Plus(regex.Between('A', 'Z')), nil)
	blockStart := b.VirtualTerminal("BlockStart")
	blockEnd := b.VirtualTerminal("BlockEnd")

	stmts := b.Nonterminal("STMTS")
	stmt := b.Nonterminal("STMT")
	stmts.SetProductions(
		grammar.NewProduction(stmts, stmt),
		grammar.NewProduction(stmt),
	)
	stmt.SetProductions(
		grammar.NewProduction(name),
		grammar.NewProduction(blockStart, stmts, blockEnd),
	)

	p, diags, err := Build(context.Background(), b, stmts, DefaultBuildOptions())
	if err != nil {
		t.Fatalf("building indent grammar: %v", err)
	}
	if p == nil {
		for _, d := range diags {
			t.Logf("diag: %s", d)
		}
		t.Fatal("indent grammar did not build")
	}
	return p
}

func Test_Indent_virtualTerminals(t *testing.T) {
	assert := assert.New(t)

	// setup
	p := buildIndentParser(t)
	p = p.WithTokenizers(newIndentTokenizer(p.Grammar()))

	// execute
	toks, err := p.TokenizeAll("A\n    B\n    C\n        D\n", nil)

	// assert
	assert.NoError(err)

	var display []string
	for _, tok := range toks {
		if tok.Symbol.Kind == grammar.KindVirtual {
			display = append(display, p.Grammar().SymbolName(tok.Symbol))
		} else {
			display = append(display, tok.Lexeme)
		}
	}
	assert.Equal([]string{
		"A", "BlockStart", "B", "C", "BlockStart", "D", "BlockEnd", "BlockEnd",
	}, display)
}

func Test_Indent_parse(t *testing.T) {
	assert := assert.New(t)

	p := buildIndentParser(t)
	p = p.WithTokenizers(newIndentTokenizer(p.Grammar()))

	_, err := p.Parse("A\n    B\n    C\n        D\n", nil)

	assert.NoError(err)
}

func Test_Indent_misDedent(t *testing.T) {
	assert := assert.New(t)

	p := buildIndentParser(t)
	p = p.WithTokenizers(newIndentTokenizer(p.Grammar()))

	_, err := p.TokenizeAll("A\n    B\n   C\n", nil)

	assert.Error(err)
	d := err.(diag.Diagnostic)
	assert.Equal(diag.CodeUserDiagnostic, d.Code)
	assert.Equal(3, d.Pos.Line)
	assert.Equal(4, d.Pos.Col)
	assert.Contains(d.Message.(diag.UserDiagnostic).Value.(error).Error(), "unindent does not match")
}
