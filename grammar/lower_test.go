package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/regex"
)

func hasCode(diags []diag.Diagnostic, code diag.Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func Test_Lower_numbersReachableSymbols(t *testing.T) {
	assert := assert.New(t)

	// setup
	b := NewBuilder("test")
	b.Noise("Whitespace", regex.Plus(regex.Chars(" \t")))
	num := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)
	unused := b.Terminal("Unused", regex.Literal("?"), nil)
	plus := b.Literal("+")

	expr := b.Nonterminal("EXPR")
	expr.SetProductions(
		NewProduction(expr, plus, num),
		NewProduction(num),
	)

	// execute
	def, diags := b.Lower(expr)

	// assert
	assert.NotNil(def)
	assert.False(diag.HasErrors(diags))

	assert.Len(def.Terminals, 2, "only reachable terminals are numbered")
	assert.Equal("Number", def.Terminals[0].Name)
	assert.Equal(`"+"`, def.Terminals[1].Name)
	assert.Len(def.Noise, 1, "noise is always included")
	assert.Len(def.Nonterminals, 1)
	assert.Equal(0, def.Start)
	assert.Len(def.Productions, 2)

	_ = unused
}

func Test_Lower_literalsWithEqualTextCollapse(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder("test")
	num := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)
	plus1 := b.Literal("+")
	plus2 := b.Literal("+")

	assert.Same(plus1, plus2)

	expr := b.Nonterminal("EXPR")
	expr.SetProductions(
		NewProduction(num, plus1, num),
	)

	def, diags := b.Lower(expr)

	assert.NotNil(def)
	assert.False(diag.HasErrors(diags))
	assert.Len(def.Terminals, 2)
}

func Test_Lower_emptyNonterminalIsError(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder("test")
	num := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)

	expr := b.Nonterminal("EXPR")
	stmt := b.Nonterminal("STMT")
	expr.SetProductions(
		NewProduction(num, stmt),
	)
	// STMT never gets productions

	def, diags := b.Lower(expr)

	assert.Nil(def)
	assert.True(hasCode(diags, diag.CodeEmptyNonterminal))
}

func Test_Lower_duplicateProductionIsError(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder("test")
	num := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)

	expr := b.Nonterminal("EXPR")
	expr.SetProductions(
		NewProduction(num),
		NewProduction(num),
	)

	def, diags := b.Lower(expr)

	assert.Nil(def)
	assert.True(hasCode(diags, diag.CodeDuplicateProduction))
}

func Test_Lower_duplicateNameIsError(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder("test")
	n1 := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)
	n2 := b.Terminal("Number", regex.Plus(regex.Chars("abc")), nil)

	expr := b.Nonterminal("EXPR")
	expr.SetProductions(
		NewProduction(n1, n2),
	)

	def, diags := b.Lower(expr)

	assert.Nil(def)
	assert.True(hasCode(diags, diag.CodeDuplicateSpecialName))
}

func Test_Lower_nullableSymbolIsError(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder("test")
	tm := b.Terminal("MaybeEmpty", regex.Star(regex.Chars("ab")), nil)

	expr := b.Nonterminal("EXPR")
	expr.SetProductions(
		NewProduction(tm),
	)

	def, diags := b.Lower(expr)

	assert.Nil(def)
	assert.True(hasCode(diags, diag.CodeNullableSymbol))
}

func Test_Lower_reusedGroupStartIsError(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder("test")
	num := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)
	b.AddBlockComment("/*", "*/")
	b.AddLineComment("/*")

	expr := b.Nonterminal("EXPR")
	expr.SetProductions(
		NewProduction(num),
	)

	def, diags := b.Lower(expr)

	assert.Nil(def)
	assert.True(hasCode(diags, diag.CodeDuplicateSpecialName))
}

func Test_Lower_sharedGroupEnds(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder("test")
	num := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)
	b.AddLineComment("//")
	b.AddLineComment("#")

	expr := b.Nonterminal("EXPR")
	expr.SetProductions(
		NewProduction(num),
	)

	def, diags := b.Lower(expr)

	assert.NotNil(def)
	assert.False(diag.HasErrors(diags))
	assert.Len(def.GroupStarts, 2)
	assert.Len(def.GroupEnds, 1, "line groups share the NewLine end symbol")
	assert.Equal(def.Groups[0].End, def.Groups[1].End)
}

func Test_Lower_voidRegexWarns(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder("test")
	dead := b.Terminal("Dead", regex.Seq(regex.Chars("a"), regex.Void{}), nil)
	live := b.Terminal("Live", regex.Chars("x"), nil)

	expr := b.Nonterminal("EXPR")
	expr.SetProductions(
		NewProduction(live, dead),
	)

	def, diags := b.Lower(expr)

	assert.NotNil(def, "void regexes warn; they do not fail the build")
	assert.True(hasCode(diags, diag.CodeRegexUnmatchable))
}

func Test_SetProductions_firstCallWins(t *testing.T) {
	assert := assert.New(t)

	var logged []string
	b := NewBuilder("test").SetLogger(func(msg string) {
		logged = append(logged, msg)
	})
	num := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)
	word := b.Terminal("Word", regex.Plus(regex.Between('a', 'z')), nil)

	expr := b.Nonterminal("EXPR")
	expr.SetProductions(NewProduction(num))
	expr.SetProductions(NewProduction(word))

	def, diags := b.Lower(expr)

	assert.NotNil(def)
	assert.False(diag.HasErrors(diags))
	assert.NotEmpty(logged, "second SetProductions warns to the logger")
	assert.Len(def.Terminals, 1)
	assert.Equal("Number", def.Terminals[0].Name)
}

func Test_Lower_virtualTerminals(t *testing.T) {
	assert := assert.New(t)

	b := NewBuilder("test")
	name := b.Terminal("Name", regex.Plus(regex.Between('A', 'Z')), nil)
	blockStart := b.VirtualTerminal("BlockStart")
	blockEnd := b.VirtualTerminal("BlockEnd")

	stmt := b.Nonterminal("STMT")
	stmt.SetProductions(
		NewProduction(name),
		NewProduction(blockStart, stmt, blockEnd),
	)

	def, diags := b.Lower(stmt)

	assert.NotNil(def)
	assert.False(diag.HasErrors(diags))
	assert.Len(def.Virtuals, 2)
	assert.Equal("BlockStart", def.Virtuals[0].Name)

	// the virtual refs in the production handle point at the virtual
	// table
	p := def.Productions[1]
	assert.Equal(KindVirtual, p.Handle[0].Kind)
	assert.Equal(0, p.Handle[0].Index)
}
