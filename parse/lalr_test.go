package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/pack"
	"github.com/dekarrin/esox/regex"
)

func conflictsIn(diags []diag.Diagnostic) []diag.LrConflict {
	var out []diag.LrConflict
	for _, d := range diags {
		if d.Code == diag.CodeLrConflict {
			out = append(out, d.Message.(diag.LrConflict))
		}
	}
	return out
}

func Test_Build_dragonBookGrammar455(t *testing.T) {
	assert := assert.New(t)

	// setup: the purple dragon book's LALR(1) example grammar 4.55:
	//   S -> C C
	//   C -> c C | d
	b := grammar.NewBuilder("g4.55")
	c := b.Literal("c")
	d := b.Literal("d")
	S := b.Nonterminal("S")
	C := b.Nonterminal("C")
	S.SetProductions(grammar.NewProduction(C, C))
	C.SetProductions(
		grammar.NewProduction(c, C),
		grammar.NewProduction(d),
	)

	def, ldiags := b.Lower(S)
	assert.NotNil(def)
	assert.False(diag.HasErrors(ldiags))

	// execute
	states, diags, err := Build(context.Background(), def)

	// assert
	assert.NoError(err)
	assert.Empty(conflictsIn(diags))

	// the canonical LR(1) collection has 10 sets; merging cores gets the
	// LALR(1) collection of 7
	assert.Len(states, 7)

	// state 0 shifts both terminals and has gotos for both nonterminals
	assert.Len(states[0].Actions, 2)
	for _, a := range states[0].Actions {
		assert.Equal(pack.LRShift, a.Action.Kind)
	}
	assert.Len(states[0].Gotos, 2)
	assert.Equal(pack.LRError, states[0].EOF.Kind)
}

func Test_Build_reduceReduceConflict(t *testing.T) {
	assert := assert.New(t)

	// setup: A and B both produce x; after shifting x the parser cannot
	// know which to reduce
	b := grammar.NewBuilder("rr")
	x := b.Literal("x")
	S := b.Nonterminal("S")
	A := b.Nonterminal("A")
	B := b.Nonterminal("B")
	S.SetProductions(
		grammar.NewProduction(A),
		grammar.NewProduction(B),
	)
	A.SetProductions(grammar.NewProduction(x))
	B.SetProductions(grammar.NewProduction(x))

	def, ldiags := b.Lower(S)
	assert.NotNil(def)
	assert.False(diag.HasErrors(ldiags))

	// execute
	_, diags, err := Build(context.Background(), def)

	// assert
	assert.NoError(err)
	conflicts := conflictsIn(diags)
	assert.NotEmpty(conflicts)
	assert.Equal(diag.ConflictReduceReduce, conflicts[0].Kind)
}

func Test_Build_shiftReduceConflictWithoutScope(t *testing.T) {
	assert := assert.New(t)

	// setup: the classic ambiguous expression grammar
	b := grammar.NewBuilder("sr")
	plus := b.Literal("+")
	n := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)
	E := b.Nonterminal("EXPR")
	E.SetProductions(
		grammar.NewProduction(E, plus, E),
		grammar.NewProduction(n),
	)

	def, ldiags := b.Lower(E)
	assert.NotNil(def)
	assert.False(diag.HasErrors(ldiags))

	// execute
	_, diags, err := Build(context.Background(), def)

	// assert
	assert.NoError(err)
	conflicts := conflictsIn(diags)
	assert.NotEmpty(conflicts)
	assert.Equal(diag.ConflictShiftReduce, conflicts[0].Kind)
}

func Test_Build_shiftReduceResolvedByScope(t *testing.T) {
	assert := assert.New(t)

	// setup: same grammar, but with + declared left-associative
	b := grammar.NewBuilder("sr-resolved")
	plus := b.Literal("+")
	n := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)
	E := b.Nonterminal("EXPR")
	E.SetProductions(
		grammar.NewProduction(E, plus, E),
		grammar.NewProduction(n),
	)
	b.SetOperatorScope(grammar.LeftAssoc("+"))

	def, ldiags := b.Lower(E)
	assert.NotNil(def)
	assert.False(diag.HasErrors(ldiags))

	// execute
	states, diags, err := Build(context.Background(), def)

	// assert
	assert.NoError(err)
	assert.Empty(conflictsIn(diags))

	// left associativity resolves the E + E . vs + tie towards reduce:
	// some state must reduce the binary production on +
	plusToken := 0 // "+" is declared first, so it is terminal 0
	foundReduceOnPlus := false
	for i := range states {
		for _, a := range states[i].Actions {
			if a.Token == plusToken && a.Action.Kind == pack.LRReduce {
				foundReduceOnPlus = true
			}
		}
	}
	assert.True(foundReduceOnPlus)
}

func Test_Build_nonAssocTieIsErrorEntry(t *testing.T) {
	assert := assert.New(t)

	// setup: == declared non-associative; a == b == c must be a
	// parse-time error, not a build failure
	b := grammar.NewBuilder("nonassoc")
	eq := b.Literal("==")
	n := b.Terminal("Number", regex.Plus(regex.Between('0', '9')), nil)
	E := b.Nonterminal("EXPR")
	E.SetProductions(
		grammar.NewProduction(E, eq, E),
		grammar.NewProduction(n),
	)
	b.SetOperatorScope(grammar.NonAssoc("=="))

	def, ldiags := b.Lower(E)
	assert.NotNil(def)
	assert.False(diag.HasErrors(ldiags))

	// execute
	states, diags, err := Build(context.Background(), def)

	// assert
	assert.NoError(err)
	assert.Empty(conflictsIn(diags), "non-associative ties are not build errors")

	eqToken := 0
	foundErrorEntry := false
	for i := range states {
		for _, a := range states[i].Actions {
			if a.Token == eqToken && a.Action.Kind == pack.LRError {
				foundErrorEntry = true
			}
		}
	}
	assert.True(foundErrorEntry, "the tie should become an explicit error entry")
}

func Test_Build_canceled(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := grammar.NewBuilder("canceled")
	x := b.Literal("x")
	S := b.Nonterminal("S")
	S.SetProductions(grammar.NewProduction(x))

	def, _ := b.Lower(S)
	assert.NotNil(def)

	states, diags, err := Build(ctx, def)

	assert.Error(err)
	assert.Nil(states)
	assert.Nil(diags)
}
