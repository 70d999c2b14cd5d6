package automaton

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/esox/diag"
	"github.com/dekarrin/esox/grammar"
	"github.com/dekarrin/esox/regex"
)

// sym makes a TokenizerSymbol for the i-th terminal with the given
// pattern, lowered case-sensitively.
func sym(i int, name string, r regex.Regex) grammar.TokenizerSymbol {
	low := regex.NewLowerer().Lower(r, true)
	return grammar.TokenizerSymbol{
		Ref:     grammar.SymbolRef{Kind: grammar.KindTerminal, Index: i},
		Name:    name,
		Pattern: &low,
	}
}

func Test_Build_matchesRegexSemantics(t *testing.T) {
	testCases := []struct {
		name    string
		pattern regex.Regex
		accepts []string
		rejects []string
	}{
		{
			name:    "literal",
			pattern: regex.Literal("if"),
			accepts: []string{"if"},
			rejects: []string{"i", "f", "fi", ""},
		},
		{
			name:    "char range plus",
			pattern: regex.Plus(regex.Between('0', '9')),
			accepts: []string{"0", "42", "999999"},
			rejects: []string{"", "a", " 1"},
		},
		{
			name:    "alternation",
			pattern: regex.AnyOf(regex.Literal("cat"), regex.Literal("car")),
			accepts: []string{"cat", "car"},
			rejects: []string{"ca", "cab"},
		},
		{
			name:    "star tail",
			pattern: regex.Seq(regex.Chars("a"), regex.Star(regex.Chars("b"))),
			accepts: []string{"a", "ab", "abbbb"},
			rejects: []string{"b", ""},
		},
		{
			name: "bounded repetition",
			pattern: regex.Repeat(2, 4, regex.Chars("x")),
			accepts: []string{"xx", "xxx", "xxxx"},
			rejects: []string{"x", ""},
		},
		{
			name: "inverted set string",
			pattern: regex.Seq(
				regex.Literal(`"`),
				regex.Star(regex.NotChars(`"`)),
				regex.Literal(`"`),
			),
			accepts: []string{`""`, `"abc"`, `"a b"`},
			rejects: []string{`"`, `"abc`, `abc"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			// setup
			syms := []grammar.TokenizerSymbol{sym(0, "T", tc.pattern)}

			// execute
			states, diags, err := Build(context.Background(), syms, Options{})

			// assert
			assert.NoError(err)
			assert.False(diag.HasErrors(diags))

			for _, s := range tc.accepts {
				length, _, ok := Match(states, []rune(s))
				assert.True(ok, "should accept %q", s)
				assert.Equal(len([]rune(s)), length, "should match all of %q", s)
			}
			for _, s := range tc.rejects {
				length, _, ok := Match(states, []rune(s))
				fullMatch := ok && length == len([]rune(s))
				assert.False(fullMatch, "should not accept %q", s)
			}
		})
	}
}

func Test_Build_longestMatchWins(t *testing.T) {
	assert := assert.New(t)

	syms := []grammar.TokenizerSymbol{
		sym(0, "Word", regex.Plus(regex.Between('a', 'z'))),
	}

	states, diags, err := Build(context.Background(), syms, Options{})
	assert.NoError(err)
	assert.False(diag.HasErrors(diags))

	length, accept, ok := Match(states, []rune("hello world"))
	assert.True(ok)
	assert.Equal(5, length)
	assert.Equal(0, accept.Symbol.Index)
}

func Test_Build_fixedLengthPrioritization(t *testing.T) {
	assert := assert.New(t)

	// setup: "else" is also matched by the identifier regex
	syms := []grammar.TokenizerSymbol{
		sym(0, "Identifier", regex.Plus(regex.Between('a', 'z'))),
		sym(1, "else", regex.Literal("else")),
	}

	// execute
	states, diags, err := Build(context.Background(), syms, Options{
		PrioritizeFixedLengthSymbols: true,
	})

	// assert
	assert.NoError(err)
	assert.False(diag.HasErrors(diags), "prioritization resolves the overlap")

	_, accept, ok := Match(states, []rune("else"))
	assert.True(ok)
	assert.Equal(1, accept.Symbol.Index, "the literal wins over the identifier")

	_, accept, ok = Match(states, []rune("elsewhere"))
	assert.True(ok)
	assert.Equal(0, accept.Symbol.Index, "longer identifiers still match")
}

func Test_Build_indistinguishableSymbols(t *testing.T) {
	assert := assert.New(t)

	// setup: two identical variable-length regexes cannot be told apart
	syms := []grammar.TokenizerSymbol{
		sym(0, "Word", regex.Plus(regex.Between('a', 'z'))),
		sym(1, "Name", regex.Plus(regex.Between('a', 'z'))),
	}

	// execute
	_, diags, err := Build(context.Background(), syms, Options{
		PrioritizeFixedLengthSymbols: true,
	})

	// assert
	assert.NoError(err)
	found := false
	for _, d := range diags {
		if d.Code == diag.CodeIndistinguishableSymbols {
			found = true
			msg := d.Message.(diag.IndistinguishableSymbols)
			assert.Contains(msg.Names, "Word")
			assert.Contains(msg.Names, "Name")
		}
	}
	assert.True(found, "expected an IndistinguishableSymbols diagnostic")
}

func Test_Build_stateLimit(t *testing.T) {
	assert := assert.New(t)

	syms := []grammar.TokenizerSymbol{
		sym(0, "Word", regex.Plus(regex.Between('a', 'z'))),
		sym(1, "Number", regex.Plus(regex.Between('0', '9'))),
	}

	states, diags, err := Build(context.Background(), syms, Options{MaxStates: 1})

	assert.NoError(err)
	assert.Nil(states)
	assert.True(diag.HasErrors(diags))
	assert.Equal(diag.CodeDfaStateLimitExceeded, diags[0].Code)
}

func Test_Build_canceled(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	syms := []grammar.TokenizerSymbol{
		sym(0, "Word", regex.Plus(regex.Between('a', 'z'))),
	}

	states, diags, err := Build(ctx, syms, Options{})

	assert.Error(err)
	assert.Nil(states)
	assert.Nil(diags)
}

func Test_Build_defaultTransitionOnlyWithInvertedLeaves(t *testing.T) {
	assert := assert.New(t)

	syms := []grammar.TokenizerSymbol{
		sym(0, "Word", regex.Plus(regex.Between('a', 'z'))),
	}

	states, diags, err := Build(context.Background(), syms, Options{})
	assert.NoError(err)
	assert.False(diag.HasErrors(diags))

	for i := range states {
		assert.Equal(-1, states[i].Default, "no inverted leaves means no default transitions")
	}
}
