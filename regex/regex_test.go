package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/esox/chars"
)

func Test_Lower_literalExpansion(t *testing.T) {
	assert := assert.New(t)

	// setup
	lw := NewLowerer()

	// execute
	low := lw.Lower(Literal("ab"), true)

	// assert
	concat, ok := low.Term.(Concat)
	assert.True(ok, "lowered literal should be a Concat")
	assert.Len(concat, 2)

	first, ok := concat[0].(CharSet)
	assert.True(ok)
	assert.Equal([]chars.Range{{Lo: 'a', Hi: 'a'}}, first.Ranges)

	second, ok := concat[1].(CharSet)
	assert.True(ok)
	assert.Equal([]chars.Range{{Lo: 'b', Hi: 'b'}}, second.Ranges)
}

func Test_Lower_caseFolding(t *testing.T) {
	assert := assert.New(t)

	lw := NewLowerer()

	low := lw.Lower(Literal("a"), false)

	concat := low.Term.(Concat)
	cs := concat[0].(CharSet)
	assert.Equal([]chars.Range{{Lo: 'A', Hi: 'A'}, {Lo: 'a', Hi: 'a'}}, cs.Ranges)
}

func Test_Lower_caseOverrideDissolves(t *testing.T) {
	assert := assert.New(t)

	lw := NewLowerer()

	// the override forces case-sensitivity even under an insensitive
	// grammar flag
	low := lw.Lower(CaseSensitive(Literal("a"), true), false)

	concat := low.Term.(Concat)
	cs := concat[0].(CharSet)
	assert.Equal([]chars.Range{{Lo: 'a', Hi: 'a'}}, cs.Ranges)
}

func Test_Lower_cacheReturnsSameResult(t *testing.T) {
	assert := assert.New(t)

	lw := NewLowerer()
	r := Seq(Literal("if"), Star(Chars("ab")))

	low1 := lw.Lower(r, true)
	low2 := lw.Lower(r, true)

	assert.Equal(low1, low2)
}

func Test_Nullable(t *testing.T) {
	testCases := []struct {
		name   string
		input  Regex
		expect bool
	}{
		{"charset", Chars("ab"), false},
		{"literal", Literal("hi"), false},
		{"empty literal", Literal(""), true},
		{"star", Star(Chars("a")), true},
		{"plus", Plus(Chars("a")), false},
		{"optional", Optional(Chars("a")), true},
		{"void", Void{}, false},
		{"concat of non-nullable", Seq(Chars("a"), Chars("b")), false},
		{"concat of nullables", Seq(Star(Chars("a")), Optional(Chars("b"))), true},
		{"alt with one nullable", AnyOf(Chars("a"), Star(Chars("b"))), true},
		{"alt with no nullable", AnyOf(Chars("a"), Literal("xy")), false},
		{"bounded loop from zero", Repeat(0, 3, Chars("a")), true},
		{"bounded loop from one", Repeat(1, 3, Chars("a")), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := Nullable(tc.input)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Matchable(t *testing.T) {
	testCases := []struct {
		name   string
		input  Regex
		expect bool
	}{
		{"charset", Chars("ab"), true},
		{"empty charset", CharSet{}, false},
		{"inverted empty charset", NotChars(""), true},
		{"void", Void{}, false},
		{"concat containing void", Seq(Chars("a"), Void{}), false},
		{"alt with one live branch", AnyOf(Void{}, Chars("a")), true},
		{"alt of only voids", AnyOf(Void{}, Void{}), false},
		{"void bypassed by loop", Star(Void{}), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := Matchable(tc.input)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_ContainsVoid(t *testing.T) {
	assert := assert.New(t)

	assert.False(ContainsVoid(Seq(Chars("a"), Star(Chars("b")))))
	assert.True(ContainsVoid(Seq(Chars("a"), Void{})))
	assert.True(ContainsVoid(AnyOf(Chars("a"), Seq(Chars("b"), Void{}))))
	assert.True(ContainsVoid(Star(Void{})))
}
