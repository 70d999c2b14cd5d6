package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_StringReader_positionTracking(t *testing.T) {
	assert := assert.New(t)

	// setup
	rd := NewStringReader("ab\ncd")

	// assert initial position
	pos := rd.Position()
	assert.Equal(1, pos.Line)
	assert.Equal(1, pos.Col)
	assert.Equal(0, pos.Index)

	// execute
	rd.Consume(2)
	pos = rd.Position()
	assert.Equal(1, pos.Line)
	assert.Equal(3, pos.Col)
	assert.Equal(2, pos.Index)

	rd.Consume(1) // the newline
	pos = rd.Position()
	assert.Equal(2, pos.Line)
	assert.Equal(1, pos.Col)
	assert.Equal(3, pos.Index)

	rd.Consume(2)
	pos = rd.Position()
	assert.Equal(2, pos.Line)
	assert.Equal(3, pos.Col)
	assert.Equal(5, pos.Index)

	assert.Empty(rd.RemainingCharacters())
	assert.True(rd.IsFinalBlock())
}

func Test_StringReader_consumePastEndIsSafe(t *testing.T) {
	assert := assert.New(t)

	rd := NewStringReader("ab")

	rd.Consume(10)

	assert.Empty(rd.RemainingCharacters())
	assert.Equal(2, rd.Position().Index)
}

func Test_ChunkReader_feedAndFinish(t *testing.T) {
	assert := assert.New(t)

	rd := NewChunkReader()
	assert.False(rd.IsFinalBlock())
	assert.Empty(rd.RemainingCharacters())

	rd.Feed("ab")
	assert.Equal([]rune("ab"), rd.RemainingCharacters())

	rd.Consume(1)
	rd.Feed("cd")
	assert.Equal([]rune("bcd"), rd.RemainingCharacters())

	rd.FinishInput()
	assert.True(rd.IsFinalBlock())

	assert.Panics(func() {
		rd.Feed("more")
	})
}

func Test_SessionState(t *testing.T) {
	assert := assert.New(t)

	var st SessionState

	_, ok := st.Get("missing")
	assert.False(ok)

	k1 := NewStateKey()
	k2 := NewStateKey()
	assert.NotEqual(k1, k2)

	st.Set(k1, 42)
	v, ok := st.Get(k1)
	assert.True(ok)
	assert.Equal(42, v)

	_, ok = st.Get(k2)
	assert.False(ok)

	st.Delete(k1)
	_, ok = st.Get(k1)
	assert.False(ok)
}

func Test_abbreviate(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{"short text", "oops", "oops"},
		{"exactly twenty", "12345678901234567890", "12345678901234567890"},
		{"longer than twenty", "123456789012345678901234", "12345678901234567890"},
		{"line break cuts first", "ab\ncdefghijklmnopqrstuvwxyz", "ab"},
		{"carriage return cuts too", "ab\rcd", "ab"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := abbreviate([]rune(tc.input))

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_groupRun_roundTrip(t *testing.T) {
	assert := assert.New(t)

	// setup
	orig := &groupRun{
		Root:  1,
		Stack: []int{1, 0, 1},
		Buf:   []rune("/* some { nested } text"),
	}
	orig.StartPos.Line = 3
	orig.StartPos.Col = 14
	orig.StartPos.Index = 52

	// execute
	data, err := orig.MarshalBinary()
	assert.NoError(err)

	back := &groupRun{}
	err = back.UnmarshalBinary(data)

	// assert
	assert.NoError(err)
	assert.Equal(orig, back)
}
