package chars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Canonicalize(t *testing.T) {
	testCases := []struct {
		name          string
		input         []Range
		caseSensitive bool
		expect        []Range
	}{
		{
			name:          "empty input",
			input:         nil,
			caseSensitive: true,
			expect:        nil,
		},
		{
			name:          "single range",
			input:         []Range{{Lo: 'a', Hi: 'z'}},
			caseSensitive: true,
			expect:        []Range{{Lo: 'a', Hi: 'z'}},
		},
		{
			name:          "unsorted ranges are sorted",
			input:         []Range{{Lo: 'x', Hi: 'z'}, {Lo: 'a', Hi: 'c'}},
			caseSensitive: true,
			expect:        []Range{{Lo: 'a', Hi: 'c'}, {Lo: 'x', Hi: 'z'}},
		},
		{
			name:          "overlapping ranges merge",
			input:         []Range{{Lo: 'a', Hi: 'm'}, {Lo: 'g', Hi: 'z'}},
			caseSensitive: true,
			expect:        []Range{{Lo: 'a', Hi: 'z'}},
		},
		{
			name:          "adjacent ranges merge",
			input:         []Range{{Lo: 'a', Hi: 'm'}, {Lo: 'n', Hi: 'z'}},
			caseSensitive: true,
			expect:        []Range{{Lo: 'a', Hi: 'z'}},
		},
		{
			name:          "inverted-bounds range is dropped",
			input:         []Range{{Lo: 'z', Hi: 'a'}, {Lo: 'q', Hi: 'q'}},
			caseSensitive: true,
			expect:        []Range{{Lo: 'q', Hi: 'q'}},
		},
		{
			name:          "case-insensitive single char folds",
			input:         []Range{{Lo: 'a', Hi: 'a'}},
			caseSensitive: false,
			expect:        []Range{{Lo: 'A', Hi: 'A'}, {Lo: 'a', Hi: 'a'}},
		},
		{
			name:          "case-insensitive letter range folds",
			input:         []Range{{Lo: 'a', Hi: 'z'}},
			caseSensitive: false,
			expect:        []Range{{Lo: 'A', Hi: 'Z'}, {Lo: 'a', Hi: 'z'}},
		},
		{
			name:          "case-insensitive digits are unchanged",
			input:         []Range{{Lo: '0', Hi: '9'}},
			caseSensitive: false,
			expect:        []Range{{Lo: '0', Hi: '9'}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := Canonicalize(tc.input, tc.caseSensitive)

			assert.Equal(tc.expect, actual)
			assert.True(IsCanonical(actual))
		})
	}
}

func Test_Canonicalize_idempotent(t *testing.T) {
	assert := assert.New(t)

	// setup
	input := []Range{{Lo: 'x', Hi: 'z'}, {Lo: 'a', Hi: 'm'}, {Lo: 'c', Hi: 'n'}}

	// execute
	once := Canonicalize(input, true)
	twice := Canonicalize(once, true)

	// assert
	assert.Equal(once, twice)
}

func Test_IsCanonical(t *testing.T) {
	testCases := []struct {
		name   string
		input  []Range
		expect bool
	}{
		{"empty", nil, true},
		{"single", []Range{{Lo: 'a', Hi: 'z'}}, true},
		{"sorted disjoint", []Range{{Lo: 'a', Hi: 'c'}, {Lo: 'x', Hi: 'z'}}, true},
		{"overlap", []Range{{Lo: 'a', Hi: 'm'}, {Lo: 'g', Hi: 'z'}}, false},
		{"adjacent", []Range{{Lo: 'a', Hi: 'm'}, {Lo: 'n', Hi: 'z'}}, false},
		{"unsorted", []Range{{Lo: 'x', Hi: 'z'}, {Lo: 'a', Hi: 'c'}}, false},
		{"inverted bounds", []Range{{Lo: 'z', Hi: 'a'}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := IsCanonical(tc.input)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Contains(t *testing.T) {
	assert := assert.New(t)

	ranges := Canonicalize([]Range{{Lo: 'a', Hi: 'c'}, {Lo: 'x', Hi: 'z'}}, true)

	assert.True(Contains(ranges, 'a'))
	assert.True(Contains(ranges, 'b'))
	assert.True(Contains(ranges, 'z'))
	assert.False(Contains(ranges, 'd'))
	assert.False(Contains(ranges, 'w'))
	assert.False(Contains(ranges, ' '))
}

func Test_RangeMap(t *testing.T) {
	assert := assert.New(t)

	// setup
	var m RangeMap[string]

	// execute
	err1 := m.Add('a', 'f', "low")
	err2 := m.Add('x', 'z', "high")
	err3 := m.Add('e', 'g', "overlaps low")
	err4 := m.Add('z', 'a', "backwards")

	// assert
	assert.NoError(err1)
	assert.NoError(err2)
	assert.Error(err3)
	assert.Error(err4)
	assert.Equal(2, m.Len())

	v, ok := m.TryFind('c')
	assert.True(ok)
	assert.Equal("low", v)

	v, ok = m.TryFind('y')
	assert.True(ok)
	assert.Equal("high", v)

	_, ok = m.TryFind('m')
	assert.False(ok)
}

func Test_RangeMap_insertOutOfOrder(t *testing.T) {
	assert := assert.New(t)

	var m RangeMap[int]

	assert.NoError(m.Add('x', 'z', 3))
	assert.NoError(m.Add('a', 'c', 1))
	assert.NoError(m.Add('g', 'j', 2))

	var order []int
	m.Each(func(lo, hi rune, val int) {
		order = append(order, val)
	})
	assert.Equal([]int{1, 2, 3}, order)
}
