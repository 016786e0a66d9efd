package kleene

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var all = []Truth{True, False, Unknown}

func TestNot(t *testing.T) {
	require.Equal(t, False, Not(True))
	require.Equal(t, True, Not(False))
	require.Equal(t, Unknown, Not(Unknown))

	for _, v := range all {
		require.Equal(t, v, Not(Not(v)))
	}
}

func TestBinaryTables(t *testing.T) {
	testCases := []struct {
		left, right          Truth
		and, or, implication Truth
	}{
		{True, True, True, True, True},
		{True, False, False, True, False},
		{True, Unknown, Unknown, True, Unknown},
		{False, True, False, True, True},
		{False, False, False, False, True},
		{False, Unknown, False, Unknown, True},
		{Unknown, True, Unknown, True, True},
		{Unknown, False, False, Unknown, Unknown},
		{Unknown, Unknown, Unknown, Unknown, Unknown},
	}

	for idx, testCase := range testCases {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			require.Equal(t, testCase.and, And(testCase.left, testCase.right), "and")
			require.Equal(t, testCase.or, Or(testCase.left, testCase.right), "or")
			require.Equal(t, testCase.implication, Implies(testCase.left, testCase.right), "implies")
		})
	}
}

func TestEmptyJunctions(t *testing.T) {
	require.Equal(t, True, And())
	require.Equal(t, False, Or())
}

func TestDeMorgan(t *testing.T) {
	for _, a := range all {
		for _, b := range all {
			require.Equal(t, Not(And(a, b)), Or(Not(a), Not(b)))
			require.Equal(t, Not(Or(a, b)), And(Not(a), Not(b)))
		}
	}
}

func TestText(t *testing.T) {
	for _, v := range all {
		text, err := v.MarshalText()
		require.NoError(t, err)

		var back Truth
		require.NoError(t, back.UnmarshalText(text))
		require.Equal(t, v, back)
	}

	var v Truth
	require.Error(t, v.UnmarshalText([]byte("maybe")))
	require.True(t, True.IsDetermined())
	require.False(t, Unknown.IsDetermined())
}
