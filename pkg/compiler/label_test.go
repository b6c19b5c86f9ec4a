package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLabelAtSingleLetters(t *testing.T) {
	require.Equal(t, "A", labelAt(0))
	require.Equal(t, "Z", labelAt(25))
}

func TestLabelAtTwoLetterPairs(t *testing.T) {
	require.Equal(t, "AA", labelAt(26))
	require.Equal(t, "AB", labelAt(27))
	require.Equal(t, "ZZ", labelAt(701))
}

func TestLabelGenIsMonotonicAndNeverRepeats(t *testing.T) {
	g := newLabelGen()
	seen := map[string]bool{}
	for i := 0; i < maxLabels; i++ {
		l, err := g.next()
		require.NoError(t, err)
		require.False(t, seen[l], "label %q handed out twice", l)
		seen[l] = true
	}
}

func TestLabelGenExhaustionFailsOn703rd(t *testing.T) {
	g := newLabelGen()
	for i := 0; i < maxLabels; i++ {
		_, err := g.next()
		require.NoError(t, err)
	}
	_, err := g.next()
	require.Error(t, err)
}

func TestGenerateLabelsMatchesLabelAt(t *testing.T) {
	all := generateLabels()
	require.Len(t, all, maxLabels)
	require.Equal(t, "A", all[0])
	require.Equal(t, "ZZ", all[maxLabels-1])
}
