package stockform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveQuantity_BlankMeansUnlimited(t *testing.T) {
	quantity, remaining, err := ResolveQuantity("", 4)

	require.NoError(t, err)
	assert.Nil(t, quantity)
	assert.True(t, remaining.Unlimited)
	assert.Equal(t, UnlimitedDisplay, remaining.String())
}

func TestResolveQuantity_ZeroStaysZero(t *testing.T) {
	quantity, remaining, err := ResolveQuantity("0", 0)

	require.NoError(t, err)
	require.NotNil(t, quantity)
	assert.Equal(t, int64(0), *quantity)
	assert.False(t, remaining.Unlimited)
	assert.Equal(t, "0", remaining.String())
}

func TestResolveQuantity_SubtractsBookings(t *testing.T) {
	quantity, remaining, err := ResolveQuantity("10", 4)

	require.NoError(t, err)
	require.NotNil(t, quantity)
	assert.Equal(t, int64(10), *quantity)
	assert.Equal(t, "6", remaining.String())
}

func TestResolveQuantity_RemainingDisplayFloorsAtZero(t *testing.T) {
	_, remaining, err := ResolveQuantity("2", 5)

	require.NoError(t, err)
	assert.Equal(t, int64(-3), remaining.Count)
	assert.Equal(t, "0", remaining.String())
}

func TestResolveQuantity_TrimsWhitespace(t *testing.T) {
	quantity, _, err := ResolveQuantity(" 12 ", 0)

	require.NoError(t, err)
	require.NotNil(t, quantity)
	assert.Equal(t, int64(12), *quantity)
}

func TestResolveQuantity_RejectsNonNumericInput(t *testing.T) {
	_, _, err := ResolveQuantity("a lot", 0)

	assert.Error(t, err)
}
