// internal/curve/slippage_test.go
package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlippageBoundOrdering(t *testing.T) {
	for _, amount := range []uint64{1_000, 123_456_789, 1_000_000_000_000} {
		for _, slippage := range []float64{0.01, 0.25, 1.5, 4.99} {
			up, err := ApplySlippageUp(amount, slippage)
			require.NoError(t, err)
			down, err := ApplySlippageDown(amount, slippage)
			require.NoError(t, err)

			assert.Less(t, down, amount, "amount=%d slippage=%v", amount, slippage)
			assert.Greater(t, up, amount, "amount=%d slippage=%v", amount, slippage)
		}
	}
}

func TestSlippageDownFloorsAtZero(t *testing.T) {
	for _, slippage := range []float64{1.0, 1.5, 4.99} {
		down, err := ApplySlippageDown(1_000, slippage)
		require.NoError(t, err)
		assert.Zero(t, down, "slippage=%v must not wrap below zero", slippage)
	}
}

func TestSlippageExactFloor(t *testing.T) {
	up, err := ApplySlippageUp(1_000, 0.155)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_155), up)

	down, err := ApplySlippageDown(1_000, 0.155)
	require.NoError(t, err)
	assert.Equal(t, uint64(845), down)
}

func TestSlippageValidation(t *testing.T) {
	for _, slippage := range []float64{0, -0.1, MaxSlippage, MaxSlippage + 1} {
		_, err := ApplySlippageUp(1_000, slippage)
		assert.ErrorIs(t, err, ErrInvalidSlippage, "slippage=%v", slippage)
		_, err = ApplySlippageDown(1_000, slippage)
		assert.ErrorIs(t, err, ErrInvalidSlippage, "slippage=%v", slippage)
	}
}
