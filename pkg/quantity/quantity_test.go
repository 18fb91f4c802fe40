package quantity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromKilogramsRoundsToNearestGram(t *testing.T) {
	cases := []struct {
		kg   float64
		want Grams
	}{
		{0, 0},
		{1, 1000},
		{2.5, 2500},
		{0.001, 1},
		{12.3456, 12346},
		{0.0004, 0},
	}

	for _, tc := range cases {
		got, err := FromKilograms(tc.kg)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "input %v kg", tc.kg)
	}
}

func TestFromKilogramsRejectsNegative(t *testing.T) {
	_, err := FromKilograms(-0.5)
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = FromGrams(-1)
	assert.ErrorIs(t, err, ErrNegativeQuantity)
}

func TestRoundTripHasNoDrift(t *testing.T) {
	// Any kg input with up to 3 decimal places survives repeated
	// conversion without drift.
	inputs := []float64{0.001, 0.25, 1.5, 7.125, 250.75, 1000.999}

	for _, kg := range inputs {
		g, err := FromKilograms(kg)
		require.NoError(t, err)

		for i := 0; i < 100; i++ {
			again, err := FromKilograms(g.Kilograms())
			require.NoError(t, err)
			assert.Equal(t, g, again, "drift after conversion %d of %v kg", i, kg)
		}

		assert.InDelta(t, kg, g.Kilograms(), 1e-9)
	}
}

func TestDecimalIsExact(t *testing.T) {
	g := Grams(1234)
	assert.Equal(t, "1.234", g.Decimal().String())

	sum := Grams(1) + Grams(2) + Grams(999997)
	assert.Equal(t, "1000", sum.Decimal().String())
}

func TestFormatKg(t *testing.T) {
	g := Grams(576000)
	assert.Equal(t, "576.0 kg", g.FormatKg(1))
	assert.Equal(t, "576.00 kg", g.FormatKg(2))

	odd := Grams(1499)
	assert.Equal(t, "1.5 kg", odd.FormatKg(1))
	assert.False(t, math.Signbit(odd.Kilograms()))
}
