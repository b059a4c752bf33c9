package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{2.4, 2},
		{2.5, 3},
		{2.6, 3},
		{0.5, 1},
		{33.3, 33},
		{31.5, 32},
		{1109.999, 1110},
		{-2.4, -2},
		{-2.5, -2}, // Half rounds up (towards positive) for negatives too
		{-2.6, -3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RoundMoney(tc.in), "RoundMoney(%v)", tc.in)
	}
}

func TestItemAmount(t *testing.T) {
	assert.Equal(t, int64(500), ItemAmount(10, 50))
	assert.Equal(t, int64(360), ItemAmount(8, 45))
	assert.Equal(t, int64(525), ItemAmount(10.5, 50))
	// 7.25 * 33 = 239.25 -> 239
	assert.Equal(t, int64(239), ItemAmount(7.25, 33))
}

func TestCommissionAmount(t *testing.T) {
	// Scenario from the field: 1110 gross at 3% -> 33.3 -> 33
	assert.Equal(t, int64(33), CommissionAmount(1110, 3))
	// Half rounds up: 1050 at 3% -> 31.5 -> 32
	assert.Equal(t, int64(32), CommissionAmount(1050, 3))
	assert.Equal(t, int64(0), CommissionAmount(0, 3))
	assert.Equal(t, int64(0), CommissionAmount(1000, 0))
}
