package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	t.Parallel()

	got := Cost(decimal.NewFromFloat(50.25), 15)
	assert.True(t, got.Equal(decimal.NewFromFloat(753.75)), got.String())
}

func TestWeightedAverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		avg   float64
		held  int64
		price float64
		qty   int64
		want  float64
	}{
		{"first lot", 0, 0, 50, 15, 50},
		{"second lot", 50, 15, 60, 10, 54},
		{"equal prices", 42, 7, 42, 3, 42},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := WeightedAverage(decimal.NewFromFloat(tt.avg), tt.held, decimal.NewFromFloat(tt.price), tt.qty)
			assert.True(t, got.Equal(decimal.NewFromFloat(tt.want)), got.String())
		})
	}
}

func TestPercent(t *testing.T) {
	t.Parallel()

	assert.True(t, Percent(decimal.NewFromInt(50), decimal.NewFromInt(200)).Equal(decimal.NewFromFloat(0.25)))
	assert.True(t, Percent(decimal.NewFromInt(50), decimal.Zero).IsZero())
	assert.True(t, Percent(decimal.NewFromInt(50), decimal.NewFromInt(-1)).IsZero())
}

func TestClampZero(t *testing.T) {
	t.Parallel()

	assert.True(t, ClampZero(decimal.NewFromInt(-3)).IsZero())
	assert.True(t, ClampZero(decimal.NewFromInt(3)).Equal(decimal.NewFromInt(3)))
}

func TestPerShare(t *testing.T) {
	t.Parallel()

	got := PerShare(decimal.NewFromInt(500), 25)
	assert.True(t, got.Equal(decimal.NewFromInt(20)), got.String())
}

func TestRoundCents(t *testing.T) {
	t.Parallel()

	got := RoundCents(decimal.NewFromFloat(16.66666))
	assert.Equal(t, "16.67", got.StringFixed(2))
}
