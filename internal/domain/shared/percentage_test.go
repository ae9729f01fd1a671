package shared_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

func TestNewPercentage_ClampsAtConstruction(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"positive value kept", 30, 30},
		{"zero kept", 0, 0},
		{"negative clamped to zero", -15, 0},
		{"NaN becomes zero", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shared.NewPercentage(tt.input).Value())
		})
	}
}

func TestPercentage_Multiplier(t *testing.T) {
	assert.InDelta(t, 1.5, shared.NewPercentage(50).Multiplier(), 1e-9)
	assert.InDelta(t, 1.0, shared.ZeroPercent.Multiplier(), 1e-9)
}

func TestPercentage_Add(t *testing.T) {
	// Arrange
	deposit := shared.NewPercentage(30)
	strategic := shared.NewPercentage(20)

	// Act
	total := deposit.Add(strategic)

	// Assert
	assert.Equal(t, 50.0, total.Value())
	assert.Equal(t, "50.0%", total.String())
}
