package fare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCalculator() *Calculator {
	return NewCalculator(Config{Base: 50, PerKM: 15, Minimum: 50})
}

// TestDistance_KnownPoints tests haversine distance against known
// city distances.
func TestDistance_KnownPoints(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		expected   float64
		tolerance  float64
	}{
		{
			name: "same point",
			lat1: 10.3157, lon1: 123.8854,
			lat2: 10.3157, lon2: 123.8854,
			expected:  0,
			tolerance: 0.001,
		},
		{
			name: "Cebu City to Mandaue",
			lat1: 10.3157, lon1: 123.8854,
			lat2: 10.3236, lon2: 123.9223,
			expected:  4.1,
			tolerance: 0.5,
		},
		{
			name: "Cebu to Manila",
			lat1: 10.3157, lon1: 123.8854,
			lat2: 14.5995, lon2: 120.9842,
			expected:  572,
			tolerance: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.expected, d, tt.tolerance)
		})
	}
}

func TestEstimate_MinimumFloor(t *testing.T) {
	calc := testCalculator()

	// Zero-distance and unknown-coordinate trips both land on the minimum.
	assert.Equal(t, 50.0, calc.Estimate(10.3157, 123.8854, 10.3157, 123.8854))
	assert.Equal(t, 50.0, calc.Estimate(0, 0, 0, 0))
}

func TestEstimate_WholePesos(t *testing.T) {
	calc := testCalculator()

	fare := calc.Estimate(10.3157, 123.8854, 10.3236, 123.9223)
	assert.Equal(t, fare, float64(int(fare)), "fares should be whole pesos")
	assert.Greater(t, fare, 50.0)
}

func TestEstimate_GrowsWithDistance(t *testing.T) {
	calc := testCalculator()

	short := calc.Estimate(10.3157, 123.8854, 10.3236, 123.9223)
	long := calc.Estimate(10.3157, 123.8854, 10.2447, 123.8494)
	assert.Greater(t, long, short)
}
