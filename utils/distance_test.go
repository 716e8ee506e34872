package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMiles(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.Zero(t, DistanceMiles(34.0522, -118.2437, 34.0522, -118.2437))
	})

	t.Run("symmetric", func(t *testing.T) {
		ab := DistanceMiles(34.0522, -118.2437, 40.7128, -74.0060)
		ba := DistanceMiles(40.7128, -74.0060, 34.0522, -118.2437)
		assert.InDelta(t, ab, ba, 1e-9)
	})

	t.Run("one degree of latitude is about 69 miles", func(t *testing.T) {
		d := DistanceMiles(34.0, -118.0, 35.0, -118.0)
		assert.InEpsilon(t, 69.0, d, 0.01)
	})

	t.Run("LA to NYC", func(t *testing.T) {
		d := DistanceMiles(34.0522, -118.2437, 40.7128, -74.0060)
		assert.InDelta(t, 2445, d, 10)
	})
}

func TestLocationHash(t *testing.T) {
	assert.Equal(t, "34.052_-118.244", LocationHash(34.0522, -118.2437))
	assert.Equal(t, LocationHash(34.05221, -118.24369), LocationHash(34.05219, -118.24371))
	assert.Equal(t, "0.000_0.000", LocationHash(0, 0))
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(0, 0))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}
