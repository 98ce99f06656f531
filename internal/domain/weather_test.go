package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindDirectionFromDegrees(t *testing.T) {
	cases := []struct {
		degrees  float64
		expected string
	}{
		{0, "N"},
		{22, "N"},
		{23, "NE"},
		{45, "NE"},
		{90, "E"},
		{135, "SE"},
		{180, "S"},
		{225, "SW"},
		{270, "W"},
		{315, "NW"},
		{338, "N"},
		{360, "N"},
		{405, "NE"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, WindDirectionFromDegrees(tc.degrees), "degrees=%v", tc.degrees)
	}
}

func TestSyntheticReading_Ranges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	octants := map[string]bool{"N": true, "NE": true, "E": true, "SE": true, "S": true, "SW": true, "W": true, "NW": true}

	for i := 0; i < 200; i++ {
		r := SyntheticReading(12.97, 77.59, rng)

		assert.True(t, r.Synthetic)
		assert.Equal(t, 12.97, r.Latitude)
		assert.Equal(t, 77.59, r.Longitude)
		assert.GreaterOrEqual(t, r.Temperature, 29.0)
		assert.Less(t, r.Temperature, 39.0)
		assert.GreaterOrEqual(t, r.Humidity, 15.0)
		assert.Less(t, r.Humidity, 35.0)
		assert.GreaterOrEqual(t, r.WindSpeed, 10.0)
		assert.Less(t, r.WindSpeed, 25.0)
		assert.True(t, octants[r.WindDirection], "direction=%s", r.WindDirection)
	}
}
