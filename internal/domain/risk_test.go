package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reading(temp, humidity, wind float64) WeatherReading {
	return WeatherReading{Temperature: temp, Humidity: humidity, WindSpeed: wind, WindDirection: "N"}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		reading  WeatherReading
		expected RiskLevel
	}{
		{name: "all factors maxed", reading: reading(36, 15, 25), expected: RiskExtreme},
		{name: "all factors zero", reading: reading(20, 60, 5), expected: RiskLow},
		{name: "hot dry calm", reading: reading(36, 15, 5), expected: RiskHigh},
		{name: "score exactly 7", reading: reading(36, 15, 11), expected: RiskExtreme},
		{name: "score exactly 5", reading: reading(31, 25, 5), expected: RiskHigh},
		{name: "score exactly 3", reading: reading(26, 35, 11), expected: RiskModerate},
		{name: "score exactly 2", reading: reading(26, 35, 5), expected: RiskLow},
		{name: "boundary temp 35 not extreme band", reading: reading(35, 60, 5), expected: RiskLow},
		{name: "boundary humidity 40 scores zero", reading: reading(20, 40, 5), expected: RiskLow},
		{name: "boundary wind 10 scores zero", reading: reading(20, 60, 10), expected: RiskLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.reading))
		})
	}
}

// Hotter, drier, or windier weather must never lower the risk level.
func TestClassify_Monotonic(t *testing.T) {
	temps := []float64{20, 26, 31, 36, 40}
	humidities := []float64{60, 39, 29, 19, 5}
	winds := []float64{0, 11, 16, 21, 30}

	t.Run("temperature", func(t *testing.T) {
		for _, h := range humidities {
			for _, w := range winds {
				prev := RiskLow
				for _, temp := range temps {
					level := Classify(reading(temp, h, w))
					assert.GreaterOrEqual(t, level, prev,
						"temp=%v humidity=%v wind=%v", temp, h, w)
					prev = level
				}
			}
		}
	})

	t.Run("humidity", func(t *testing.T) {
		for _, temp := range temps {
			for _, w := range winds {
				prev := RiskLow
				for _, h := range humidities {
					level := Classify(reading(temp, h, w))
					assert.GreaterOrEqual(t, level, prev,
						"temp=%v humidity=%v wind=%v", temp, h, w)
					prev = level
				}
			}
		}
	})

	t.Run("wind", func(t *testing.T) {
		for _, temp := range temps {
			for _, h := range humidities {
				prev := RiskLow
				for _, w := range winds {
					level := Classify(reading(temp, h, w))
					assert.GreaterOrEqual(t, level, prev,
						"temp=%v humidity=%v wind=%v", temp, h, w)
					prev = level
				}
			}
		}
	})
}

func TestRiskLevel_Ordering(t *testing.T) {
	assert.Less(t, RiskLow, RiskModerate)
	assert.Less(t, RiskModerate, RiskHigh)
	assert.Less(t, RiskHigh, RiskExtreme)
}

func TestRiskLevel_TextRoundTrip(t *testing.T) {
	for _, level := range []RiskLevel{RiskLow, RiskModerate, RiskHigh, RiskExtreme} {
		text, err := level.MarshalText()
		require.NoError(t, err)

		var decoded RiskLevel
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, level, decoded)
	}

	var unknown RiskLevel
	require.NoError(t, unknown.UnmarshalText([]byte("VOLCANIC")))
	assert.Equal(t, RiskLow, unknown)
}
