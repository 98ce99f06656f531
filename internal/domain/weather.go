package domain

import (
	"math"
	"math/rand"
	"time"
)

// windOctants lists the eight compass octants in bearing order, 45° apart.
var windOctants = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// WeatherReading is one weather observation at a coordinate. WindSpeed is in
// mph, Temperature in °C, Humidity in percent (0–100).
type WeatherReading struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection string  `json:"windDirection"`
	Synthetic     bool    `json:"synthetic,omitempty"`
}

// WeatherRecord is an archived reading with a server-assigned id and timestamp.
type WeatherRecord struct {
	ID        string         `json:"id"`
	Reading   WeatherReading `json:"reading"`
	Timestamp time.Time      `json:"timestamp"`
}

// WindDirectionFromDegrees maps a wind bearing to the nearest compass octant.
func WindDirectionFromDegrees(degrees float64) string {
	idx := int(math.Round(degrees/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return windOctants[idx]
}

// SyntheticReading produces a fallback reading for a coordinate when no
// provider data is available: temperature 29–39 °C, humidity 15–35 %, wind
// 10–25 mph, direction uniform over the octants. The reading is flagged
// Synthetic so callers can distinguish it from observed data.
func SyntheticReading(lat, lon float64, rng *rand.Rand) WeatherReading {
	return WeatherReading{
		Latitude:      lat,
		Longitude:     lon,
		Temperature:   29 + rng.Float64()*10,
		Humidity:      15 + rng.Float64()*20,
		WindSpeed:     10 + rng.Float64()*15,
		WindDirection: windOctants[rng.Intn(len(windOctants))],
		Synthetic:     true,
	}
}
