package domain

import "math"

// Timeframe identifies one forecast horizon of a spread prediction.
type Timeframe string

const (
	Timeframe1Hour  Timeframe = "1hour"
	Timeframe6Hour  Timeframe = "6hour"
	Timeframe24Hour Timeframe = "24hour"
)

// spreadParams holds the per-timeframe constants of the spread model. Radius
// is min(base + windSpeed*rate, cap) in coordinate degrees. Confidence is a
// fixed per-timeframe value, not derived from the reading.
type spreadParams struct {
	timeframe  Timeframe
	base       float64
	rate       float64
	cap        float64
	confidence float64
}

// spreadTable drives PredictSpread. Order matters: radii grow with the
// timeframe, and the last row (24 hour) feeds the derived area metrics.
var spreadTable = [3]spreadParams{
	{timeframe: Timeframe1Hour, base: 0.001, rate: 0.0001, cap: 0.005, confidence: 0.94},
	{timeframe: Timeframe6Hour, base: 0.003, rate: 0.0003, cap: 0.015, confidence: 0.87},
	{timeframe: Timeframe24Hour, base: 0.008, rate: 0.0008, cap: 0.040, confidence: 0.78},
}

// Unit conversion constants for the derived metrics.
const (
	metersPerDegree     = 111000.0 // equatorial approximation, 111 km per degree
	squareMetersPerAcre = 4047.0
	metersPerMile       = 1609.34
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RadiusPrediction is the forecast spread radius for one timeframe.
type RadiusPrediction struct {
	Timeframe  Timeframe `json:"timeframe"`
	Radius     float64   `json:"radius"` // coordinate degrees
	Confidence float64   `json:"confidence"`
}

// SpreadPrediction is the time-bucketed geographic spread forecast for one
// detection.
type SpreadPrediction struct {
	Center           Coordinates        `json:"center"`
	Predictions      []RadiusPrediction `json:"predictions"`
	AffectedArea     float64            `json:"affectedArea"`     // acres
	EvacuationRadius float64            `json:"evacuationRadius"` // miles
}

// PredictSpread forecasts fire growth from a detection point given current
// weather. Pure and total: radii are monotonic in the timeframe for any
// fixed wind speed, and each radius is bounded by its cap.
//
// AffectedArea and EvacuationRadius derive from the 24-hour radius only. The
// area divides the full disk by four (directional burn cone, kept verbatim
// from the upstream model) before converting to acres.
func PredictSpread(center Coordinates, reading WeatherReading) SpreadPrediction {
	predictions := make([]RadiusPrediction, 0, len(spreadTable))
	var radius24 float64
	for _, p := range spreadTable {
		r := math.Min(p.base+reading.WindSpeed*p.rate, p.cap)
		predictions = append(predictions, RadiusPrediction{
			Timeframe:  p.timeframe,
			Radius:     r,
			Confidence: p.confidence,
		})
		radius24 = r
	}

	radiusMeters := radius24 * metersPerDegree
	return SpreadPrediction{
		Center:           center,
		Predictions:      predictions,
		AffectedArea:     math.Pi * radiusMeters * radiusMeters / 4 / squareMetersPerAcre,
		EvacuationRadius: radiusMeters / metersPerMile,
	}
}
