// Package domain models wildfire detection events and the weather-driven
// risk and spread computations derived from them.
//
// # Risk Scoring
//
// Fire risk is an additive point score over three weather factors:
//
//	Temperature (°C):  >35 → +3 | >30 → +2 | >25 → +1
//	Humidity (%):      <20 → +3 | <30 → +2 | <40 → +1
//	Wind speed (mph):  >20 → +3 | >15 → +2 | >10 → +1
//
// The sum (0–9) maps to an ordinal level: ≥7 extreme, ≥5 high, ≥3 moderate,
// otherwise low. This scoring is the single source of truth for "how dangerous
// is this weather": any client-side display must use the same thresholds.
//
// # Spread Prediction
//
// Spread radii are linear in wind speed with a per-timeframe floor and cap,
// expressed in coordinate degrees:
//
//	1 hour:   min(0.001 + wind*0.0001, 0.005)
//	6 hours:  min(0.003 + wind*0.0003, 0.015)
//	24 hours: min(0.008 + wind*0.0008, 0.040)
//
// Confidence values (0.94 / 0.87 / 0.78) are fixed per timeframe, not derived
// from the data. This is a known simplification of the model, kept as a
// configuration table so it can be replaced without touching the radius math.
//
// Derived metrics use the 24-hour radius only. Degrees convert to meters via
// the 111 km/degree approximation, and the affected area divides the full
// disk by four before converting square meters to acres (4047 m²/acre). The
// quarter-disk divisor models a directional burn cone and is preserved
// exactly from the upstream model; see DESIGN.md before changing it.
// Evacuation radius converts the 24-hour radius to miles (1609.34 m/mile).
//
// # Wind Direction
//
// Wind bearings collapse to eight compass octants (N, NE, E, SE, S, SW, W,
// NW) by rounding to the nearest 45°.
//
// # Synthetic Weather
//
// When the weather provider is unreachable the pipeline substitutes a
// synthetic reading drawn from documented fire-season ranges: temperature
// 29–39 °C, humidity 15–35 %, wind 10–25 mph, direction uniform over the
// eight octants. Synthetic readings are flagged so callers can tell them
// apart from observed data, but classification and prediction treat both
// identically. Once an image is confirmed to show fire, downstream
// computation must always have weather input.
package domain
