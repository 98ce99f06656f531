package domain

// RiskLevel is the ordinal fire danger classification derived from weather.
// Levels are strictly ordered: RiskLow < RiskModerate < RiskHigh < RiskExtreme.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskModerate
	RiskHigh
	RiskExtreme
)

var riskLevelNames = map[RiskLevel]string{
	RiskLow:      "LOW",
	RiskModerate: "MODERATE",
	RiskHigh:     "HIGH",
	RiskExtreme:  "EXTREME",
}

func (r RiskLevel) String() string {
	if name, ok := riskLevelNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText encodes the level as its uppercase name, matching the wire and
// storage representation.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes an uppercase level name. Unknown names decode to
// RiskLow rather than erroring, so stale stored values never poison a read.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	for level, name := range riskLevelNames {
		if name == string(text) {
			*r = level
			return nil
		}
	}
	*r = RiskLow
	return nil
}

// Classify converts a weather reading into a fire risk level. Total function:
// every reading maps to some level, no failure mode.
//
// Scoring is additive over three factors (see package doc). Hotter, drier,
// windier weather never lowers the level.
func Classify(reading WeatherReading) RiskLevel {
	score := 0

	switch {
	case reading.Temperature > 35:
		score += 3
	case reading.Temperature > 30:
		score += 2
	case reading.Temperature > 25:
		score += 1
	}

	switch {
	case reading.Humidity < 20:
		score += 3
	case reading.Humidity < 30:
		score += 2
	case reading.Humidity < 40:
		score += 1
	}

	switch {
	case reading.WindSpeed > 20:
		score += 3
	case reading.WindSpeed > 15:
		score += 2
	case reading.WindSpeed > 10:
		score += 1
	}

	switch {
	case score >= 7:
		return RiskExtreme
	case score >= 5:
		return RiskHigh
	case score >= 3:
		return RiskModerate
	default:
		return RiskLow
	}
}
