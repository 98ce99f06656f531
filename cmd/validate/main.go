// Command validate checks a genmock fixture for internal consistency: it
// re-runs the risk and spread code on each detection's weather and compares
// the stored values, verifies roster coverage of the notifications, and
// checks field-level constraints the dashboard relies on.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/detections.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/notify"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// fixture mirrors the document genmock writes.
type fixture struct {
	Detections    []domain.DetectionRecord    `json:"detections"`
	Notifications []domain.NotificationRecord `json:"notifications"`
}

func main() {
	fixturePath := flag.String("fixture", "", "path to the genmock JSON fixture")
	flag.Parse()

	if *fixturePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixturePath); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Detection Fixture Validation ===")
	fmt.Println()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read fixture: %v\n", err)
		return 1
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateDerivedValues(fx),
		validateRosterCoverage(fx),
		validateFieldConstraints(fx),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d detections, %d notifications\n", len(fx.Detections), len(fx.Notifications))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateDerivedValues re-runs Classify and PredictSpread on each stored
// weather reading and compares with the recorded values.
func validateDerivedValues(fx fixture) *phase {
	p := &phase{name: "Phase 1: Derived Values (risk, spread)"}

	for i := range fx.Detections {
		d := &fx.Detections[i]
		if d.WeatherData == nil {
			p.errorf("detection %s: missing weather data", d.ID)
			continue
		}

		if got := domain.Classify(*d.WeatherData); got != d.RiskLevel {
			p.errorf("detection %s: risk mismatch: expected %s, got %s", d.ID, got, d.RiskLevel)
		}

		if d.SpreadPrediction == nil {
			p.errorf("detection %s: missing spread prediction", d.ID)
			continue
		}
		expected := domain.PredictSpread(domain.Coordinates{Latitude: d.Latitude, Longitude: d.Longitude}, *d.WeatherData)
		compareSpread(p, d.ID, expected, *d.SpreadPrediction)
	}
	return p
}

func compareSpread(p *phase, id string, expected, actual domain.SpreadPrediction) {
	if len(actual.Predictions) != len(expected.Predictions) {
		p.errorf("detection %s: expected %d radius predictions, got %d", id, len(expected.Predictions), len(actual.Predictions))
		return
	}
	for i := range expected.Predictions {
		e, a := expected.Predictions[i], actual.Predictions[i]
		if a.Timeframe != e.Timeframe {
			p.errorf("detection %s: prediction %d timeframe: expected %s, got %s", id, i, e.Timeframe, a.Timeframe)
		}
		if !floatEq(a.Radius, e.Radius) {
			p.errorf("detection %s: %s radius: expected %g, got %g", id, e.Timeframe, e.Radius, a.Radius)
		}
		if !floatEq(a.Confidence, e.Confidence) {
			p.errorf("detection %s: %s confidence: expected %g, got %g", id, e.Timeframe, e.Confidence, a.Confidence)
		}
	}
	if !floatEq(actual.AffectedArea, expected.AffectedArea) {
		p.errorf("detection %s: affected area: expected %g, got %g", id, expected.AffectedArea, actual.AffectedArea)
	}
	if !floatEq(actual.EvacuationRadius, expected.EvacuationRadius) {
		p.errorf("detection %s: evacuation radius: expected %g, got %g", id, expected.EvacuationRadius, actual.EvacuationRadius)
	}
}

// validateRosterCoverage verifies every detection has exactly one notification
// per roster agency.
func validateRosterCoverage(fx fixture) *phase {
	p := &phase{name: "Phase 2: Roster Coverage (notifications)"}

	roster := notify.Roster()
	byDetection := map[string]map[string]int{}
	for i := range fx.Notifications {
		n := &fx.Notifications[i]
		if byDetection[n.DetectionID] == nil {
			byDetection[n.DetectionID] = map[string]int{}
		}
		byDetection[n.DetectionID][n.Agency]++
	}

	for i := range fx.Detections {
		d := &fx.Detections[i]
		agencies := byDetection[d.ID]
		for _, agency := range roster {
			switch agencies[agency] {
			case 0:
				p.errorf("detection %s: no notification for %q", d.ID, agency)
			case 1:
			default:
				p.errorf("detection %s: %d notifications for %q", d.ID, agencies[agency], agency)
			}
		}
		for agency := range agencies {
			if !rosterHas(roster, agency) {
				p.errorf("detection %s: notification for unknown agency %q", d.ID, agency)
			}
		}
	}
	return p
}

// validateFieldConstraints checks the invariants the dashboard assumes.
func validateFieldConstraints(fx fixture) *phase {
	p := &phase{name: "Phase 3: Field Constraints"}

	validStatus := map[domain.NotificationStatus]bool{
		domain.StatusSent:      true,
		domain.StatusDelivered: true,
		domain.StatusFailed:    true,
	}

	for i := range fx.Detections {
		d := &fx.Detections[i]
		if d.ID == "" {
			p.errorf("detection %d: missing id", i)
		}
		if d.Confidence <= 0 || d.Confidence > 1 {
			p.errorf("detection %s: confidence %g outside (0,1]", d.ID, d.Confidence)
		}
		if d.DetectedAt.IsZero() {
			p.errorf("detection %s: detectedAt is zero", d.ID)
		}
		if d.Latitude < -90 || d.Latitude > 90 {
			p.errorf("detection %s: latitude %g out of range", d.ID, d.Latitude)
		}
		if d.Longitude < -180 || d.Longitude > 180 {
			p.errorf("detection %s: longitude %g out of range", d.ID, d.Longitude)
		}
	}

	for i := range fx.Notifications {
		n := &fx.Notifications[i]
		if n.ID == "" {
			p.errorf("notification %d: missing id", i)
		}
		if !validStatus[n.Status] {
			p.errorf("notification %s: invalid status %q", n.ID, n.Status)
		}
		if n.SentAt.IsZero() {
			p.errorf("notification %s: sentAt is zero", n.ID)
		}
	}
	return p
}

func rosterHas(roster []string, agency string) bool {
	for _, a := range roster {
		if a == agency {
			return true
		}
	}
	return false
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
