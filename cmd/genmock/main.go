// Command genmock generates a deterministic demo fixture of fire detections
// and their emergency notifications. It runs the actual risk and spread code
// so the fixture matches real pipeline behavior, and can optionally seed a
// SQLite store for dashboard demos.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/detections.json
//	go run ./cmd/genmock -out data/mock/detections.json -store demo.db
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/notify"
	"github.com/SurjaPal/FirePredict/internal/observability"
	"github.com/SurjaPal/FirePredict/internal/store"
)

var baseTime = time.Date(2025, time.June, 14, 12, 0, 0, 0, time.UTC)

// scenario is one synthetic detection site with fixed weather so the derived
// risk levels cover the whole scale.
type scenario struct {
	name       string
	imageRef   string
	lat, lon   float64
	confidence float64
	reading    domain.WeatherReading
}

var scenarios = []scenario{
	{
		name:       "dry grassland, heat wave",
		imageRef:   "grassland_0614.jpg",
		lat:        23.8103,
		lon:        86.4412,
		confidence: 0.96,
		reading:    domain.WeatherReading{Temperature: 38, Humidity: 12, WindSpeed: 22, WindDirection: "SW"},
	},
	{
		name:       "forest edge, gusty afternoon",
		imageRef:   "forest_edge_0614.jpg",
		lat:        23.9021,
		lon:        86.5230,
		confidence: 0.89,
		reading:    domain.WeatherReading{Temperature: 33, Humidity: 24, WindSpeed: 17, WindDirection: "W"},
	},
	{
		name:       "scrubland, mild breeze",
		imageRef:   "scrubland_0614.jpg",
		lat:        24.0155,
		lon:        86.3380,
		confidence: 0.84,
		reading:    domain.WeatherReading{Temperature: 28, Humidity: 35, WindSpeed: 12, WindDirection: "N"},
	},
	{
		name:       "river bank, humid morning",
		imageRef:   "riverbank_0614.jpg",
		lat:        23.7550,
		lon:        86.6104,
		confidence: 0.81,
		reading:    domain.WeatherReading{Temperature: 24, Humidity: 55, WindSpeed: 6, WindDirection: "NE"},
	},
}

// fixture is the JSON document genmock writes and validate re-checks.
type fixture struct {
	GeneratedAt   time.Time                   `json:"generatedAt"`
	Detections    []domain.DetectionRecord    `json:"detections"`
	Notifications []domain.NotificationRecord `json:"notifications"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the JSON fixture")
	storePath := flag.String("store", "", "optional SQLite path to seed with the fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	clock := clockwork.NewFakeClockAt(baseTime)
	st := store.NewMemoryStore(clock)
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Fixed seed keeps delivery outcomes stable across runs.
	dispatcher := notify.NewSimulatedDispatcher(0.9, rand.NewSource(20250614))
	notifier := notify.New(st, dispatcher, metrics, logger)

	ctx := context.Background()
	fx := fixture{GeneratedAt: baseTime}

	for _, sc := range scenarios {
		reading := sc.reading
		reading.Latitude = sc.lat
		reading.Longitude = sc.lon

		risk := domain.Classify(reading)
		spread := domain.PredictSpread(domain.Coordinates{Latitude: sc.lat, Longitude: sc.lon}, reading)

		record, err := st.CreateDetection(ctx, domain.DetectionRecord{
			ImageRef:         sc.imageRef,
			Latitude:         sc.lat,
			Longitude:        sc.lon,
			Confidence:       sc.confidence,
			RiskLevel:        risk,
			WeatherData:      &reading,
			SpreadPrediction: &spread,
		})
		if err != nil {
			return fmt.Errorf("create detection for %s: %w", sc.name, err)
		}

		records, err := notifier.NotifyAll(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("notify for %s: %w", sc.name, err)
		}

		sent := true
		record, err = st.UpdateDetection(ctx, record.ID, domain.DetectionUpdate{NotificationsSent: &sent})
		if err != nil {
			return fmt.Errorf("flag notifications for %s: %w", sc.name, err)
		}

		fx.Detections = append(fx.Detections, record)
		fx.Notifications = append(fx.Notifications, records...)
		log.Printf("%s: risk=%s notifications=%d", sc.name, risk, len(records))

		// Space detections a minute apart so list ordering is visible in demos.
		clock.Advance(time.Minute)
	}

	if err := writeJSON(*out, fx); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	if *storePath != "" {
		if err := seedSQLite(ctx, *storePath, clock, fx); err != nil {
			return fmt.Errorf("seeding sqlite store: %w", err)
		}
		log.Printf("seeded sqlite store: %s", *storePath)
	}

	printStats(fx)
	return nil
}

// seedSQLite replays the fixture into a SQLite store. Records get fresh ids
// and timestamps from the store; the fixture file remains the canonical copy.
func seedSQLite(ctx context.Context, path string, clock clockwork.Clock, fx fixture) error {
	st, err := store.NewSQLiteStore(path, clock)
	if err != nil {
		return err
	}
	defer st.Close()

	for i := range fx.Detections {
		d := fx.Detections[i]
		created, err := st.CreateDetection(ctx, d)
		if err != nil {
			return err
		}
		sent := true
		if _, err := st.UpdateDetection(ctx, created.ID, domain.DetectionUpdate{NotificationsSent: &sent}); err != nil {
			return err
		}
		for _, n := range fx.Notifications {
			if n.DetectionID != d.ID {
				continue
			}
			n.DetectionID = created.ID
			if _, err := st.CreateNotification(ctx, n); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(fx fixture) {
	riskCounts := map[domain.RiskLevel]int{}
	for i := range fx.Detections {
		riskCounts[fx.Detections[i].RiskLevel]++
	}
	statusCounts := map[domain.NotificationStatus]int{}
	for i := range fx.Notifications {
		statusCounts[fx.Notifications[i].Status]++
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Detections: %d\n", len(fx.Detections))
	fmt.Printf("By risk: low=%d, moderate=%d, high=%d, extreme=%d\n",
		riskCounts[domain.RiskLow], riskCounts[domain.RiskModerate],
		riskCounts[domain.RiskHigh], riskCounts[domain.RiskExtreme])
	fmt.Printf("Notifications: %d (delivered=%d, failed=%d)\n",
		len(fx.Notifications), statusCounts[domain.StatusDelivered], statusCounts[domain.StatusFailed])

	for i := range fx.Detections {
		d := &fx.Detections[i]
		if d.SpreadPrediction == nil {
			continue
		}
		fmt.Printf("%s: 24h radius=%g, area=%.1f acres, evac=%.2f mi\n",
			d.ImageRef,
			d.SpreadPrediction.Predictions[len(d.SpreadPrediction.Predictions)-1].Radius,
			d.SpreadPrediction.AffectedArea,
			d.SpreadPrediction.EvacuationRadius)
	}
}
