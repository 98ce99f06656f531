// Package store persists detection, notification, and archived weather
// records. The in-memory implementation is the contract of record; the SQLite
// implementation mirrors its semantics for deployments that need records to
// survive a restart.
package store

import (
	"context"
	"errors"

	"github.com/SurjaPal/FirePredict/internal/domain"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the keyed table of detection events and their side records.
//
// CreateDetection assigns a fresh id and DetectedAt timestamp and forces
// NotificationsSent to false; the caller's values for those fields are
// ignored. UpdateDetection merges the set fields of a DetectionUpdate
// atomically per id. ListDetections orders by DetectedAt descending, stable
// within a process run. ListNotificationsByDetection returns an empty slice
// for an unknown detection id, never an error.
type Store interface {
	CreateDetection(ctx context.Context, d domain.DetectionRecord) (domain.DetectionRecord, error)
	GetDetection(ctx context.Context, id string) (domain.DetectionRecord, error)
	ListDetections(ctx context.Context) ([]domain.DetectionRecord, error)
	UpdateDetection(ctx context.Context, id string, update domain.DetectionUpdate) (domain.DetectionRecord, error)

	CreateNotification(ctx context.Context, n domain.NotificationRecord) (domain.NotificationRecord, error)
	ListNotificationsByDetection(ctx context.Context, detectionID string) ([]domain.NotificationRecord, error)

	ArchiveWeather(ctx context.Context, reading domain.WeatherReading) (domain.WeatherRecord, error)
	LatestWeatherNear(ctx context.Context, lat, lon float64) (domain.WeatherRecord, error)

	Close() error
}

// nearbyDegrees bounds the coordinate delta for LatestWeatherNear lookups.
const nearbyDegrees = 0.1

func applyUpdate(d domain.DetectionRecord, update domain.DetectionUpdate) domain.DetectionRecord {
	if update.RiskLevel != nil {
		d.RiskLevel = *update.RiskLevel
	}
	if update.WeatherData != nil {
		d.WeatherData = update.WeatherData
	}
	if update.SpreadPrediction != nil {
		d.SpreadPrediction = update.SpreadPrediction
	}
	if update.NotificationsSent != nil {
		d.NotificationsSent = *update.NotificationsSent
	}
	return d
}
