// Package pipeline orchestrates the detection flow: detect, fetch weather,
// classify risk, predict spread, persist, notify, and optionally publish an
// alert.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/observability"
	"github.com/SurjaPal/FirePredict/internal/store"
)

// ErrDetectorUnavailable wraps any failure talking to the fire detection
// service so transport layers can map it to an upstream error status.
var ErrDetectorUnavailable = errors.New("fire detection service unavailable")

// ErrInvalidInput marks an upload rejected before any processing: empty image
// or coordinates outside valid ranges. Nothing is persisted.
var ErrInvalidInput = errors.New("invalid upload input")

// Notifier fans out emergency notifications for one detection.
type Notifier interface {
	NotifyAll(ctx context.Context, detectionID string) ([]domain.NotificationRecord, error)
}

// AlertPublisher pushes a confirmed detection to a downstream stream.
type AlertPublisher interface {
	Publish(ctx context.Context, detection domain.DetectionRecord) error
}

// Service runs the upload-to-notification pipeline. The weather provider and
// alert publisher are optional; a nil provider means every reading is
// synthetic, a nil publisher disables the alert stream.
type Service struct {
	store    store.Store
	detector domain.FireDetector
	weather  domain.WeatherProvider
	notifier Notifier
	alerts   AlertPublisher
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func New(
	st store.Store,
	detector domain.FireDetector,
	weather domain.WeatherProvider,
	notifier Notifier,
	alerts AlertPublisher,
	metrics *observability.Metrics,
	logger *slog.Logger,
	src rand.Source,
) *Service {
	if weather != nil {
		metrics.WeatherAPIEnabled.Set(1)
	}
	return &Service{
		store:    st,
		detector: detector,
		weather:  weather,
		notifier: notifier,
		alerts:   alerts,
		metrics:  metrics,
		logger:   logger.With("component", "pipeline"),
		rng:      rand.New(src),
	}
}

// ProcessUpload runs the full pipeline for one uploaded image. A detector
// failure aborts the upload. After the detection record exists, notification
// and alert failures are logged and counted but never fail the request: the
// record is the source of truth and NotificationsSent stays false when the
// fan-out could not be recorded.
func (s *Service) ProcessUpload(ctx context.Context, image []byte, contentType, imageRef string, lat, lon float64) (domain.DetectionResult, error) {
	if len(image) == 0 {
		return domain.DetectionResult{}, fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if lat < -90 || lat > 90 {
		return domain.DetectionResult{}, fmt.Errorf("%w: latitude %g out of range", ErrInvalidInput, lat)
	}
	if lon < -180 || lon > 180 {
		return domain.DetectionResult{}, fmt.Errorf("%w: longitude %g out of range", ErrInvalidInput, lon)
	}

	s.metrics.UploadsReceived.Inc()
	start := time.Now()
	defer func() {
		s.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	score, err := s.detector.DetectFire(ctx, image, contentType)
	if err != nil {
		s.metrics.DetectorErrors.Inc()
		return domain.DetectionResult{}, fmt.Errorf("%w: %v", ErrDetectorUnavailable, err)
	}

	if !score.IsFire {
		s.metrics.DetectionsNegative.Inc()
		return domain.DetectionResult{
			FireDetected: false,
			Confidence:   score.Confidence,
			Message:      "No fire detected in the uploaded image",
		}, nil
	}

	reading := s.conditionsAt(ctx, lat, lon)
	if _, err := s.store.ArchiveWeather(ctx, reading); err != nil {
		s.logger.Warn("archive weather failed", "error", err)
	}

	risk := domain.Classify(reading)
	spread := domain.PredictSpread(domain.Coordinates{Latitude: lat, Longitude: lon}, reading)

	record, err := s.store.CreateDetection(ctx, domain.DetectionRecord{
		ImageRef:         imageRef,
		Latitude:         lat,
		Longitude:        lon,
		Confidence:       score.Confidence,
		RiskLevel:        risk,
		WeatherData:      &reading,
		SpreadPrediction: &spread,
	})
	if err != nil {
		return domain.DetectionResult{}, fmt.Errorf("create detection: %w", err)
	}
	s.metrics.DetectionsPositive.WithLabelValues(risk.String()).Inc()
	s.logger.Info("fire detected",
		"detection_id", record.ID,
		"confidence", score.Confidence,
		"risk_level", risk,
		"latitude", lat,
		"longitude", lon,
	)

	if _, err := s.notifier.NotifyAll(ctx, record.ID); err != nil {
		s.logger.Error("notification fan-out incomplete", "detection_id", record.ID, "error", err)
	} else {
		sent := true
		updated, err := s.store.UpdateDetection(ctx, record.ID, domain.DetectionUpdate{NotificationsSent: &sent})
		if err != nil {
			s.logger.Error("mark notifications sent failed", "detection_id", record.ID, "error", err)
		} else {
			record = updated
		}
	}

	if s.alerts != nil {
		if err := s.alerts.Publish(ctx, record); err != nil {
			s.logger.Error("alert publish failed", "detection_id", record.ID, "error", err)
		}
	}

	return domain.DetectionResult{
		FireDetected:     true,
		Confidence:       score.Confidence,
		Detection:        &record,
		WeatherData:      &reading,
		SpreadPrediction: &spread,
	}, nil
}

// Weather returns current conditions at a coordinate and archives the reading.
// Used by the standalone weather endpoint; shares the fallback behavior of the
// upload path.
func (s *Service) Weather(ctx context.Context, lat, lon float64) (domain.WeatherReading, error) {
	reading := s.conditionsAt(ctx, lat, lon)
	if _, err := s.store.ArchiveWeather(ctx, reading); err != nil {
		s.logger.Warn("archive weather failed", "error", err)
	}
	return reading, nil
}

// conditionsAt fetches live weather when a provider is configured, falling
// back to a synthetic reading on any provider error or when no provider
// exists. Never fails: the risk model always gets a reading.
func (s *Service) conditionsAt(ctx context.Context, lat, lon float64) domain.WeatherReading {
	if s.weather != nil {
		reading, err := s.weather.CurrentConditions(ctx, lat, lon)
		if err == nil {
			return reading
		}
		s.logger.Warn("weather provider failed, using synthetic reading",
			"latitude", lat,
			"longitude", lon,
			"error", err,
		)
		s.metrics.WeatherFallbacks.Inc()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SyntheticReading(lat, lon, s.rng)
}

// CheckReadiness reports whether the service can serve traffic. The store is
// the only hard dependency: the detector and weather provider are checked per
// request.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if s.store == nil {
		return errors.New("store not configured")
	}
	if _, err := s.store.ListDetections(ctx); err != nil {
		return fmt.Errorf("store not reachable: %w", err)
	}
	return nil
}
