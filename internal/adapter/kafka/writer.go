// Package kafka publishes confirmed detections to an alert topic so downstream
// consumers (dashboards, regional dispatch) can react without polling the API.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/SurjaPal/FirePredict/internal/config"
	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/observability"
)

// AlertWriter produces detection alerts to the configured Kafka topic.
type AlertWriter struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewAlertWriter creates a Kafka producer for the alert topic.
func NewAlertWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *AlertWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &AlertWriter{
		writer:  w,
		metrics: metrics,
		logger:  logger.With("component", "alert_writer"),
	}
}

// Publish serializes one confirmed detection and writes it to the alert topic.
// Publishing is best effort from the pipeline's point of view; the caller logs
// and counts failures but never fails the upload over them.
func (w *AlertWriter) Publish(ctx context.Context, detection domain.DetectionRecord) error {
	msg, err := serializeToMessage(detection)
	if err != nil {
		w.metrics.AlertErrors.Inc()
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.metrics.AlertErrors.Inc()
		return fmt.Errorf("publish alert: %w", err)
	}
	w.metrics.AlertsPublished.Inc()
	w.logger.Debug("alert published", "detection_id", detection.ID, "risk_level", detection.RiskLevel)
	return nil
}

func (w *AlertWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a detection into a Kafka message keyed by
// detection id, with routing headers so consumers can filter without decoding
// the payload.
func serializeToMessage(detection domain.DetectionRecord) (kafkago.Message, error) {
	data, err := json.Marshal(detection)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize detection: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(detection.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(detection.RiskLevel.String())},
			{Key: "detected_at", Value: []byte(detection.DetectedAt.Format(time.RFC3339))},
		},
	}, nil
}
