//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/SurjaPal/FirePredict/internal/adapter/kafka"
	"github.com/SurjaPal/FirePredict/internal/config"
	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/observability"
)

const testAlertTopic = "fire-alerts-test"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("firepredict-test"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestAlertWriterPublish verifies the alert writer round-trips a detection
// through real Kafka with its key, headers, and payload intact.
func TestAlertWriterPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAlertTopic)

	cfg := &config.Config{
		KafkaBrokers:    []string{broker},
		KafkaAlertTopic: testAlertTopic,
	}

	writer := kafkaadapter.NewAlertWriter(cfg, observability.NewMetricsForTesting(), discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	detectedAt := time.Date(2025, time.June, 14, 12, 0, 0, 0, time.UTC)
	reading := domain.WeatherReading{
		Latitude:      23.81,
		Longitude:     86.44,
		Temperature:   38,
		Humidity:      12,
		WindSpeed:     22,
		WindDirection: "SW",
	}
	spread := domain.PredictSpread(domain.Coordinates{Latitude: 23.81, Longitude: 86.44}, reading)
	detection := domain.DetectionRecord{
		ID:                "det-integration-1",
		ImageRef:          "fire.jpg",
		Latitude:          23.81,
		Longitude:         86.44,
		Confidence:        0.92,
		RiskLevel:         domain.RiskExtreme,
		DetectedAt:        detectedAt,
		WeatherData:       &reading,
		SpreadPrediction:  &spread,
		NotificationsSent: true,
	}

	require.NoError(t, writer.Publish(ctx, detection))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testAlertTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from alert topic")

	assert.Equal(t, []byte("det-integration-1"), msg.Key)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "EXTREME", headers["risk_level"])
	assert.Equal(t, detectedAt.Format(time.RFC3339), headers["detected_at"])

	var decoded domain.DetectionRecord
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, detection.ID, decoded.ID)
	assert.Equal(t, domain.RiskExtreme, decoded.RiskLevel)
	assert.True(t, decoded.NotificationsSent)
	require.NotNil(t, decoded.SpreadPrediction)
	assert.InDelta(t, spread.EvacuationRadius, decoded.SpreadPrediction.EvacuationRadius, 1e-9)
	require.NotNil(t, decoded.WeatherData)
	assert.Equal(t, 22.0, decoded.WeatherData.WindSpeed)
}
