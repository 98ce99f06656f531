package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// SQLiteStore persists records in a SQLite database. It mirrors the
// MemoryStore contract; see the Store interface docs.
type SQLiteStore struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string, clock clockwork.Clock) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	s := &SQLiteStore{db: db, clock: clock}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS detections (
			id TEXT PRIMARY KEY,
			image_ref TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			confidence REAL NOT NULL,
			risk_level TEXT NOT NULL,
			detected_at INTEGER NOT NULL,
			weather_json TEXT,
			spread_json TEXT,
			notifications_sent INTEGER NOT NULL DEFAULT 0,
			seq INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_detected_at ON detections(detected_at)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			detection_id TEXT NOT NULL,
			agency TEXT NOT NULL,
			status TEXT NOT NULL,
			sent_at INTEGER NOT NULL,
			seq INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_detection ON notifications(detection_id)`,
		`CREATE TABLE IF NOT EXISTS weather (
			id TEXT PRIMARY KEY,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			reading_json TEXT NOT NULL,
			archived_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init sqlite schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateDetection(ctx context.Context, d domain.DetectionRecord) (domain.DetectionRecord, error) {
	d.ID = uuid.NewString()
	d.DetectedAt = s.clock.Now().UTC()
	d.NotificationsSent = false

	weatherJSON, err := marshalNullable(d.WeatherData)
	if err != nil {
		return domain.DetectionRecord{}, err
	}
	spreadJSON, err := marshalNullable(d.SpreadPrediction)
	if err != nil {
		return domain.DetectionRecord{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO detections (id, image_ref, latitude, longitude, confidence, risk_level, detected_at, weather_json, spread_json, notifications_sent, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, (SELECT COALESCE(MAX(seq), 0) + 1 FROM detections))`,
		d.ID, d.ImageRef, d.Latitude, d.Longitude, d.Confidence, d.RiskLevel.String(),
		d.DetectedAt.UnixNano(), weatherJSON, spreadJSON,
	)
	if err != nil {
		return domain.DetectionRecord{}, fmt.Errorf("insert detection: %w", err)
	}
	return d, nil
}

func (s *SQLiteStore) GetDetection(ctx context.Context, id string) (domain.DetectionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, image_ref, latitude, longitude, confidence, risk_level, detected_at, weather_json, spread_json, notifications_sent
		 FROM detections WHERE id = ?`, id)
	return scanDetection(row)
}

func (s *SQLiteStore) ListDetections(ctx context.Context) ([]domain.DetectionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, image_ref, latitude, longitude, confidence, risk_level, detected_at, weather_json, spread_json, notifications_sent
		 FROM detections ORDER BY detected_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	var out []domain.DetectionRecord
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateDetection(ctx context.Context, id string, update domain.DetectionUpdate) (domain.DetectionRecord, error) {
	// Read-modify-write inside one transaction so concurrent updates to the
	// same id cannot be lost.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DetectionRecord{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, image_ref, latitude, longitude, confidence, risk_level, detected_at, weather_json, spread_json, notifications_sent
		 FROM detections WHERE id = ?`, id)
	existing, err := scanDetection(row)
	if err != nil {
		return domain.DetectionRecord{}, err
	}

	updated := applyUpdate(existing, update)

	weatherJSON, err := marshalNullable(updated.WeatherData)
	if err != nil {
		return domain.DetectionRecord{}, err
	}
	spreadJSON, err := marshalNullable(updated.SpreadPrediction)
	if err != nil {
		return domain.DetectionRecord{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE detections SET risk_level = ?, weather_json = ?, spread_json = ?, notifications_sent = ? WHERE id = ?`,
		updated.RiskLevel.String(), weatherJSON, spreadJSON, boolToInt(updated.NotificationsSent), id,
	)
	if err != nil {
		return domain.DetectionRecord{}, fmt.Errorf("update detection: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.DetectionRecord{}, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}

func (s *SQLiteStore) CreateNotification(ctx context.Context, n domain.NotificationRecord) (domain.NotificationRecord, error) {
	n.ID = uuid.NewString()
	n.SentAt = s.clock.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, detection_id, agency, status, sent_at, seq)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM notifications))`,
		n.ID, n.DetectionID, n.Agency, string(n.Status), n.SentAt.UnixNano(),
	)
	if err != nil {
		return domain.NotificationRecord{}, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) ListNotificationsByDetection(ctx context.Context, detectionID string) ([]domain.NotificationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, detection_id, agency, status, sent_at FROM notifications WHERE detection_id = ? ORDER BY seq`,
		detectionID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]domain.NotificationRecord, 0)
	for rows.Next() {
		var n domain.NotificationRecord
		var status string
		var sentAt int64
		if err := rows.Scan(&n.ID, &n.DetectionID, &n.Agency, &status, &sentAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Status = domain.NotificationStatus(status)
		n.SentAt = time.Unix(0, sentAt).UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ArchiveWeather(ctx context.Context, reading domain.WeatherReading) (domain.WeatherRecord, error) {
	rec := domain.WeatherRecord{
		ID:        uuid.NewString(),
		Reading:   reading,
		Timestamp: s.clock.Now().UTC(),
	}
	readingJSON, err := json.Marshal(reading)
	if err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("marshal weather reading: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO weather (id, latitude, longitude, reading_json, archived_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, reading.Latitude, reading.Longitude, string(readingJSON), rec.Timestamp.UnixNano(),
	)
	if err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("insert weather: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) LatestWeatherNear(ctx context.Context, lat, lon float64) (domain.WeatherRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, reading_json, archived_at FROM weather
		 WHERE ABS(latitude - ?) < ? AND ABS(longitude - ?) < ?
		 ORDER BY archived_at DESC LIMIT 1`,
		lat, nearbyDegrees, lon, nearbyDegrees)

	var rec domain.WeatherRecord
	var readingJSON string
	var archivedAt int64
	if err := row.Scan(&rec.ID, &readingJSON, &archivedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WeatherRecord{}, ErrNotFound
		}
		return domain.WeatherRecord{}, fmt.Errorf("scan weather: %w", err)
	}
	if err := json.Unmarshal([]byte(readingJSON), &rec.Reading); err != nil {
		return domain.WeatherRecord{}, fmt.Errorf("unmarshal weather reading: %w", err)
	}
	rec.Timestamp = time.Unix(0, archivedAt).UTC()
	return rec, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanDetection(row scanner) (domain.DetectionRecord, error) {
	var d domain.DetectionRecord
	var riskLevel string
	var detectedAt int64
	var weatherJSON, spreadJSON sql.NullString
	var notified int

	err := row.Scan(&d.ID, &d.ImageRef, &d.Latitude, &d.Longitude, &d.Confidence,
		&riskLevel, &detectedAt, &weatherJSON, &spreadJSON, &notified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DetectionRecord{}, ErrNotFound
		}
		return domain.DetectionRecord{}, fmt.Errorf("scan detection: %w", err)
	}

	if err := d.RiskLevel.UnmarshalText([]byte(riskLevel)); err != nil {
		return domain.DetectionRecord{}, err
	}
	d.DetectedAt = time.Unix(0, detectedAt).UTC()
	d.NotificationsSent = notified != 0

	if weatherJSON.Valid && weatherJSON.String != "" {
		var w domain.WeatherReading
		if err := json.Unmarshal([]byte(weatherJSON.String), &w); err != nil {
			return domain.DetectionRecord{}, fmt.Errorf("unmarshal weather: %w", err)
		}
		d.WeatherData = &w
	}
	if spreadJSON.Valid && spreadJSON.String != "" {
		var p domain.SpreadPrediction
		if err := json.Unmarshal([]byte(spreadJSON.String), &p); err != nil {
			return domain.DetectionRecord{}, fmt.Errorf("unmarshal spread prediction: %w", err)
		}
		d.SpreadPrediction = &p
	}
	return d, nil
}

func marshalNullable(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case *domain.WeatherReading:
		if t == nil {
			return sql.NullString{}, nil
		}
	case *domain.SpreadPrediction:
		if t == nil {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal record field: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
