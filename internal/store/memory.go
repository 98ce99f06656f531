package store

import (
	"context"
	"sort"
	"sync"

	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// MemoryStore keeps all records in process memory. Safe for concurrent use;
// each create and update holds the write lock, so per-id read-modify-write is
// atomic and updates are never lost.
type MemoryStore struct {
	mu            sync.RWMutex
	detections    map[string]domain.DetectionRecord
	notifications map[string][]domain.NotificationRecord // keyed by detection id
	weather       []domain.WeatherRecord
	seq           uint64 // creation order, tiebreaker for equal timestamps
	order         map[string]uint64
	clock         clockwork.Clock
}

// NewMemoryStore creates an empty in-memory store. The clock stamps
// DetectedAt and SentAt; pass a fake clock in tests.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	return &MemoryStore{
		detections:    make(map[string]domain.DetectionRecord),
		notifications: make(map[string][]domain.NotificationRecord),
		order:         make(map[string]uint64),
		clock:         clock,
	}
}

func (s *MemoryStore) CreateDetection(_ context.Context, d domain.DetectionRecord) (domain.DetectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = uuid.NewString()
	d.DetectedAt = s.clock.Now().UTC()
	d.NotificationsSent = false

	s.seq++
	s.order[d.ID] = s.seq
	s.detections[d.ID] = d
	return d, nil
}

func (s *MemoryStore) GetDetection(_ context.Context, id string) (domain.DetectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.detections[id]
	if !ok {
		return domain.DetectionRecord{}, ErrNotFound
	}
	return d, nil
}

func (s *MemoryStore) ListDetections(_ context.Context) ([]domain.DetectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DetectionRecord, 0, len(s.detections))
	for _, d := range s.detections {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].DetectedAt.After(out[j].DetectedAt)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out, nil
}

func (s *MemoryStore) UpdateDetection(_ context.Context, id string, update domain.DetectionUpdate) (domain.DetectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.detections[id]
	if !ok {
		return domain.DetectionRecord{}, ErrNotFound
	}
	updated := applyUpdate(existing, update)
	s.detections[id] = updated
	return updated, nil
}

func (s *MemoryStore) CreateNotification(_ context.Context, n domain.NotificationRecord) (domain.NotificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.NewString()
	n.SentAt = s.clock.Now().UTC()
	s.notifications[n.DetectionID] = append(s.notifications[n.DetectionID], n)
	return n, nil
}

func (s *MemoryStore) ListNotificationsByDetection(_ context.Context, detectionID string) ([]domain.NotificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.notifications[detectionID]
	out := make([]domain.NotificationRecord, len(records))
	copy(out, records)
	return out, nil
}

func (s *MemoryStore) ArchiveWeather(_ context.Context, reading domain.WeatherReading) (domain.WeatherRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := domain.WeatherRecord{
		ID:        uuid.NewString(),
		Reading:   reading,
		Timestamp: s.clock.Now().UTC(),
	}
	s.weather = append(s.weather, rec)
	return rec, nil
}

func (s *MemoryStore) LatestWeatherNear(_ context.Context, lat, lon float64) (domain.WeatherRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := -1
	for i, rec := range s.weather {
		if !within(rec.Reading.Latitude, lat) || !within(rec.Reading.Longitude, lon) {
			continue
		}
		if best < 0 || rec.Timestamp.After(s.weather[best].Timestamp) {
			best = i
		}
	}
	if best < 0 {
		return domain.WeatherRecord{}, ErrNotFound
	}
	return s.weather[best], nil
}

func (s *MemoryStore) Close() error { return nil }

func within(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < nearbyDegrees
}
