package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/pipeline"
	"github.com/SurjaPal/FirePredict/internal/store"
)

var baseTime = time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)

type fakeService struct {
	result   domain.DetectionResult
	err      error
	readyErr error

	gotImage       []byte
	gotContentType string
	gotImageRef    string
	gotLat, gotLon float64

	weatherReading domain.WeatherReading
	weatherErr     error
}

func (f *fakeService) ProcessUpload(_ context.Context, image []byte, contentType, imageRef string, lat, lon float64) (domain.DetectionResult, error) {
	f.gotImage = image
	f.gotContentType = contentType
	f.gotImageRef = imageRef
	f.gotLat, f.gotLon = lat, lon
	return f.result, f.err
}

func (f *fakeService) Weather(_ context.Context, lat, lon float64) (domain.WeatherReading, error) {
	if f.weatherErr != nil {
		return domain.WeatherReading{}, f.weatherErr
	}
	r := f.weatherReading
	r.Latitude = lat
	r.Longitude = lon
	return r, nil
}

func (f *fakeService) CheckReadiness(_ context.Context) error {
	return f.readyErr
}

func newTestServer(t *testing.T, service *fakeService) (*Server, *store.MemoryStore, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(baseTime)
	st := store.NewMemoryStore(clock)
	logger := slog.New(slog.DiscardHandler)
	return NewServer(":0", service, st, clock, 10<<20, logger), st, clock
}

func multipartUpload(t *testing.T, image []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if image != nil {
		part, err := writer.CreateFormFile("image", "upload.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestHandleUpload_Success(t *testing.T) {
	detection := domain.DetectionRecord{ID: "det-1", RiskLevel: domain.RiskHigh, DetectedAt: baseTime}
	service := &fakeService{result: domain.DetectionResult{
		FireDetected: true,
		Confidence:   0.91,
		Detection:    &detection,
	}}
	srv, _, _ := newTestServer(t, service)

	body, contentType := multipartUpload(t, []byte("jpeg bytes"), map[string]string{
		"latitude":  "23.81",
		"longitude": "86.44",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/fire-detection", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("jpeg bytes"), service.gotImage)
	assert.Equal(t, "upload.jpg", service.gotImageRef)
	assert.Equal(t, 23.81, service.gotLat)
	assert.Equal(t, 86.44, service.gotLon)

	var result domain.DetectionResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.True(t, result.FireDetected)
	require.NotNil(t, result.Detection)
	assert.Equal(t, "det-1", result.Detection.ID)
}

func TestHandleUpload_MissingImage(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeService{})

	body, contentType := multipartUpload(t, nil, map[string]string{
		"latitude":  "23.81",
		"longitude": "86.44",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/fire-detection", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No image file provided")
}

func TestHandleUpload_InvalidCoordinates(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeService{})

	body, contentType := multipartUpload(t, []byte("img"), map[string]string{
		"latitude":  "not-a-number",
		"longitude": "86.44",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/fire-detection", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid latitude")
}

func TestHandleUpload_CoordinatesOutOfRange(t *testing.T) {
	service := &fakeService{err: fmt.Errorf("%w: latitude 91 out of range", pipeline.ErrInvalidInput)}
	srv, _, _ := newTestServer(t, service)

	body, contentType := multipartUpload(t, []byte("img"), map[string]string{
		"latitude":  "91",
		"longitude": "86.44",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/fire-detection", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid fire detection request")
}

func TestHandleUpload_DetectorUnavailable(t *testing.T) {
	service := &fakeService{err: fmt.Errorf("%w: connection refused", pipeline.ErrDetectorUnavailable)}
	srv, _, _ := newTestServer(t, service)

	body, contentType := multipartUpload(t, []byte("img"), map[string]string{
		"latitude":  "23.81",
		"longitude": "86.44",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/fire-detection", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleUpload_PipelineError(t *testing.T) {
	service := &fakeService{err: errors.New("store write failed")}
	srv, _, _ := newTestServer(t, service)

	body, contentType := multipartUpload(t, []byte("img"), map[string]string{
		"latitude":  "23.81",
		"longitude": "86.44",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/fire-detection", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to process fire detection")
}

func TestHandleListDetections(t *testing.T) {
	srv, st, clock := newTestServer(t, &fakeService{})
	ctx := context.Background()

	first, err := st.CreateDetection(ctx, domain.DetectionRecord{ImageRef: "a.jpg", RiskLevel: domain.RiskLow})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := st.CreateDetection(ctx, domain.DetectionRecord{ImageRef: "b.jpg", RiskLevel: domain.RiskHigh})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/fire-detections", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var detections []domain.DetectionRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detections))
	require.Len(t, detections, 2)
	assert.Equal(t, second.ID, detections[0].ID)
	assert.Equal(t, first.ID, detections[1].ID)
}

func TestHandleGetDetection(t *testing.T) {
	srv, st, _ := newTestServer(t, &fakeService{})
	created, err := st.CreateDetection(context.Background(), domain.DetectionRecord{ImageRef: "a.jpg"})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/fire-detections/"+created.ID, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var detection domain.DetectionRecord
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&detection))
		assert.Equal(t, created.ID, detection.ID)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/fire-detections/missing", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Fire detection not found")
	})
}

func TestHandleWeather(t *testing.T) {
	service := &fakeService{weatherReading: domain.WeatherReading{Temperature: 33, Humidity: 21, WindSpeed: 14, WindDirection: "NW"}}
	srv, _, _ := newTestServer(t, service)

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/weather?lat=23.81&lng=86.44", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var reading domain.WeatherReading
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&reading))
		assert.Equal(t, 33.0, reading.Temperature)
		assert.Equal(t, 23.81, reading.Latitude)
	})

	t.Run("missing lat", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/weather?lng=86.44", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleNotifications(t *testing.T) {
	srv, st, _ := newTestServer(t, &fakeService{})
	_, err := st.CreateNotification(context.Background(), domain.NotificationRecord{
		DetectionID: "fire-1",
		Agency:      "NDMA (National Disaster Management Authority)",
		Status:      domain.StatusDelivered,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications/fire-1", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var notifications []domain.NotificationRecord
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&notifications))
	require.Len(t, notifications, 1)
	assert.Equal(t, "fire-1", notifications[0].DetectionID)
}

func TestHandleSystemStatus(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/system-status", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status systemStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "online", status.Firesat.Status)
	assert.Equal(t, "monitoring", status.NOAA.Status)
	assert.True(t, status.Firesat.LastCheck.Equal(baseTime))
	assert.Equal(t, "96.8%", status.Stats.DetectionAccuracy)
}

func TestHandleHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestHandleReady(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv, _, _ := newTestServer(t, &fakeService{})
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		srv, _, _ := newTestServer(t, &fakeService{readyErr: errors.New("store not reachable")})
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandleUpload_BodyTooLarge(t *testing.T) {
	clock := clockwork.NewFakeClockAt(baseTime)
	st := store.NewMemoryStore(clock)
	srv := NewServer(":0", &fakeService{}, st, clock, 64, slog.New(slog.DiscardHandler))

	big := bytes.Repeat([]byte("x"), 1024)
	body, contentType := multipartUpload(t, big, map[string]string{
		"latitude":  "23.81",
		"longitude": "86.44",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/fire-detection", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "Image exceeds the upload size limit")
}
