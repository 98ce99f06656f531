// Package http exposes the dashboard API plus health, readiness, and metrics
// endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/pipeline"
	"github.com/SurjaPal/FirePredict/internal/store"
)

// DetectionService is the pipeline surface the HTTP layer depends on.
type DetectionService interface {
	ProcessUpload(ctx context.Context, image []byte, contentType, imageRef string, lat, lon float64) (domain.DetectionResult, error)
	Weather(ctx context.Context, lat, lon float64) (domain.WeatherReading, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the detection API over HTTP.
type Server struct {
	httpServer     *http.Server
	service        DetectionService
	store          store.Store
	clock          clockwork.Clock
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewServer creates the API server. maxUploadBytes bounds the multipart
// request body on the upload route.
func NewServer(addr string, service DetectionService, st store.Store, clock clockwork.Clock, maxUploadBytes int64, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		service:        service,
		store:          st,
		clock:          clock,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "http"),
	}

	mux.HandleFunc("POST /api/fire-detection", s.handleUpload)
	mux.HandleFunc("GET /api/fire-detections", s.handleListDetections)
	mux.HandleFunc("GET /api/fire-detections/{id}", s.handleGetDetection)
	mux.HandleFunc("GET /api/weather", s.handleWeather)
	mux.HandleFunc("GET /api/notifications/{fireId}", s.handleNotifications)
	mux.HandleFunc("GET /api/system-status", s.handleSystemStatus)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image exceeds the upload size limit")
			return
		}
		writeError(w, http.StatusBadRequest, "No image file provided")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	lat, err := strconv.ParseFloat(r.FormValue("latitude"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid latitude")
		return
	}
	lon, err := strconv.ParseFloat(r.FormValue("longitude"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid longitude")
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := s.service.ProcessUpload(r.Context(), image, contentType, header.Filename, lat, lon)
	if err != nil {
		s.logger.Error("process upload failed", "error", err)
		if errors.Is(err, pipeline.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "Invalid fire detection request")
			return
		}
		if errors.Is(err, pipeline.ErrDetectorUnavailable) {
			writeError(w, http.StatusBadGateway, "Fire detection service unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to process fire detection")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListDetections(w http.ResponseWriter, r *http.Request) {
	detections, err := s.store.ListDetections(r.Context())
	if err != nil {
		s.logger.Error("list detections failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch fire detections")
		return
	}
	writeJSON(w, http.StatusOK, detections)
}

func (s *Server) handleGetDetection(w http.ResponseWriter, r *http.Request) {
	detection, err := s.store.GetDetection(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Fire detection not found")
			return
		}
		s.logger.Error("get detection failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch fire detection")
		return
	}
	writeJSON(w, http.StatusOK, detection)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lat")
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid lng")
		return
	}

	reading, err := s.service.Weather(r.Context(), lat, lon)
	if err != nil {
		s.logger.Error("weather lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch weather data")
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.store.ListNotificationsByDetection(r.Context(), r.PathValue("fireId"))
	if err != nil {
		s.logger.Error("list notifications failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

// handleSystemStatus reports the monitoring feeds shown on the dashboard.
// Statuses are static while the feeds remain simulated; lastCheck tracks the
// server clock.
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	now := s.clock.Now().UTC()
	status := systemStatus{
		Firesat:  feedStatus{Status: "online", LastCheck: now},
		ECMWF:    feedStatus{Status: "active", LastCheck: now},
		NOAA:     feedStatus{Status: "monitoring", LastCheck: now},
		USCCWGAN: feedStatus{Status: "processing", LastCheck: now},
		Stats: statusStats{
			AvgProcessingTime: "0.2s",
			DetectionAccuracy: "96.8%",
		},
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type systemStatus struct {
	Firesat  feedStatus  `json:"firesat"`
	ECMWF    feedStatus  `json:"ecmwf"`
	NOAA     feedStatus  `json:"noaa"`
	USCCWGAN feedStatus  `json:"usc_cwgan"`
	Stats    statusStats `json:"stats"`
}

type feedStatus struct {
	Status    string    `json:"status"`
	LastCheck time.Time `json:"lastCheck"`
}

type statusStats struct {
	AvgProcessingTime string `json:"avgProcessingTime"`
	DetectionAccuracy string `json:"detectionAccuracy"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
