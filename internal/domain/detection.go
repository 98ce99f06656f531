package domain

import "time"

// NotificationStatus is the delivery outcome recorded per agency.
type NotificationStatus string

const (
	StatusSent      NotificationStatus = "SENT"
	StatusDelivered NotificationStatus = "DELIVERED"
	StatusFailed    NotificationStatus = "FAILED"
)

// DetectionRecord is the persisted outcome of one positive fire detection,
// owned exclusively by the store. Created once per detection; never deleted;
// mutable only via DetectionUpdate.
type DetectionRecord struct {
	ID                string            `json:"id"`
	ImageRef          string            `json:"imageRef"`
	Latitude          float64           `json:"latitude"`
	Longitude         float64           `json:"longitude"`
	Confidence        float64           `json:"confidence"`
	RiskLevel         RiskLevel         `json:"riskLevel"`
	DetectedAt        time.Time         `json:"detectedAt"`
	WeatherData       *WeatherReading   `json:"weatherData,omitempty"`
	SpreadPrediction  *SpreadPrediction `json:"spreadPrediction,omitempty"`
	NotificationsSent bool              `json:"notificationsSent"`
}

// DetectionUpdate carries the fields of a partial detection update. Nil
// pointers leave the stored value untouched.
type DetectionUpdate struct {
	RiskLevel         *RiskLevel
	WeatherData       *WeatherReading
	SpreadPrediction  *SpreadPrediction
	NotificationsSent *bool
}

// NotificationRecord is one delivery attempt to one agency for one detection.
// Immutable once created. DetectionID is a weak reference: the store does not
// cascade-delete.
type NotificationRecord struct {
	ID          string             `json:"id"`
	DetectionID string             `json:"fireDetectionId"`
	Agency      string             `json:"agency"`
	Status      NotificationStatus `json:"status"`
	SentAt      time.Time          `json:"sentAt"`
}

// DetectionResult is what the pipeline emits to any caller for one upload.
// When FireDetected is false only FireDetected, Confidence, and Message are
// populated.
type DetectionResult struct {
	FireDetected     bool              `json:"fireDetected"`
	Confidence       float64           `json:"confidence"`
	Detection        *DetectionRecord  `json:"detection,omitempty"`
	WeatherData      *WeatherReading   `json:"weatherData,omitempty"`
	SpreadPrediction *SpreadPrediction `json:"spreadPrediction,omitempty"`
	Message          string            `json:"message,omitempty"`
}
