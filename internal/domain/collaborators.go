package domain

import "context"

// DetectionScore is the verdict returned by the fire detection service for
// one image.
type DetectionScore struct {
	IsFire     bool
	Confidence float64 // 0.0–1.0 model confidence
}

// FireDetector analyzes an image for the presence of fire.
type FireDetector interface {
	DetectFire(ctx context.Context, image []byte, contentType string) (DetectionScore, error)
}

// WeatherProvider fetches current conditions for a coordinate. Implementations
// may fail; callers must substitute a synthetic reading rather than propagate
// the error into the detection flow.
type WeatherProvider interface {
	CurrentConditions(ctx context.Context, lat, lon float64) (WeatherReading, error)
}
