// Package openweather implements domain.WeatherProvider using the
// OpenWeatherMap current-weather API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/SurjaPal/FirePredict/internal/domain"
	"github.com/SurjaPal/FirePredict/internal/observability"
)

// Client fetches current conditions from OpenWeatherMap. Temperatures come
// back in Celsius (units=metric) and wind speed in the API's native unit,
// which the risk model treats as mph-scale.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		metrics: metrics,
		logger:  logger.With("component", "openweather"),
	}
}

// CurrentConditions returns live weather at the given coordinates.
func (c *Client) CurrentConditions(ctx context.Context, lat, lon float64) (domain.WeatherReading, error) {
	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":   {strconv.FormatFloat(lon, 'f', 6, 64)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherReading{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return domain.WeatherReading{}, fmt.Errorf("openweathermap error: status %d: %s", resp.StatusCode, body)
	}

	var owmResp response
	if err := json.NewDecoder(resp.Body).Decode(&owmResp); err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherReading{}, fmt.Errorf("decode response: %w", err)
	}

	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return domain.WeatherReading{
		Latitude:      lat,
		Longitude:     lon,
		Temperature:   owmResp.Main.Temp,
		Humidity:      owmResp.Main.Humidity,
		WindSpeed:     owmResp.Wind.Speed,
		WindDirection: domain.WindDirectionFromDegrees(owmResp.Wind.Deg),
		Synthetic:     false,
	}, nil
}

// OpenWeatherMap API response types.

type response struct {
	Main mainBlock `json:"main"`
	Wind windBlock `json:"wind"`
}

type mainBlock struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

type windBlock struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}
