package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wardrobeapi/models"
)

// New York, used when the caller has no position.
const (
	DefaultLatitude  = 40.7128
	DefaultLongitude = -74.006
)

type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (*models.WeatherInfo, error)
}

type WeatherAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewWeatherAPIClient(apiKey string) *WeatherAPIClient {
	return &WeatherAPIClient{
		apiKey:     apiKey,
		baseURL:    "https://api.weatherapi.com/v1",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the client at another host, tests use an httptest server.
func (w *WeatherAPIClient) WithBaseURL(baseURL string) *WeatherAPIClient {
	w.baseURL = baseURL
	return w
}

type weatherAPIResponse struct {
	Location *struct {
		Name   string `json:"name"`
		Region string `json:"region"`
	} `json:"location"`
	Current *struct {
		TempF     float64 `json:"temp_f"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (w *WeatherAPIClient) Current(ctx context.Context, lat, lon float64) (*models.WeatherInfo, error) {
	if w.apiKey == "" {
		return nil, newProcessingError(StepWeather, "weather API key is not configured")
	}
	query := url.Values{}
	query.Set("key", w.apiKey)
	query.Set("q", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/current.json?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderUnavailableError{Step: StepWeather, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &ProviderUnavailableError{Step: StepWeather, Err: fmt.Errorf("status code %d", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newProcessingError(StepWeather, "weather lookup failed with status code %d", resp.StatusCode)
	}

	var body weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, newProcessingError(StepWeather, "malformed weather response: %v", err)
	}
	if body.Location == nil || body.Current == nil {
		return nil, newProcessingError(StepWeather, "weather response is missing location or current conditions")
	}
	return &models.WeatherInfo{
		Location:    body.Location.Name + ", " + body.Location.Region,
		Weather:     body.Current.Condition.Text,
		Temperature: body.Current.TempF,
	}, nil
}
