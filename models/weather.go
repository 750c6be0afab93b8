package models

// WeatherInfo is request context for suggestions and is never stored.
type WeatherInfo struct {
	Location    string  `json:"location"`
	Weather     string  `json:"weather"`
	Temperature float64 `json:"temperature"`
}
