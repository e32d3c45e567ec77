// Package weather keeps an hourly-refreshed snapshot of the city's
// weather from weatherapi.com. A failed refresh keeps the previous
// snapshot in place; requests are always served from the cache.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"cityboard/src-server/apperr"
)

const forecastURL = "https://api.weatherapi.com/v1/forecast.json"

var refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cityboard_weather_refresh_total",
	Help: "Weather refresh attempts by outcome",
}, []string{"outcome"})

type Config struct {
	APIKey    string
	City      string
	Latitude  float64
	Longitude float64
}

type Current struct {
	Temp          float64 `json:"temp"`
	TempFeelsLike float64 `json:"temp_feels_like"`
	WindSpeedMS   float64 `json:"wind_speed_ms"`
	WindSpeed     float64 `json:"wind_speed"`
	WindKph       float64 `json:"wind_kph"`
	GustKph       float64 `json:"gust_kph"`
	GustMS        float64 `json:"gust_ms"`
	WindDeg       int     `json:"wind_deg"`
	WindDir       string  `json:"wind_dir"`
	Sky           string  `json:"sky"`
	WeatherIcon   string  `json:"weather_icon"`
	Timestamp     string  `json:"timestamp"`
}

type HiLo struct {
	HighC float64 `json:"high_c"`
	LowC  float64 `json:"low_c"`
}

type Hour struct {
	Time        string  `json:"time"`
	TempC       float64 `json:"temp_c"`
	Sky         string  `json:"sky"`
	WeatherIcon string  `json:"weather_icon"`
}

type Location struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	TzID      string  `json:"tz_id"`
	Localtime string  `json:"localtime"`
}

// Payload is the cached snapshot served to dashboard cards.
type Payload struct {
	Location Location `json:"location"`
	Current  Current  `json:"current"`
	Today    HiLo     `json:"today"`
	Next12   []Hour   `json:"next12"`
}

type Service struct {
	cfg    Config
	client *http.Client

	mu    sync.RWMutex
	cache *Payload
}

func NewService(cfg Config) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Snapshot returns the cached payload, if any refresh ever succeeded.
func (s *Service) Snapshot() (Payload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cache == nil {
		return Payload{}, false
	}
	return *s.cache, true
}

// Refresh fetches a two-day forecast (so the next-12-hours window is
// always covered) and overwrites the cache. On failure the previous
// snapshot stays in place and the error is returned.
func (s *Service) Refresh(ctx context.Context) error {
	if s.cfg.APIKey == "" {
		return apperr.Validation("weather", "api key is not configured")
	}

	query := s.cfg.City
	if s.cfg.Latitude != 0 || s.cfg.Longitude != 0 {
		query = fmt.Sprintf("%f,%f", s.cfg.Latitude, s.cfg.Longitude)
	}

	requestURL := forecastURL + "?" + url.Values{
		"key":    {s.cfg.APIKey},
		"q":      {query},
		"days":   {"2"},
		"aqi":    {"no"},
		"alerts": {"no"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("Service.Refresh: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		return apperr.Transport("weather fetch", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		refreshTotal.WithLabelValues("error").Inc()
		return apperr.Transport("weather fetch", fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		return apperr.Transport("weather decode", err)
	}

	payload := mapPayload(raw, time.Now())

	s.mu.Lock()
	s.cache = &payload
	s.mu.Unlock()
	refreshTotal.WithLabelValues("ok").Inc()
	return nil
}

// Schedule registers the hourly refresh on the given cron runner. A
// failed run only logs; the stale snapshot keeps serving.
func (s *Service) Schedule(c *cron.Cron, spec string) error {
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			slog.Warn("weather refresh failed, keeping stale snapshot", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("Service.Schedule: %w", err)
	}
	return nil
}
