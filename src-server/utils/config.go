package utils

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CityProfile describes the municipality the dashboard serves. It is
// loaded from a small yaml file so one build can ship to any town.
type CityProfile struct {
	Name        string  `yaml:"name"`
	Latitude    float64 `yaml:"latitude"`
	Longitude   float64 `yaml:"longitude"`
	RegionalKey string  `yaml:"regional_key"`
	// cron spec for the weather refresh, default "0 * * * *"
	WeatherRefresh string `yaml:"weather_refresh"`
}

type Config struct {
	port   string
	dbPath string

	location *time.Location

	weatherApiKey string
	city          CityProfile

	metricCollectionInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		dbPath: func() string {
			dbPath := os.Getenv("DB_PATH")
			if dbPath == "" {
				dbPath = "./sqlite.db"
			}
			slog.Debug("env", "DB_PATH", dbPath)
			return dbPath
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),

		weatherApiKey: func() string {
			weatherApiKey := os.Getenv("WEATHER_API_KEY")
			if weatherApiKey == "" {
				slog.Warn("WEATHER_API_KEY is not set, weather card stays empty")
				return ""
			}
			slog.Debug("env", "WEATHER_API_KEY", weatherApiKey[0:3]+"...")
			return weatherApiKey
		}(),

		city: func() CityProfile {
			cityConfigPath := os.Getenv("CITY_CONFIG")
			if cityConfigPath == "" {
				cityConfigPath = "./city.yaml"
			}
			slog.Debug("env", "CITY_CONFIG", cityConfigPath)

			city := CityProfile{
				Name:           "Paderborn",
				Latitude:       51.7189,
				Longitude:      8.7575,
				RegionalKey:    "057740000000",
				WeatherRefresh: "0 * * * *",
			}
			raw, err := os.ReadFile(cityConfigPath)
			if err != nil {
				slog.Warn("can't read city config, using defaults", "path", cityConfigPath, "error", err)
				return city
			}
			if err := yaml.Unmarshal(raw, &city); err != nil {
				slog.Error("invalid city config", "path", cityConfigPath, "error", err)
				os.Exit(1)
			}
			if city.WeatherRefresh == "" {
				city.WeatherRefresh = "0 * * * *"
			}
			slog.Debug("city config", "name", city.Name, "regional_key", city.RegionalKey)
			return city
		}(),

		metricCollectionInterval: func() time.Duration {
			intervalStr := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if intervalStr == "" {
				intervalStr = "1m"
			}
			interval, err := time.ParseDuration(intervalStr)
			if err != nil {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", interval)
			return interval
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DB_PATH env, default to ./sqlite.db
func (c *Config) GetDBPath() string {
	return c.dbPath
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get WEATHER_API_KEY env
func (c *Config) GetWeatherApiKey() string {
	return c.weatherApiKey
}

// Get the city profile loaded from CITY_CONFIG
func (c *Config) GetCity() CityProfile {
	return c.city
}

// Get METRIC_COLLECTION_INTERVAL env, default to 1m
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
