package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	DatasetPath   string
	DatasetURL    string
	GazetteerPath string
	GeoJitter     float64
	DefaultRegion string

	WatchIntervalSec int
	WatchSource      string
	WatchAutoExport  bool

	DisplayLocale   string
	DisplayCurrency string

	HTTPAddr     string
	TileURL      string
	MapCenterLat float64
	MapCenterLng float64
	MapZoom      int

	RemoteTimeoutMs    int
	RemoteRateLimitRPS int

	SheetsClientID      string
	SheetsClientSecret  string
	SheetsRedirectURI   string
	SheetsRefreshToken  string
	SheetsSpreadsheetID string
	SheetsRange         string

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		DatasetPath:   getEnv("DATASET_PATH", ""),
		DatasetURL:    getEnv("DATASET_URL", ""),
		GazetteerPath: getEnv("GAZETTEER_PATH", ""),
		GeoJitter:     getEnvFloat("GEO_JITTER", 0.015),
		DefaultRegion: getEnv("DEFAULT_REGION", "اسيوط"),

		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 300),
		WatchSource:      getEnv("WATCH_SOURCE", "url"),
		WatchAutoExport:  getEnvBool("WATCH_AUTO_EXPORT", false),

		DisplayLocale:   getEnv("DISPLAY_LOCALE", "ar-EG"),
		DisplayCurrency: getEnv("DISPLAY_CURRENCY", "EGP"),

		HTTPAddr:     getEnv("HTTP_ADDR", "127.0.0.1:8080"),
		TileURL:      getEnv("TILE_URL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"),
		MapCenterLat: getEnvFloat("MAP_CENTER_LAT", 27.1783),
		MapCenterLng: getEnvFloat("MAP_CENTER_LNG", 31.1859),
		MapZoom:      getEnvInt("MAP_ZOOM", 8),

		RemoteTimeoutMs:    getEnvInt("REMOTE_TIMEOUT_MS", 30000),
		RemoteRateLimitRPS: getEnvInt("REMOTE_RATE_LIMIT_RPS", 5),

		SheetsClientID:      getEnv("SHEETS_CLIENT_ID", ""),
		SheetsClientSecret:  getEnv("SHEETS_CLIENT_SECRET", ""),
		SheetsRedirectURI:   getEnv("SHEETS_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		SheetsRefreshToken:  getEnv("SHEETS_REFRESH_TOKEN", ""),
		SheetsSpreadsheetID: getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsRange:         getEnv("SHEETS_RANGE", "A1:ZZ"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
