package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Built-in source documents, overridable via environment. An override is
// honored only when it is URL-shaped; anything else falls back to the
// default so a typo in the environment cannot break every request.
const (
	DefaultFinanceWorkbookURL = "https://docs.google.com/spreadsheets/d/1kxuhSGNjXuYehIA0wQeYlgynwL9Pa2wx8DT5jKIsKHU/export?format=xlsx"
	DefaultTaskExportURL      = "https://docs.google.com/spreadsheets/d/1Fn7dh3kwvgDaMww7WunkxaOcRiW_qpos/export?format=csv"
)

var urlShaped = regexp.MustCompile(`(?i)^https?://`)

type Config struct {
	Server  ServerConfig
	Sources SourcesConfig
	Logger  LoggerConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type SourcesConfig struct {
	FinanceWorkbookURL string
	TaskExportURL      string
	FetchTimeout       time.Duration
}

type LoggerConfig struct {
	Level string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine; plain environment variables still apply
	// (useful for Docker/K8s).

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	fetchTimeout, _ := strconv.Atoi(getEnv("SOURCE_FETCH_TIMEOUT", "20"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Sources: SourcesConfig{
			FinanceWorkbookURL: getSourceURL("FINANCE_SHEET_XLSX_URL", DefaultFinanceWorkbookURL),
			TaskExportURL:      getSourceURL("UPCOMING_SHEET_EXPORT_URL", DefaultTaskExportURL),
			FetchTimeout:       time.Duration(fetchTimeout) * time.Second,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getSourceURL(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value != "" && urlShaped.MatchString(value) {
		return value
	}
	return defaultValue
}
