package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host           string
	Port           string
	RequestTimeout time.Duration
	MaxUploadSize  int64

	UploadDir string
	ReportDir string

	// ReportBackend selects where rendered reports are written: "local" or "azure".
	ReportBackend    string
	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string

	// EmptySheetPolicy decides how a student sheet with zero detected bubbles
	// grades: "lenient" scores every key question as incorrect, "strict"
	// rejects the request.
	EmptySheetPolicy string

	HeaderOCREnabled bool

	// Annotation colors for the report renderer, as #RRGGBB hex.
	CorrectColor string
	WrongColor   string

	// Bubble detector thresholds. Defaults match the detector package.
	MinBubbleArea int
	MaxBubbleArea int
	MinAspect     float64
	MaxAspect     float64
	RowTolerance  int
	FillThreshold int
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:           getEnvOrDefault("HOST", "0.0.0.0"),
		Port:           getEnvOrDefault("PORT", "8080"),
		RequestTimeout: parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxUploadSize:  parseIntOrDefault("MAX_UPLOAD_SIZE", 20*1024*1024), // 20MB

		UploadDir: getEnvOrDefault("UPLOAD_DIR", "uploads"),
		ReportDir: getEnvOrDefault("REPORT_DIR", "reports"),

		ReportBackend:    getEnvOrDefault("REPORT_BACKEND", "local"),
		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:   getEnvOrDefault("AZURE_CONTAINER", "omr-reports"),

		EmptySheetPolicy: getEnvOrDefault("EMPTY_SHEET_POLICY", "lenient"),
		HeaderOCREnabled: parseBoolOrDefault("HEADER_OCR_ENABLED", false),

		CorrectColor: getEnvOrDefault("CORRECT_COLOR", "#008000"),
		WrongColor:   getEnvOrDefault("WRONG_COLOR", "#ff0000"),

		MinBubbleArea: int(parseIntOrDefault("MIN_BUBBLE_AREA", 500)),
		MaxBubbleArea: int(parseIntOrDefault("MAX_BUBBLE_AREA", 5000)),
		MinAspect:     parseFloatOrDefault("MIN_BUBBLE_ASPECT", 0.8),
		MaxAspect:     parseFloatOrDefault("MAX_BUBBLE_ASPECT", 1.2),
		RowTolerance:  int(parseIntOrDefault("ROW_TOLERANCE", 20)),
		FillThreshold: int(parseIntOrDefault("FILL_THRESHOLD", 50)),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", cfg.MaxUploadSize)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", cfg.RequestTimeout)
	}
	switch cfg.ReportBackend {
	case "local", "azure":
	default:
		return nil, fmt.Errorf("invalid REPORT_BACKEND: %q (want local or azure)", cfg.ReportBackend)
	}
	if cfg.ReportBackend == "azure" && (cfg.AzureAccountName == "" || cfg.AzureAccountKey == "") {
		return nil, fmt.Errorf("REPORT_BACKEND=azure requires AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY")
	}
	switch cfg.EmptySheetPolicy {
	case "lenient", "strict":
	default:
		return nil, fmt.Errorf("invalid EMPTY_SHEET_POLICY: %q (want lenient or strict)", cfg.EmptySheetPolicy)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
