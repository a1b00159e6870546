package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"go-tree-inspector/internal/logger"
)

const (
	DefaultPlantIDURL    = "https://api.plant.id/v2/identify"
	DefaultExcerptLength = 500

	FormulaLegacy  = "legacy"
	FormulaTangent = "tangent"

	ExcerptModeMarkdown = "markdown"
	ExcerptModeRaw      = "raw"
)

type Config struct {
	Host               string
	Port               string
	LogLevel           string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	IdentifyTimeout    time.Duration
	MaxRequestBodySize int64

	PlantIDAPIKey string
	PlantIDURL    string

	HeightFormula string
	ExcerptLength int
	ExcerptMode   string

	AzureAccountName string
	AzureAccountKey  string
	CameraDevice     int

	PlaqueOCR      bool
	PlaqueLanguage string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob credentials were supplied
func (c *Config) AzureEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

// LoadFromEnv builds the configuration from, in increasing precedence, built-in
// defaults, the YAML file named by CONFIG_FILE and the process environment.
// A .env file in the working directory is loaded into the environment first.
func LoadFromEnv() (*Config, error) {
	// Missing .env is normal outside development
	_ = godotenv.Load()

	src := &source{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		values, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		src.file = values
	}
	return load(src)
}

func load(src *source) (*Config, error) {
	cfg := &Config{
		Host:               src.stringOr("HOST", "0.0.0.0"),
		Port:               src.stringOr("PORT", "8080"),
		LogLevel:           src.stringOr("LOG_LEVEL", "info"),
		RequestTimeout:     src.durationOr("REQUEST_TIMEOUT", 60*time.Second),
		ImageFetchTimeout:  src.durationOr("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		IdentifyTimeout:    src.durationOr("IDENTIFY_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: src.int64Or("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		PlantIDAPIKey:      src.stringOr("PLANT_ID_API_KEY", ""),
		PlantIDURL:         src.stringOr("PLANT_ID_URL", DefaultPlantIDURL),
		HeightFormula:      strings.ToLower(src.stringOr("HEIGHT_FORMULA", FormulaLegacy)),
		ExcerptLength:      int(src.int64Or("EXCERPT_LENGTH", DefaultExcerptLength)),
		ExcerptMode:        strings.ToLower(src.stringOr("EXCERPT_MODE", ExcerptModeMarkdown)),
		AzureAccountName:   src.stringOr("AZURE_STORAGE_ACCOUNT", ""),
		AzureAccountKey:    src.stringOr("AZURE_STORAGE_KEY", ""),
		CameraDevice:       int(src.int64Or("CAMERA_DEVICE", 0)),
		PlaqueOCR:          src.boolOr("PLAQUE_OCR", false),
		PlaqueLanguage:     src.stringOr("PLAQUE_LANGUAGE", "eng"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.IdentifyTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, identify=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.IdentifyTimeout)
	}
	switch c.HeightFormula {
	case FormulaLegacy, FormulaTangent:
	default:
		return fmt.Errorf("HEIGHT_FORMULA must be %q or %q (got %q)", FormulaLegacy, FormulaTangent, c.HeightFormula)
	}
	switch c.ExcerptMode {
	case ExcerptModeMarkdown, ExcerptModeRaw:
	default:
		return fmt.Errorf("EXCERPT_MODE must be %q or %q (got %q)", ExcerptModeMarkdown, ExcerptModeRaw, c.ExcerptMode)
	}
	if c.ExcerptLength <= 0 {
		return fmt.Errorf("EXCERPT_LENGTH must be > 0 (got %d)", c.ExcerptLength)
	}
	if c.CameraDevice < 0 {
		return fmt.Errorf("CAMERA_DEVICE must be >= 0 (got %d)", c.CameraDevice)
	}
	return nil
}

// source resolves a key from the environment, then from the optional file.
type source struct {
	file map[string]string
}

func (s *source) lookup(key string) (string, bool) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value, true
	}
	if value, ok := s.file[strings.ToLower(key)]; ok && value != "" {
		return value, true
	}
	return "", false
}

func (s *source) stringOr(key, defaultValue string) string {
	if value, ok := s.lookup(key); ok {
		return value
	}
	return defaultValue
}

func (s *source) durationOr(key string, defaultValue time.Duration) time.Duration {
	if value, ok := s.lookup(key); ok {
		if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
			return duration
		}
		discarded(key, value, defaultValue)
	}
	return defaultValue
}

func (s *source) int64Or(key string, defaultValue int64) int64 {
	if value, ok := s.lookup(key); ok {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
		discarded(key, value, defaultValue)
	}
	return defaultValue
}

func (s *source) boolOr(key string, defaultValue bool) bool {
	if value, ok := s.lookup(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		discarded(key, value, defaultValue)
	}
	return defaultValue
}

// discarded warns that a supplied value could not be parsed
func discarded(key, value string, defaultValue interface{}) {
	logger.WithFields(logrus.Fields{
		"key":     key,
		"value":   value,
		"default": defaultValue,
	}).Warn("Ignoring unparseable configuration value")
}

// readFile parses a flat YAML mapping; keys are the lowercased variable names
// (plant_id_url, height_formula, ...).
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseFile(data)
}

func parseFile(data []byte) (map[string]string, error) {
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToLower(k)] = strings.TrimSpace(fmt.Sprint(v))
	}
	return values, nil
}
