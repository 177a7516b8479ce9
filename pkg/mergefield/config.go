package mergefield

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config contains all configuration options for the mergefield engine
type Config struct {
	// CacheMaxSize is the maximum number of prepared templates to cache. 0 disables caching.
	CacheMaxSize int
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string
	// FieldKeyword is the field code that marks template commands.
	FieldKeyword string
	// CaptionSequence names the SEQ field used for image captions.
	CaptionSequence string
	// StrictStyles rejects rich-text classes and headings missing from the
	// document's style catalog.
	StrictStyles bool
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func loadGlobalConfig() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheMaxSize:    100,
		CacheTTL:        0,
		LogLevel:        "info",
		FieldKeyword:    "MERGEFIELD",
		CaptionSequence: "Figure",
		StrictStyles:    true,
	}
}

// ConfigFromEnvironment creates a configuration from MERGEFIELD_* environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()

	if val := os.Getenv("MERGEFIELD_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	if val := os.Getenv("MERGEFIELD_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = duration
		}
	}

	if val := os.Getenv("MERGEFIELD_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	if val := os.Getenv("MERGEFIELD_FIELD_KEYWORD"); val != "" {
		config.FieldKeyword = val
	}

	if val := os.Getenv("MERGEFIELD_CAPTION_SEQUENCE"); val != "" {
		config.CaptionSequence = val
	}

	if val := os.Getenv("MERGEFIELD_STRICT_STYLES"); val != "" {
		config.StrictStyles = parseBool(val)
	}

	return config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CacheMaxSize < 0 {
		return errors.New("cache max size cannot be negative")
	}

	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "off":
	default:
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if strings.TrimSpace(c.FieldKeyword) == "" {
		return errors.New("field keyword cannot be empty")
	}

	if strings.ContainsAny(c.CaptionSequence, " \t\\\"") || c.CaptionSequence == "" {
		return errors.New("invalid caption sequence name: " + c.CaptionSequence)
	}

	return nil
}

// GetGlobalConfig returns a copy of the global configuration
func GetGlobalConfig() *Config {
	loadGlobalConfig()
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	loadGlobalConfig()
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
