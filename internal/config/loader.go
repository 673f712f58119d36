package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config captures the settings of the todo service.
type Config struct {
	HTTPPort             int
	SQLiteDSN            string
	WeatherAPIKey        string
	WeatherBaseURL       string
	WeatherIconBaseURL   string
	WeatherTimeout       time.Duration
	WeatherRatePerMinute int
	LogLevel             string
	LogFile              string
}

// fileConfig mirrors Config in the optional TOML file. Durations are strings such as "10s".
type fileConfig struct {
	HTTPPort             *int    `toml:"http_port"`
	SQLiteDSN            *string `toml:"sqlite_dsn"`
	WeatherAPIKey        *string `toml:"weather_api_key"`
	WeatherBaseURL       *string `toml:"weather_base_url"`
	WeatherIconBaseURL   *string `toml:"weather_icon_base_url"`
	WeatherTimeout       *string `toml:"weather_timeout"`
	WeatherRatePerMinute *int    `toml:"weather_rate_per_minute"`
	LogLevel             *string `toml:"log_level"`
	LogFile              *string `toml:"log_file"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		HTTPPort:             8080,
		SQLiteDSN:            "todo.db",
		WeatherBaseURL:       "https://api.openweathermap.org",
		WeatherIconBaseURL:   "http://openweathermap.org",
		WeatherTimeout:       10 * time.Second,
		WeatherRatePerMinute: 60,
		LogLevel:             "info",
	}
}

// Load resolves configuration from defaults, the TOML file named by TODO_CONFIG_FILE, a .env file in the
// working directory and finally the process environment. Later sources win; variables already set in the
// environment are never overwritten by .env. Invalid values are reported together.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit .env path. A missing .env file is not an error.
func LoadFrom(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Defaults()
	invalid := make([]string, 0, 2)

	if path := strings.TrimSpace(os.Getenv("TODO_CONFIG_FILE")); path != "" {
		fileInvalid, err := applyFile(&cfg, path)
		if err != nil {
			return Config{}, err
		}
		invalid = append(invalid, fileInvalid...)
	}

	if portValue := strings.TrimSpace(os.Getenv("TODO_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || !validPort(port) {
			invalid = append(invalid, "TODO_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TODO_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if key := strings.TrimSpace(os.Getenv("TODO_WEATHER_API_KEY")); key != "" {
		cfg.WeatherAPIKey = key
	}

	if base := strings.TrimSpace(os.Getenv("TODO_WEATHER_BASE_URL")); base != "" {
		cfg.WeatherBaseURL = base
	}

	if iconBase := strings.TrimSpace(os.Getenv("TODO_WEATHER_ICON_BASE_URL")); iconBase != "" {
		cfg.WeatherIconBaseURL = iconBase
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("TODO_WEATHER_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "TODO_WEATHER_TIMEOUT")
		} else {
			cfg.WeatherTimeout = timeout
		}
	}

	if rateValue := strings.TrimSpace(os.Getenv("TODO_WEATHER_RATE_PER_MINUTE")); rateValue != "" {
		rate, err := strconv.Atoi(rateValue)
		if err != nil || rate <= 0 {
			invalid = append(invalid, "TODO_WEATHER_RATE_PER_MINUTE")
		} else {
			cfg.WeatherRatePerMinute = rate
		}
	}

	if level := strings.TrimSpace(os.Getenv("TODO_LOG_LEVEL")); level != "" {
		if !validLogLevel(level) {
			invalid = append(invalid, "TODO_LOG_LEVEL")
		} else {
			cfg.LogLevel = strings.ToLower(level)
		}
	}

	if file := strings.TrimSpace(os.Getenv("TODO_LOG_FILE")); file != "" {
		cfg.LogFile = file
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) ([]string, error) {
	var file fileConfig
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("load config file %s: %w", path, err)
	}

	invalid := make([]string, 0)
	if file.HTTPPort != nil {
		if !validPort(*file.HTTPPort) {
			invalid = append(invalid, "http_port")
		} else {
			cfg.HTTPPort = *file.HTTPPort
		}
	}
	if file.SQLiteDSN != nil && strings.TrimSpace(*file.SQLiteDSN) != "" {
		cfg.SQLiteDSN = strings.TrimSpace(*file.SQLiteDSN)
	}
	if file.WeatherAPIKey != nil {
		cfg.WeatherAPIKey = strings.TrimSpace(*file.WeatherAPIKey)
	}
	if file.WeatherBaseURL != nil && strings.TrimSpace(*file.WeatherBaseURL) != "" {
		cfg.WeatherBaseURL = strings.TrimSpace(*file.WeatherBaseURL)
	}
	if file.WeatherIconBaseURL != nil && strings.TrimSpace(*file.WeatherIconBaseURL) != "" {
		cfg.WeatherIconBaseURL = strings.TrimSpace(*file.WeatherIconBaseURL)
	}
	if file.WeatherTimeout != nil {
		timeout, err := time.ParseDuration(strings.TrimSpace(*file.WeatherTimeout))
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "weather_timeout")
		} else {
			cfg.WeatherTimeout = timeout
		}
	}
	if file.WeatherRatePerMinute != nil {
		if *file.WeatherRatePerMinute <= 0 {
			invalid = append(invalid, "weather_rate_per_minute")
		} else {
			cfg.WeatherRatePerMinute = *file.WeatherRatePerMinute
		}
	}
	if file.LogLevel != nil {
		if !validLogLevel(*file.LogLevel) {
			invalid = append(invalid, "log_level")
		} else {
			cfg.LogLevel = strings.ToLower(strings.TrimSpace(*file.LogLevel))
		}
	}
	if file.LogFile != nil {
		cfg.LogFile = strings.TrimSpace(*file.LogFile)
	}
	return invalid, nil
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

func validLogLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}
