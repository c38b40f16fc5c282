package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	WifiSSID          string
	WifiPassword      string
	WifiInterface     string
	LinkRetryInterval time.Duration

	StoreURL           string
	StoreUsername      string
	StorePassword      string
	StoreClientID      string
	StoreReadyAttempts int
	StoreReadyInterval time.Duration

	I2CBus          string
	CO2Channel      int
	HumidityChannel int

	CyclePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	wifiSSID := strings.TrimSpace(os.Getenv("WIFI_SSID"))
	wifiPassword := os.Getenv("WIFI_PASSWORD")

	wifiInterface := strings.TrimSpace(os.Getenv("WIFI_INTERFACE"))
	if wifiInterface == "" {
		wifiInterface = "wlan0"
	}

	linkRetryInterval, err := durationEnv("LINK_RETRY_INTERVAL", 300*time.Millisecond)
	if err != nil {
		return Config{}, err
	}

	storeURL := strings.TrimSpace(os.Getenv("STORE_URL"))
	if storeURL == "" {
		storeURL = "localhost:1883"
	}

	storeUsername := strings.TrimSpace(os.Getenv("STORE_USERNAME"))
	storePassword := os.Getenv("STORE_PASSWORD")

	storeClientID := strings.TrimSpace(os.Getenv("STORE_CLIENT_ID"))
	if storeClientID == "" {
		storeClientID = "carbonmon"
	}

	storeReadyAttemptsStr := strings.TrimSpace(os.Getenv("STORE_READY_ATTEMPTS"))
	if storeReadyAttemptsStr == "" {
		storeReadyAttemptsStr = "20"
	}
	storeReadyAttempts, err := strconv.Atoi(storeReadyAttemptsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid STORE_READY_ATTEMPTS %q: %w", storeReadyAttemptsStr, err)
	}
	if storeReadyAttempts <= 0 {
		return Config{}, fmt.Errorf("STORE_READY_ATTEMPTS must be positive, got %d", storeReadyAttempts)
	}

	storeReadyInterval, err := durationEnv("STORE_READY_INTERVAL", time.Second)
	if err != nil {
		return Config{}, err
	}

	i2cBus := strings.TrimSpace(os.Getenv("I2C_BUS"))

	co2Channel, err := channelEnv("CO2_CHANNEL", 0)
	if err != nil {
		return Config{}, err
	}
	humidityChannel, err := channelEnv("HUMIDITY_CHANNEL", 1)
	if err != nil {
		return Config{}, err
	}
	if co2Channel == humidityChannel {
		return Config{}, fmt.Errorf("CO2_CHANNEL and HUMIDITY_CHANNEL must differ, both are %d", co2Channel)
	}

	cyclePeriod, err := durationEnv("CYCLE_PERIOD", 5*time.Second)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:             appEnv,
		LogLevel:           level,
		WifiSSID:           wifiSSID,
		WifiPassword:       wifiPassword,
		WifiInterface:      wifiInterface,
		LinkRetryInterval:  linkRetryInterval,
		StoreURL:           storeURL,
		StoreUsername:      storeUsername,
		StorePassword:      storePassword,
		StoreClientID:      storeClientID,
		StoreReadyAttempts: storeReadyAttempts,
		StoreReadyInterval: storeReadyInterval,
		I2CBus:             i2cBus,
		CO2Channel:         co2Channel,
		HumidityChannel:    humidityChannel,
		CyclePeriod:        cyclePeriod,
	}, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", name, d)
	}
	return d, nil
}

// channelEnv parses an ADC channel number. The ADS1115 has four single-ended
// inputs.
func channelEnv(name string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		return def, nil
	}
	ch, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if ch < 0 || ch > 3 {
		return 0, fmt.Errorf("%s must be in 0..3, got %d", name, ch)
	}
	return ch, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
