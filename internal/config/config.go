package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDMag     string
	MQTTClientIDConsole string
	MQTTClientIDDebug   string

	// Topics
	TopicMag string
	TopicEnv string

	// Magnetometer / parent IMU hardware
	MagI2CBus  string
	MagI2CAddr uint16
	// MagExternal marks the parent as mounted off-board.
	MagExternal bool

	// BMP Hardware
	BMPSPIDevice string

	// Timing (milliseconds)
	MagSampleInterval int
	EnvSampleInterval int

	// Web Server
	WebServerPort int
}

// Package-level unexported variables for the config singleton. External code
// must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_MAG":
		c.MQTTClientIDMag = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DEBUG":
		c.MQTTClientIDDebug = value

	// Topics
	case "TOPIC_MAG":
		c.TopicMag = value
	case "TOPIC_ENV":
		c.TopicEnv = value

	// Magnetometer / parent IMU hardware
	case "MAG_I2C_BUS":
		c.MagI2CBus = value
	case "MAG_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid MAG_I2C_ADDR %q: %w", value, err)
		}
		c.MagI2CAddr = uint16(addr)
	case "MAG_EXTERNAL":
		ext, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid MAG_EXTERNAL %q: %w", value, err)
		}
		c.MagExternal = ext

	// BMP Hardware
	case "BMP_SPI_DEVICE":
		c.BMPSPIDevice = value

	// Timing
	case "MAG_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MAG_SAMPLE_INTERVAL %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("MAG_SAMPLE_INTERVAL must be positive, got %d", interval)
		}
		c.MagSampleInterval = interval
	case "ENV_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ENV_SAMPLE_INTERVAL %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("ENV_SAMPLE_INTERVAL must be positive, got %d", interval)
		}
		c.EnvSampleInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.MagI2CBus == "" {
		return fmt.Errorf("MAG_I2C_BUS is required")
	}
	if c.MagSampleInterval == 0 {
		return fmt.Errorf("MAG_SAMPLE_INTERVAL is required")
	}
	if c.TopicMag == "" {
		return fmt.Errorf("TOPIC_MAG is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Uses sync.Once
// so repeated calls are no-ops.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be called
// first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
