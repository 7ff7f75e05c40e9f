// Copyright (c) 2026 Ecols
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mag_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `# magnetometer producer config
MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_MAG=mag-producer
MQTT_CLIENT_ID_CONSOLE=mag-console
MQTT_CLIENT_ID_DEBUG=mag-debug

TOPIC_MAG=sensors/mag
TOPIC_ENV=sensors/env

MAG_I2C_BUS=/dev/i2c-1
MAG_I2C_ADDR=0x68
MAG_EXTERNAL=true

BMP_SPI_DEVICE=/dev/spidev0.0

MAG_SAMPLE_INTERVAL=10
ENV_SAMPLE_INTERVAL=1000

WEB_SERVER_PORT=8081
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "mag-producer", cfg.MQTTClientIDMag)
	assert.Equal(t, "sensors/mag", cfg.TopicMag)
	assert.Equal(t, "sensors/env", cfg.TopicEnv)
	assert.Equal(t, "/dev/i2c-1", cfg.MagI2CBus)
	assert.Equal(t, uint16(0x68), cfg.MagI2CAddr)
	assert.True(t, cfg.MagExternal)
	assert.Equal(t, "/dev/spidev0.0", cfg.BMPSPIDevice)
	assert.Equal(t, 10, cfg.MagSampleInterval)
	assert.Equal(t, 1000, cfg.EnvSampleInterval)
	assert.Equal(t, 8081, cfg.WebServerPort)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown key",
			content: "MQTT_BROKER=tcp://b\nTOPIC_MAG=t\nMAG_I2C_BUS=b\nMAG_SAMPLE_INTERVAL=10\nBOGUS_KEY=1\n",
		},
		{
			name:    "malformed line",
			content: "MQTT_BROKER tcp://b\n",
		},
		{
			name:    "bad i2c address",
			content: "MAG_I2C_ADDR=zz\n",
		},
		{
			name:    "non-positive sample interval",
			content: "MAG_SAMPLE_INTERVAL=0\n",
		},
		{
			name:    "missing broker",
			content: "TOPIC_MAG=t\nMAG_I2C_BUS=b\nMAG_SAMPLE_INTERVAL=10\n",
		},
		{
			name:    "missing topic",
			content: "MQTT_BROKER=tcp://b\nMAG_I2C_BUS=b\nMAG_SAMPLE_INTERVAL=10\n",
		},
		{
			name:    "missing bus",
			content: "MQTT_BROKER=tcp://b\nTOPIC_MAG=t\nMAG_SAMPLE_INTERVAL=10\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	path := writeConfig(t, `
# comment
MQTT_BROKER=tcp://b

TOPIC_MAG=t
MAG_I2C_BUS=/dev/i2c-1
MAG_SAMPLE_INTERVAL=10
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://b", cfg.MQTTBroker)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
