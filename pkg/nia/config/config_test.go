package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 256, c.SamplingRate)
	assert.Equal(t, DeviceMock, c.Device)
	assert.Equal(t, 1, c.NumSamples)
	assert.Equal(t, time.Second, c.PollInterval)
	assert.Equal(t, "/dev/hidraw0", c.HIDPath)
	assert.Equal(t, 256, c.Server.PlotSize)
	assert.Equal(t, zerolog.InfoLevel, c.Level())
	assert.NoError(t, c.Validate())
}

func TestParse(t *testing.T) {
	contents := []byte(`
sampling_rate: 512
device: hid
hid_path: /dev/hidraw3
num_samples: 32
poll_interval: 250ms
log_level: debug
server:
  port: 8080
  plot_size: 1024
influxdb:
  host: http://localhost:8086
  organization: lab
  bucket: nia
`)
	c, err := Parse(contents)
	require.NoError(t, err)
	assert.Equal(t, 512, c.SamplingRate)
	assert.Equal(t, DeviceHID, c.Device)
	assert.Equal(t, "/dev/hidraw3", c.HIDPath)
	assert.Equal(t, 32, c.NumSamples)
	assert.Equal(t, 250*time.Millisecond, c.PollInterval)
	assert.Equal(t, zerolog.DebugLevel, c.Level())
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 1024, c.Server.PlotSize)
	assert.Equal(t, "http://localhost:8086", c.InfluxDB.Host)
	assert.Equal(t, "lab", c.InfluxDB.Organization)
	assert.Equal(t, "nia", c.InfluxDB.Bucket)
}

func TestPlaybackForcesFileDevice(t *testing.T) {
	c, err := Parse([]byte("device: hid\nplayback_location: session.f32\n"))
	require.NoError(t, err)
	assert.Equal(t, DeviceFile, c.Device)
	assert.Equal(t, 256, c.Server.PlotSize)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"negative rate", "sampling_rate: -5\n"},
		{"negative samples", "num_samples: -1\n"},
		{"unknown device", "device: bluetooth\n"},
		{"file without recording", "device: file\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad level", "log_level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.contents))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("sample_rate: 256\n"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	path := filepath.Join(dir, "nia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sampling_rate: 128\n"), 0o644))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 128, c.SamplingRate)
	assert.Equal(t, 128, c.Server.PlotSize)
}
