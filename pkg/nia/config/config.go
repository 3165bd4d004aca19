package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

const (
	DeviceMock = "mock"
	DeviceFile = "file"
	DeviceHID  = "hid"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	SamplingRate     int           `yaml:"sampling_rate"`
	Device           string        `yaml:"device"`
	PlaybackLocation string        `yaml:"playback_location"`
	PlaybackLoop     bool          `yaml:"playback_loop"`
	HIDPath          string        `yaml:"hid_path"`
	NumSamples       int           `yaml:"num_samples"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	LogLevel         string        `yaml:"log_level"`
	Server           struct {
		Port     int `yaml:"port"`
		PlotSize int `yaml:"plot_size"`
	} `yaml:"server"`
	InfluxDB struct {
		Host         string `yaml:"host"`
		Token        string `yaml:"token"`
		Organization string `yaml:"organization"`
		Bucket       string `yaml:"bucket"`
	} `yaml:"influxdb"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads a YAML config file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config file %s", path)
	}
	return Parse(contents)
}

func Parse(contents []byte) (Config, error) {
	// Unset keys are detected as zero values; an explicit num_samples: 0 is
	// therefore indistinguishable from the default.
	var c Config
	if err := yaml.UnmarshalStrict(contents, &c); err != nil {
		return Config{}, errors.Wrap(err, "unmarshaling yaml config")
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.SamplingRate == 0 {
		c.SamplingRate = 256
	}
	if c.PlaybackLocation != "" {
		c.Device = DeviceFile
	}
	if c.Device == "" {
		c.Device = DeviceMock
	}
	if c.HIDPath == "" {
		c.HIDPath = "/dev/hidraw0"
	}
	if c.NumSamples == 0 {
		c.NumSamples = 1
	}
	if c.PollInterval == 0 {
		c.PollInterval = time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = zerolog.InfoLevel.String()
	}
	if c.Server.PlotSize == 0 {
		c.Server.PlotSize = c.SamplingRate
	}
}

func (c Config) Validate() error {
	if c.SamplingRate <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "sampling_rate must be positive, got %d", c.SamplingRate)
	}
	if c.NumSamples < 0 {
		return errors.Wrapf(ErrInvalidConfig, "num_samples must be >= 0, got %d", c.NumSamples)
	}
	if c.PollInterval < 0 {
		return errors.Wrapf(ErrInvalidConfig, "poll_interval must be positive, got %s", c.PollInterval)
	}
	switch c.Device {
	case DeviceMock, DeviceHID:
	case DeviceFile:
		if c.PlaybackLocation == "" {
			return errors.Wrap(ErrInvalidConfig, "file device requires playback_location")
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown device %q", c.Device)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Wrapf(ErrInvalidConfig, "server.port out of range: %d", c.Server.Port)
	}
	if c.Server.PlotSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "server.plot_size must be positive, got %d", c.Server.PlotSize)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log_level: %v", err)
	}
	return nil
}

// Level is the parsed log_level; Validate guarantees it parses.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
