package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/ini.v1"
)

var ErrNotFound = errors.New("not found")

// required lists section and key pairs, which must be presented in every configuration file.
var required = [...][2]string{
	{"Server", "Host"},
	{"Server", "Port"},
}

// Load reads the INI configuration file and returns a checked config. Sections and keys are
// case-insensitive.
func Load(path string) (*Config, error) {
	return load(path)
}

// Parse is the same as Load, but the configuration is passed as is.
func Parse(data []byte) (*Config, error) {
	return load(data)
}

func load(source any) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, source)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	for _, pair := range required {
		if !file.Section(pair[0]).HasKey(pair[1]) {
			return nil, fmt.Errorf("invalid config: %s:%s %w", pair[0], pair[1], ErrNotFound)
		}
	}

	cfg, err := fromFile(file)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err = cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func fromFile(file *ini.File) (*Config, error) {
	cfg := Default()

	server := file.Section("Server")
	cfg.Server.Host = server.Key("Host").String()
	cfg.Server.Port = server.Key("Port").String()

	net := file.Section("Net")
	if net.HasKey("BufferSize") {
		size, err := net.Key("BufferSize").Int()
		if err != nil {
			return nil, fmt.Errorf("Net:BufferSize: %w", err)
		}

		cfg.NET.BufferSize = size
	}

	if net.HasKey("ReadTimeout") {
		timeout, err := net.Key("ReadTimeout").Duration()
		if err != nil {
			return nil, fmt.Errorf("Net:ReadTimeout: %w", err)
		}

		cfg.NET.ReadTimeout = timeout
	}

	if net.HasKey("AcceptInterrupt") {
		period, err := net.Key("AcceptInterrupt").Duration()
		if err != nil {
			return nil, fmt.Errorf("Net:AcceptInterrupt: %w", err)
		}

		cfg.NET.AcceptLoopInterruptPeriod = period
	}

	if net.HasKey("ShutdownTimeout") {
		timeout, err := net.Key("ShutdownTimeout").Duration()
		if err != nil {
			return nil, fmt.Errorf("Net:ShutdownTimeout: %w", err)
		}

		cfg.NET.ShutdownTimeout = timeout
	}

	log := file.Section("Log")
	cfg.Log.Level = log.Key("Level").MustString(cfg.Log.Level)
	cfg.Log.Format = log.Key("Format").MustString(cfg.Log.Format)

	cfg.Metrics.Addr = file.Section("Metrics").Key("Addr").String()

	return cfg, nil
}

// Check validates values of the config.
func (c *Config) Check() error {
	// only numeric ports are accepted, service names like "http" are not. Zero is allowed
	// and makes the system pick a free one
	if _, err := strconv.ParseUint(c.Server.Port, 10, 16); err != nil {
		return fmt.Errorf("Server:Port: bad port %q", c.Server.Port)
	}

	if c.NET.BufferSize <= 0 {
		return fmt.Errorf("Net:BufferSize: must be positive, got %d", c.NET.BufferSize)
	}

	if c.NET.ReadTimeout < 0 {
		return fmt.Errorf("Net:ReadTimeout: must not be negative, got %s", c.NET.ReadTimeout)
	}

	if c.NET.AcceptLoopInterruptPeriod <= 0 {
		return fmt.Errorf("Net:AcceptInterrupt: must be positive, got %s", c.NET.AcceptLoopInterruptPeriod)
	}

	if c.NET.ShutdownTimeout <= 0 {
		return fmt.Errorf("Net:ShutdownTimeout: must be positive, got %s", c.NET.ShutdownTimeout)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("Log:Level: %w", err)
	}

	switch c.Log.Format {
	case FormatJSON, FormatConsole:
	default:
		return fmt.Errorf("Log:Format: unknown format %q", c.Log.Format)
	}

	return nil
}
