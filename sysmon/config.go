// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sysmon

import (
	"fmt"
	"os"
	"time"

	"github.com/GermanBionicSystems/oledmon/i2cbus"
	"github.com/GermanBionicSystems/oledmon/i2cscan"
	"github.com/GermanBionicSystems/oledmon/sh1106"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Possible values of Config.Stats.
const (
	StatsStatic = "static"
	StatsHost   = "host"
)

// Config is the content of the YAML configuration file.
type Config struct {
	// Bus is the i2creg name of the bus, "" for the first one.
	Bus            string     `yaml:"bus"`
	SDA            string     `yaml:"sda"`
	SCL            string     `yaml:"scl"`
	FrequencyHz    int64      `yaml:"frequency_hz"`
	PullUps        bool       `yaml:"pull_ups"`
	Address        uint16     `yaml:"address"`
	Scan           ScanConfig `yaml:"scan"`
	FlushTimeoutMs int64      `yaml:"flush_timeout_ms"`
	Stats          string     `yaml:"stats"`
	IdleIntervalMs int64      `yaml:"idle_interval_ms"`
}

// ScanConfig configures the bus scan.
type ScanConfig struct {
	TimeoutMs int64 `yaml:"timeout_ms"`
	DelayMs   int64 `yaml:"delay_ms"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		SDA:         i2cbus.DefaultConfig.SDA,
		SCL:         i2cbus.DefaultConfig.SCL,
		FrequencyHz: int64(i2cbus.DefaultConfig.Frequency / physic.Hertz),
		PullUps:     i2cbus.DefaultConfig.PullUps,
		Address:     sh1106.DefaultAddr,
		Scan: ScanConfig{
			TimeoutMs: int64(i2cscan.DefaultOpts.Timeout / time.Millisecond),
			DelayMs:   int64(i2cscan.DefaultOpts.Delay / time.Millisecond),
		},
		FlushTimeoutMs: int64(sh1106.DefaultOpts.Timeout / time.Millisecond),
		Stats:          StatsStatic,
		IdleIntervalMs: 1000,
	}
}

// LoadConfig reads the YAML file at path over the defaults. A missing file
// is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("sysmon: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("sysmon: unable to interpret %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that can't be used as-is.
func (c *Config) Validate() error {
	if c.Address > i2cbus.MaxAddr {
		return fmt.Errorf("sysmon: address 0x%X is not a 7-bit address", c.Address)
	}
	if c.Stats != StatsStatic && c.Stats != StatsHost {
		return fmt.Errorf("sysmon: unknown stats source %q", c.Stats)
	}
	if c.FrequencyHz < 0 || c.Scan.TimeoutMs < 0 || c.Scan.DelayMs < 0 || c.FlushTimeoutMs < 0 || c.IdleIntervalMs <= 0 {
		return fmt.Errorf("sysmon: durations and frequency must not be negative, idle_interval_ms must be positive")
	}
	return nil
}

// BusConfig returns the transport configuration.
func (c *Config) BusConfig() *i2cbus.Config {
	return &i2cbus.Config{
		SDA:       c.SDA,
		SCL:       c.SCL,
		Frequency: physic.Frequency(c.FrequencyHz) * physic.Hertz,
		PullUps:   c.PullUps,
	}
}

// ScanOpts returns the bus scanner options.
func (c *Config) ScanOpts() *i2cscan.Opts {
	return &i2cscan.Opts{
		Probe:   i2cscan.DefaultOpts.Probe,
		Timeout: time.Duration(c.Scan.TimeoutMs) * time.Millisecond,
		Delay:   time.Duration(c.Scan.DelayMs) * time.Millisecond,
	}
}

// DisplayOpts returns the display driver options.
func (c *Config) DisplayOpts() *sh1106.Opts {
	opts := sh1106.DefaultOpts
	opts.Addr = c.Address
	opts.Timeout = time.Duration(c.FlushTimeoutMs) * time.Millisecond
	return &opts
}

// IdleInterval is the sleep between idle loop iterations.
func (c *Config) IdleInterval() time.Duration {
	return time.Duration(c.IdleIntervalMs) * time.Millisecond
}
