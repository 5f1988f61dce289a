package models

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML as either a duration
// string ("1s", "10m") or a plain number of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var secs float64
	if err := value.Decode(&secs); err != nil {
		return fmt.Errorf("invalid duration value %q", value.Value)
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DomainMask is a bitmask of metric domains enabled for collection. Disabled
// domains are skipped entirely, including their (possibly expensive) OS calls.
type DomainMask uint16

const (
	DomainCPU DomainMask = 1 << iota
	DomainMemory
	DomainNetwork
	DomainDisk
	DomainTemperature
	DomainBattery
	DomainProcess
)

// Has reports whether the given domain bit is set.
func (m DomainMask) Has(d DomainMask) bool { return m&d != 0 }

// CPUNormalization selects how per-process CPU percentages are scaled.
type CPUNormalization int

const (
	// NormalizeTotal divides by the logical core count, so the sum over all
	// processes approximates total system usage (0-100).
	NormalizeTotal CPUNormalization = iota

	// NormalizePerCore reports raw per-core percentages (0-100 per core,
	// so a busy 8-core box can show a single process at 800).
	NormalizePerCore
)

// ParseCPUNormalization maps a configuration string to a normalization mode.
func ParseCPUNormalization(s string) (CPUNormalization, error) {
	switch s {
	case "", "total":
		return NormalizeTotal, nil
	case "per_core", "per-core":
		return NormalizePerCore, nil
	default:
		return NormalizeTotal, errors.New("cpu_normalization must be \"total\" or \"per_core\"")
	}
}

// FilterConfig is the on-disk form of one name filter.
type FilterConfig struct {
	Patterns      []string `yaml:"patterns"`        // Literal names, or "regex:<pattern>" entries
	IsListIgnored bool     `yaml:"is_list_ignored"` // true = denylist, false = allowlist
	CaseSensitive bool     `yaml:"case_sensitive"`  // Match case exactly
	WholeWord     bool     `yaml:"whole_word"`      // Match whole words only
}

// MonitorConfig is the structure of the monitor configuration file.
type MonitorConfig struct {
	Interval  Duration `yaml:"interval"`  // Sampling interval between collection cycles
	Retention Duration `yaml:"retention"` // How much graph history each time series keeps
	LogLevel  string   `yaml:"log_level"` // zerolog level name

	Domains struct {
		CPU         bool `yaml:"cpu"`
		Memory      bool `yaml:"memory"`
		Network     bool `yaml:"network"`
		Disk        bool `yaml:"disk"`
		Temperature bool `yaml:"temperature"`
		Battery     bool `yaml:"battery"`
		Process     bool `yaml:"process"`
	} `yaml:"domains"`

	CPUNormalization string `yaml:"cpu_normalization"` // "total" or "per_core"
	TemperatureScale string `yaml:"temperature_scale"` // "celsius", "kelvin" or "fahrenheit"

	Process struct {
		TreeGrouping  bool `yaml:"tree_grouping"`   // Show processes as a parent/child tree
		MergeSameName bool `yaml:"merge_same_name"` // Coalesce same-name processes when not in tree mode
	} `yaml:"process"`

	Filters struct {
		Network     FilterConfig `yaml:"network"`     // Interface names
		Disk        FilterConfig `yaml:"disk"`        // Mount points
		Temperature FilterConfig `yaml:"temperature"` // Sensor names
		Process     FilterConfig `yaml:"process"`     // Process names
	} `yaml:"filters"`
}

// DefaultMonitorConfig returns the configuration used when no file is given.
func DefaultMonitorConfig() *MonitorConfig {
	cfg := &MonitorConfig{
		Interval:  Duration(time.Second),
		Retention: Duration(10 * time.Minute),
		LogLevel:  "info",
	}
	cfg.Domains.CPU = true
	cfg.Domains.Memory = true
	cfg.Domains.Network = true
	cfg.Domains.Disk = true
	cfg.Domains.Temperature = true
	cfg.Domains.Battery = true
	cfg.Domains.Process = true
	cfg.Filters.Network.IsListIgnored = true
	cfg.Filters.Disk.IsListIgnored = true
	cfg.Filters.Temperature.IsListIgnored = true
	cfg.Filters.Process.IsListIgnored = true
	return cfg
}

// DomainMask folds the per-domain booleans into a bitmask.
func (c *MonitorConfig) DomainMask() DomainMask {
	var m DomainMask
	if c.Domains.CPU {
		m |= DomainCPU
	}
	if c.Domains.Memory {
		m |= DomainMemory
	}
	if c.Domains.Network {
		m |= DomainNetwork
	}
	if c.Domains.Disk {
		m |= DomainDisk
	}
	if c.Domains.Temperature {
		m |= DomainTemperature
	}
	if c.Domains.Battery {
		m |= DomainBattery
	}
	if c.Domains.Process {
		m |= DomainProcess
	}
	return m
}

// Validate checks the configuration for construction-time errors. These are
// fatal before the scheduler ever starts.
func (c *MonitorConfig) Validate() error {
	if c.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	if c.Retention < c.Interval {
		return errors.New("retention must be at least one interval")
	}
	if c.DomainMask() == 0 {
		return errors.New("no metric domains enabled in configuration")
	}
	if _, err := ParseCPUNormalization(c.CPUNormalization); err != nil {
		return err
	}
	if _, err := ParseTemperatureScale(c.TemperatureScale); err != nil {
		return err
	}
	return nil
}
