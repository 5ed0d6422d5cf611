// File: config/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scheduler configuration: defaults, YAML loading and validation. The
// composition root loads one Config and maps it onto sched options;
// every capacity here is fixed for the scheduler lifetime.

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-jobs/sched"
)

// Duration decodes YAML values like "250us" or "1ms" through
// time.ParseDuration; bare integers are nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: bad duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("config: bad duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Config mirrors the construction-time constants of the scheduler.
type Config struct {
	// Workers is the total participant count including the main
	// thread. Zero auto-detects from the CPU count.
	Workers int `yaml:"workers"`
	// MaxWorkers caps auto-detection.
	MaxWorkers int `yaml:"max_workers"`

	JobPoolSize     int `yaml:"job_pool_size"`
	CounterPoolSize int `yaml:"counter_pool_size"`
	MainQueueSize   int `yaml:"main_queue_size"`
	SubmitQueueSize int `yaml:"submit_queue_size"`

	// UpdateBudget bounds main-thread jobs drained per Update call.
	UpdateBudget int `yaml:"update_budget"`

	SpinIterations  int      `yaml:"spin_iterations"`
	YieldIterations int      `yaml:"yield_iterations"`
	SleepInterval   Duration `yaml:"sleep_interval"`

	// PinWorkers binds background workers to logical CPUs.
	PinWorkers bool `yaml:"pin_workers"`
}

// Default returns the construction defaults.
func Default() Config {
	return Config{
		Workers:         0,
		MaxWorkers:      sched.DefaultMaxWorkers,
		JobPoolSize:     sched.DefaultJobPoolSize,
		CounterPoolSize: sched.DefaultCounterPoolSize,
		MainQueueSize:   sched.DefaultMainQueueSize,
		SubmitQueueSize: sched.DefaultSubmitQueueSize,
		UpdateBudget:    sched.DefaultUpdateBudget,
		SpinIterations:  sched.DefaultSpinIterations,
		YieldIterations: sched.DefaultYieldIterations,
		SleepInterval:   Duration(sched.DefaultSleepInterval),
	}
}

// Load reads a YAML file over the defaults; absent keys keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the scheduler cannot honor.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be >= 0, got %d", c.Workers)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("config: max_workers must be >= 1, got %d", c.MaxWorkers)
	}
	if c.JobPoolSize < 1 {
		return fmt.Errorf("config: job_pool_size must be >= 1, got %d", c.JobPoolSize)
	}
	if c.CounterPoolSize < 1 {
		return fmt.Errorf("config: counter_pool_size must be >= 1, got %d", c.CounterPoolSize)
	}
	if c.MainQueueSize < 1 {
		return fmt.Errorf("config: main_queue_size must be >= 1, got %d", c.MainQueueSize)
	}
	if c.SubmitQueueSize < 1 {
		return fmt.Errorf("config: submit_queue_size must be >= 1, got %d", c.SubmitQueueSize)
	}
	if c.UpdateBudget < 1 {
		return fmt.Errorf("config: update_budget must be >= 1, got %d", c.UpdateBudget)
	}
	if c.SleepInterval < 0 {
		return fmt.Errorf("config: sleep_interval must be >= 0, got %s", time.Duration(c.SleepInterval))
	}
	return nil
}

// Options maps the configuration onto scheduler construction options.
func (c Config) Options() []sched.Option {
	return []sched.Option{
		sched.WithWorkers(c.Workers),
		sched.WithMaxWorkers(c.MaxWorkers),
		sched.WithJobPoolSize(c.JobPoolSize),
		sched.WithCounterPoolSize(c.CounterPoolSize),
		sched.WithMainQueueSize(c.MainQueueSize),
		sched.WithSubmitQueueSize(c.SubmitQueueSize),
		sched.WithUpdateBudget(c.UpdateBudget),
		sched.WithBackoff(c.SpinIterations, c.YieldIterations, time.Duration(c.SleepInterval)),
		sched.WithPinWorkers(c.PinWorkers),
	}
}
