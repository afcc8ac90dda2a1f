package app

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultScratchDisk is the node-local scratch disk used when none is given.
const DefaultScratchDisk = "/disk/scratch"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl/yaml file or directory

	// Experiments restricts generation to the named experiments. Empty means
	// all of them.
	Experiments []string
	// Output overrides the destination of the experiment list. Only valid
	// when exactly one experiment is generated.
	Output string
	DryRun bool

	User        string
	ScratchDisk string
	Vars        map[string]string

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.ScratchDisk == "" {
		cfg.ScratchDisk = DefaultScratchDisk
	}
	for _, name := range cfg.Experiments {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("experiment names must not be empty")
		}
	}
	for k := range cfg.Vars {
		if k == "" || strings.ContainsAny(k, " \t.") {
			return nil, fmt.Errorf("invalid variable name %q", k)
		}
	}

	return &cfg, nil
}
