// Package config defines and binds the flags that drive a sandboxed run.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Config is the fully-resolved set of options for a single run.
type Config struct {
	ChildPath          string
	ChildTimeout       time.Duration
	DesktopName        string
	DesktopHeapSize    uint32
	RequiresActivation bool
	ResultPath         string

	HasLimitCPUTime          bool
	LimitCPUTime             time.Duration
	HasLimitOverallMemory    bool
	LimitOverallMemory       uint64
	HasLimitPerProcessMemory bool
	LimitPerProcessMemory    uint64

	ChildArguments []string

	// raw flag pointers, populated by Bind and folded into the typed fields
	// above by Resolve; pflag only hands back pointers at bind time.
	childTimeoutMS        *int64
	limitCPUTimeMS        *int64
	limitOverallMemory    *int64
	limitPerProcessMemory *int64
}

const (
	defaultDesktopName     = "OvenDesktop"
	defaultDesktopHeapSize = 2048
	defaultResultPath      = "oven-result.json"
)

// Bind registers every flag this package understands on fs.
func Bind(fs *pflag.FlagSet) *Config {
	cfg := &Config{}

	fs.StringVar(&cfg.ChildPath, "child-path", "", "executable to run inside the sandbox (required)")
	fs.StringVar(&cfg.DesktopName, "desktop-name", defaultDesktopName, "name of the isolated desktop workspace")
	fs.Uint32Var(&cfg.DesktopHeapSize, "desktop-heap-size", defaultDesktopHeapSize, "desktop heap size in KB")
	fs.BoolVar(&cfg.RequiresActivation, "requires-activation", false, "foreground-activate the workspace for the run")
	fs.StringVar(&cfg.ResultPath, "result-path", defaultResultPath, "path to write the result JSON to")

	cfg.childTimeoutMS = fs.Int64("child-timeout", 0, "wall-clock limit in milliseconds (required)")
	cfg.limitCPUTimeMS = fs.Int64("limit-cpu-time", -1, "user-mode CPU cap in milliseconds (absent = unlimited)")
	cfg.limitOverallMemory = fs.Int64("limit-overall-memory", -1, "job-wide memory cap in bytes (absent = unlimited)")
	cfg.limitPerProcessMemory = fs.Int64("limit-per-process-memory", -1, "per-process memory cap in bytes (absent = unlimited)")

	return cfg
}

// Resolve validates required flags and folds the optional-limit flags
// (sentineled by -1) into the Has* booleans. args are the unparsed
// trailing arguments (after `--`), passed to the child verbatim.
func (c *Config) Resolve(args []string) error {
	if c.ChildPath == "" {
		return fmt.Errorf("config: --child-path is required")
	}
	if c.childTimeoutMS == nil || *c.childTimeoutMS <= 0 {
		return fmt.Errorf("config: --child-timeout is required and must be positive")
	}
	c.ChildTimeout = time.Duration(*c.childTimeoutMS) * time.Millisecond

	if c.limitCPUTimeMS != nil && *c.limitCPUTimeMS >= 0 {
		c.HasLimitCPUTime = true
		c.LimitCPUTime = time.Duration(*c.limitCPUTimeMS) * time.Millisecond
	}
	if c.limitOverallMemory != nil && *c.limitOverallMemory >= 0 {
		c.HasLimitOverallMemory = true
		c.LimitOverallMemory = uint64(*c.limitOverallMemory)
	}
	if c.limitPerProcessMemory != nil && *c.limitPerProcessMemory >= 0 {
		c.HasLimitPerProcessMemory = true
		c.LimitPerProcessMemory = uint64(*c.limitPerProcessMemory)
	}

	c.ChildArguments = args
	return nil
}
