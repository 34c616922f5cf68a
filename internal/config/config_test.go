package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestResolveRequiresChildPath(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := Bind(fs)
	if err := fs.Parse([]string{"--child-timeout", "1000"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	if err := cfg.Resolve(nil); err == nil {
		t.Fatal("Resolve succeeded without --child-path, want error")
	}
}

func TestResolveRequiresPositiveChildTimeout(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := Bind(fs)
	if err := fs.Parse([]string{"--child-path", "child.exe"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	if err := cfg.Resolve(nil); err == nil {
		t.Fatal("Resolve succeeded without --child-timeout, want error")
	}
}

func TestResolveDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := Bind(fs)
	if err := fs.Parse([]string{"--child-path", "child.exe", "--child-timeout", "5000"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	if err := cfg.Resolve(nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if cfg.DesktopName != defaultDesktopName {
		t.Errorf("DesktopName = %q, want %q", cfg.DesktopName, defaultDesktopName)
	}
	if cfg.DesktopHeapSize != defaultDesktopHeapSize {
		t.Errorf("DesktopHeapSize = %d, want %d", cfg.DesktopHeapSize, defaultDesktopHeapSize)
	}
	if cfg.RequiresActivation {
		t.Error("RequiresActivation defaulted to true, want false")
	}
	if cfg.ChildTimeout != 5*time.Second {
		t.Errorf("ChildTimeout = %v, want 5s", cfg.ChildTimeout)
	}
	if cfg.HasLimitCPUTime || cfg.HasLimitOverallMemory || cfg.HasLimitPerProcessMemory {
		t.Error("limit flags set without being passed")
	}
}

func TestResolveOptionalLimits(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := Bind(fs)
	args := []string{
		"--child-path", "child.exe",
		"--child-timeout", "1000",
		"--limit-cpu-time", "200",
		"--limit-overall-memory", "1000000",
		"--limit-per-process-memory", "50000000",
		"--", "arg1", "arg2",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	if err := cfg.Resolve(fs.Args()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if !cfg.HasLimitCPUTime || cfg.LimitCPUTime != 200*time.Millisecond {
		t.Errorf("LimitCPUTime = %v (has=%v), want 200ms", cfg.LimitCPUTime, cfg.HasLimitCPUTime)
	}
	if !cfg.HasLimitOverallMemory || cfg.LimitOverallMemory != 1000000 {
		t.Errorf("LimitOverallMemory = %v, want 1000000", cfg.LimitOverallMemory)
	}
	if !cfg.HasLimitPerProcessMemory || cfg.LimitPerProcessMemory != 50000000 {
		t.Errorf("LimitPerProcessMemory = %v, want 50000000", cfg.LimitPerProcessMemory)
	}
	wantArgs := []string{"arg1", "arg2"}
	if len(cfg.ChildArguments) != len(wantArgs) {
		t.Fatalf("ChildArguments = %v, want %v", cfg.ChildArguments, wantArgs)
	}
	for i, arg := range wantArgs {
		if cfg.ChildArguments[i] != arg {
			t.Errorf("ChildArguments[%d] = %q, want %q", i, cfg.ChildArguments[i], arg)
		}
	}
}
