//go:build windows

// Package orchestrator wires the workspace, container, and child together
// into the end-to-end sandboxed run: construct, spawn, wait with timeout,
// terminate if necessary, drain, and report.
package orchestrator

import (
	"log"

	"github.com/nehonix-labs/oven/internal/config"
	"github.com/nehonix-labs/oven/internal/desktop"
	"github.com/nehonix-labs/oven/internal/job"
	"github.com/nehonix-labs/oven/internal/process"
	"github.com/nehonix-labs/oven/internal/result"
	"github.com/nehonix-labs/oven/internal/tamperwatch"
)

// Run executes the full pipeline described by cfg and returns the process
// exit code: 0 if the pipeline itself completed (regardless of how the
// child fared), 1 on internal setup failure.
func Run(cfg *config.Config) int {
	res := result.New(cfg.ResultPath)

	ws, err := desktop.New(cfg.DesktopName, cfg.DesktopHeapSize)
	if err != nil {
		res.SetInternalError("unable to create desktop workspace", err)
		return res.Exit(1)
	}
	defer ws.Close()

	container, err := job.New()
	if err != nil {
		res.SetInternalError("unable to create job container", err)
		return res.Exit(1)
	}
	defer container.Close()

	container.AddObserver(job.ObserverFunc(func(e job.Event) {
		log.Printf("oven: job event %v (pid=%d)", e.Kind, e.ProcessID)
	}))

	if err := container.SetBasicLimits(job.BasicLimits{
		HasOverallMemoryLimit:    cfg.HasLimitOverallMemory,
		OverallMemoryLimit:       cfg.LimitOverallMemory,
		HasPerProcessMemoryLimit: cfg.HasLimitPerProcessMemory,
		PerProcessMemoryLimit:    cfg.LimitPerProcessMemory,
		HasCPUTimeLimit:          cfg.HasLimitCPUTime,
		CPUTimeLimit:             cfg.LimitCPUTime,
	}); err != nil {
		res.SetInternalError("unable to apply resource limits", err)
		return res.Exit(1)
	}

	var activation *desktop.ScopedActivation
	if cfg.RequiresActivation {
		activation = desktop.Activate(ws)
		defer activation.Restore()
	}

	watcher, err := tamperwatch.New(cfg.ChildPath)
	if err == nil {
		defer watcher.Close()
	}

	child := process.New(cfg.ChildPath, cfg.ChildArguments)
	pid, err := child.Run(container, cfg.DesktopName)
	if err != nil {
		res.SetInternalError("unable to start child process", err)
		return res.Exit(1)
	}
	log.Printf("oven: started child pid=%d", pid)
	defer child.Close()

	exitCode, ok := child.Wait(cfg.ChildTimeout)
	if !ok {
		if child.IsAlive() {
			res.MarkChildTimedOut()
		}
		exitCode, ok = child.Terminate()
	}
	if ok {
		res.SetChildExitCode(exitCode)
	}

	outputs := child.Outputs()
	res.SetChildStdout(outputs.Stdout)
	res.SetChildStderr(outputs.Stderr)

	return res.Exit(0)
}
