//go:build !windows

package orchestrator

import (
	"errors"

	"github.com/nehonix-labs/oven/internal/config"
	"github.com/nehonix-labs/oven/internal/result"
)

// Run always reports an internal error off Windows: the sandboxed
// execution pipeline (desktops, job objects, completion ports) is a Win32
// concept with no cross-platform equivalent.
func Run(cfg *config.Config) int {
	res := result.New(cfg.ResultPath)
	res.SetInternalError("sandboxed execution is only supported on windows", errors.New("unsupported platform"))
	return res.Exit(1)
}
