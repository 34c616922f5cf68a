//go:build !windows

package process

import (
	"errors"
	"strings"
	"time"

	"github.com/nehonix-labs/oven/internal/drain"
	"github.com/nehonix-labs/oven/internal/job"
)

// ErrUnsupported is returned by every operation on non-Windows platforms.
var ErrUnsupported = errors.New("process: sandboxed child processes are only supported on windows")

type State int

const (
	Unstarted State = iota
	Running
	Exited
	TimedOut
)

type Child struct {
	executablePath string
	arguments      []string
}

func New(executablePath string, arguments []string) *Child {
	return &Child{executablePath: executablePath, arguments: arguments}
}

func (c *Child) RenderCommandLine() string {
	parts := append([]string{c.executablePath}, c.arguments...)
	return strings.Join(parts, " ")
}

func (c *Child) Run(j *job.Job, desktopName string) (pid uint32, err error) {
	return 0, ErrUnsupported
}

func (c *Child) IsAlive() bool {
	return false
}

func (c *Child) Wait(timeout time.Duration) (exitCode int, ok bool) {
	return 0, false
}

func (c *Child) Terminate() (exitCode int, ok bool) {
	return 0, false
}

func (c *Child) Outputs() drain.Outputs {
	return drain.Outputs{}
}

func (c *Child) Close() {}
