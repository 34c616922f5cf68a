//go:build windows

// Package process drives a single sandboxed child: spawning it attached to
// a resource container and (optionally) a desktop, waiting for it with a
// timeout, and forcing termination when the timeout expires.
package process

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/nehonix-labs/oven/internal/drain"
	"github.com/nehonix-labs/oven/internal/job"
	"github.com/nehonix-labs/oven/internal/pipe"
	"github.com/nehonix-labs/oven/internal/winhandle"
)

// killExitCode is reported as the child's exit code when Terminate forces
// it to stop.
const killExitCode = 1

// State is the Child's lifecycle: Unstarted until Run succeeds,
// Running while alive, Exited once the real exit code has been collected,
// TimedOut once Terminate has fired because a deadline passed.
type State int

const (
	Unstarted State = iota
	Running
	Exited
	TimedOut
)

// Child is a record of one sandboxed run: the executable, its rendered
// argument list, the kernel process handle once started, and the output
// drainer spawned alongside it.
type Child struct {
	executablePath string
	arguments      []string

	handle  *winhandle.Handle
	state   State
	drainer *drain.Drainer
}

// New prepares a Child for executablePath. arguments are rendered after
// the executable path itself, unquoted and space-joined, matching a plain
// Win32 command line.
func New(executablePath string, arguments []string) *Child {
	return &Child{executablePath: executablePath, arguments: arguments}
}

// RenderCommandLine builds the Win32 command line: executable path
// followed by each argument, space-separated. Arguments are not quoted or
// escaped; callers that need literal spaces in an argument must quote it
// themselves.
func (c *Child) RenderCommandLine() string {
	parts := make([]string, 0, len(c.arguments)+1)
	parts = append(parts, c.executablePath)
	parts = append(parts, c.arguments...)
	return strings.Join(parts, " ")
}

// Run starts the child attached to j, inheriting the given desktop (empty
// means the caller's current desktop). On success the child is assigned
// to j and its output drainer is already running.
func (c *Child) Run(j *job.Job, desktopName string) (pid uint32, err error) {
	stdoutPipe, err := pipe.New()
	if err != nil {
		return 0, fmt.Errorf("process: create stdout pipe: %w", err)
	}
	stderrPipe, err := pipe.New()
	if err != nil {
		stdoutPipe.Close()
		return 0, fmt.Errorf("process: create stderr pipe: %w", err)
	}

	var startupInfo windows.StartupInfo
	startupInfo.Cb = uint32(unsafe.Sizeof(startupInfo))
	startupInfo.Flags = windows.STARTF_USESTDHANDLES
	startupInfo.StdOutput = stdoutPipe.Write.Get()
	startupInfo.StdErr = stderrPipe.Write.Get()
	if desktopName != "" {
		desktopPtr, encErr := windows.UTF16PtrFromString(desktopName)
		if encErr != nil {
			stdoutPipe.Close()
			stderrPipe.Close()
			return 0, fmt.Errorf("process: encode desktop name: %w", encErr)
		}
		startupInfo.Desktop = desktopPtr
	}

	appNamePtr, err := windows.UTF16PtrFromString(c.executablePath)
	if err != nil {
		stdoutPipe.Close()
		stderrPipe.Close()
		return 0, fmt.Errorf("process: encode executable path: %w", err)
	}
	commandLinePtr, err := windows.UTF16PtrFromString(c.RenderCommandLine())
	if err != nil {
		stdoutPipe.Close()
		stderrPipe.Close()
		return 0, fmt.Errorf("process: encode command line: %w", err)
	}

	var processInfo windows.ProcessInformation
	createErr := windows.CreateProcess(appNamePtr, commandLinePtr, nil, nil, true, 0, nil, nil, &startupInfo, &processInfo)
	if createErr != nil {
		stdoutPipe.Close()
		stderrPipe.Close()
		return 0, fmt.Errorf("process: CreateProcess: %w", createErr)
	}
	windows.CloseHandle(processInfo.Thread)

	c.handle = winhandle.Wrap(processInfo.Process)
	c.state = Running

	if err := j.AssignProcess(c.handle.Get()); err != nil {
		// The child is already running; log the failure but keep going,
		// matching a best-effort container attach rather than killing a
		// child that has already started.
		log.Printf("process: %v", err)
	}

	c.drainer = drain.Start(stdoutPipe, stderrPipe)

	return processInfo.ProcessId, nil
}

// IsAlive reports whether the child has started and its exit code has not
// yet been collected via Wait.
func (c *Child) IsAlive() bool {
	return c.handle.Valid()
}

// Wait blocks up to timeout (<=0 means forever) for the child to exit,
// returning its exit code on success. ok is false on timeout or on
// failure to query the exit code.
func (c *Child) Wait(timeout time.Duration) (exitCode int, ok bool) {
	ms := uint32(windows.INFINITE)
	if timeout > 0 {
		ms = uint32(timeout.Milliseconds())
	}
	waitResult, err := windows.WaitForSingleObject(c.handle.Get(), ms)
	if err != nil || waitResult != windows.WAIT_OBJECT_0 {
		return 0, false
	}

	var code uint32
	if err := windows.GetExitCodeProcess(c.handle.Get(), &code); err != nil {
		return 0, false
	}
	c.handle.Close()
	c.state = Exited
	return int(code), true
}

// Terminate forces the child to stop and waits for it to actually exit,
// reporting the exit code observed (normally killExitCode).
func (c *Child) Terminate() (exitCode int, ok bool) {
	if err := windows.TerminateProcess(c.handle.Get(), killExitCode); err != nil {
		return 0, false
	}
	c.state = TimedOut
	code, waited := c.Wait(0)
	if !waited {
		return 0, false
	}
	return code, true
}

// Outputs blocks until the output drainer has finished and returns what it
// captured. Safe to call more than once.
func (c *Child) Outputs() drain.Outputs {
	if c.drainer == nil {
		return drain.Outputs{}
	}
	return c.drainer.Retrieve()
}

// Close performs the best-effort cleanup a destructor would: if the child
// is still alive it is waited on (never terminated — that is a distinct,
// deliberate decision made by the orchestrator), and the output drainer is
// always joined so no goroutine outlives the run.
func (c *Child) Close() {
	if c.IsAlive() {
		c.Wait(0)
	}
	c.Outputs()
}
