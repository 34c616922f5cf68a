//go:build windows

// Package iocp wraps a Windows I/O completion port: a readiness queue that
// lets one goroutine multiplex waits over many async sources (pipes, job
// object notifications) instead of spinning up a goroutine per source.
package iocp

import (
	"syscall"
	"time"

	"golang.org/x/sys/windows"

	"github.com/nehonix-labs/oven/internal/winhandle"
)

// WaitResult classifies the outcome of a single Wait call.
type WaitResult int

const (
	Timeout WaitResult = iota
	Stopped
	Failure
	Success
)

// stopKey is a reserved completion key distinct from any real registration
// key a caller might pass to Register. A Wait that observes this key never
// surfaces it to the caller as Success; it is translated to Stopped.
const stopKey uintptr = 0xdeadbeef

// Port is a single I/O completion port shared by any number of registered
// sources.
type Port struct {
	handle *winhandle.Handle
}

// New creates an unassociated completion port.
func New() (*Port, error) {
	h, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	return &Port{handle: winhandle.Wrap(h)}, nil
}

// Handle exposes the raw port handle, needed to associate a job object via
// SetInformationJobObject(JobObjectAssociateCompletionPortInformation, ...).
func (p *Port) Handle() windows.Handle {
	return p.handle.Get()
}

// Register associates source with this port; subsequent overlapped
// operations on source post completions tagged with key.
func (p *Port) Register(source windows.Handle, key uintptr) error {
	_, err := windows.CreateIoCompletionPort(source, p.handle.Get(), key, 0)
	return err
}

// Wait blocks up to timeout (zero or negative means wait indefinitely) for a
// completion. The returned key is only meaningful when result == Success.
func (p *Port) Wait(timeout time.Duration) (result WaitResult, key uintptr, overlapped *windows.Overlapped, bytes uint32, err error) {
	ms := uint32(windows.INFINITE)
	if timeout > 0 {
		ms = uint32(timeout.Milliseconds())
	}

	var bytesTransferred uint32
	var completionKey uintptr
	var ov *windows.Overlapped
	waitErr := windows.GetQueuedCompletionStatus(p.handle.Get(), &bytesTransferred, &completionKey, &ov, ms)
	if waitErr != nil {
		if errno, ok := waitErr.(syscall.Errno); ok && errno == windows.WAIT_TIMEOUT {
			return Timeout, 0, nil, 0, nil
		}
		return Failure, 0, nil, 0, waitErr
	}

	if completionKey == stopKey {
		return Stopped, 0, nil, 0, nil
	}

	return Success, completionKey, ov, bytesTransferred, nil
}

// Stop posts a synthetic completion bearing the reserved stop key. Each call
// wakes exactly one pending or future Wait.
func (p *Port) Stop() error {
	return windows.PostQueuedCompletionStatus(p.handle.Get(), 0, stopKey, nil)
}

// Close releases the port handle. Safe to call once all listeners have
// observed Stopped.
func (p *Port) Close() {
	p.handle.Close()
}
