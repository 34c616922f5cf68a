//go:build windows

// Package winhandle provides a move-only style wrapper around a single
// Windows kernel handle, so that every resource in the sandbox pipeline
// passes through one place that is responsible for closing it.
package winhandle

import (
	"log"

	"golang.org/x/sys/windows"
)

// Handle owns exactly one windows.Handle at a time. The zero value is not
// valid; use Wrap.
type Handle struct {
	h windows.Handle
}

// Invalid mirrors the distinguished "invalid" sentinel from the Win32 API:
// a null handle and INVALID_HANDLE_VALUE are both treated as not-owning.
func Invalid() *Handle {
	return &Handle{h: 0}
}

// Wrap takes ownership of an already-open handle.
func Wrap(h windows.Handle) *Handle {
	return &Handle{h: h}
}

// Valid reports whether the wrapper currently owns a closable handle.
func (w *Handle) Valid() bool {
	return w != nil && w.h != 0 && w.h != windows.InvalidHandle
}

// Get returns the raw handle without transferring ownership.
func (w *Handle) Get() windows.Handle {
	if w == nil {
		return 0
	}
	return w.h
}

// Release transfers ownership to the caller: the wrapper forgets the handle
// without closing it, the Go equivalent of a C++ move-from.
func (w *Handle) Release() windows.Handle {
	if w == nil {
		return 0
	}
	h := w.h
	w.h = 0
	return h
}

// Reset closes the current handle (if any) and adopts newHandle. Closing the
// prior handle before adopting the new one matches the ScopedHandle::reset
// contract this type is modeled on.
func (w *Handle) Reset(newHandle windows.Handle) {
	w.Close()
	w.h = newHandle
}

// Close releases the underlying handle. Close errors are logged, not
// returned: every caller in this codebase treats handle release as a
// best-effort cleanup step, never a reason to fail an otherwise-successful
// operation.
func (w *Handle) Close() {
	if !w.Valid() {
		return
	}
	if err := windows.CloseHandle(w.h); err != nil {
		log.Printf("winhandle: unable to close handle: %v", err)
	}
	w.h = 0
}
