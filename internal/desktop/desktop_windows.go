//go:build windows

// Package desktop manages an isolated Windows desktop object: the
// container the sandboxed child is switched onto so it cannot read or
// inject input into whatever the operator is actually looking at.
//
// golang.org/x/sys/windows does not expose the desktop-object family
// (CreateDesktopEx, SwitchDesktop, OpenInputDesktop, SetThreadDesktop,
// GetUserObjectInformation, CloseDesktop), so this package binds them
// directly off user32.dll.
package desktop

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modUser32 = windows.NewLazySystemDLL("user32.dll")

	procCreateDesktopExW         = modUser32.NewProc("CreateDesktopExW")
	procSwitchDesktop            = modUser32.NewProc("SwitchDesktop")
	procOpenInputDesktop         = modUser32.NewProc("OpenInputDesktop")
	procSetThreadDesktop         = modUser32.NewProc("SetThreadDesktop")
	procCloseDesktop             = modUser32.NewProc("CloseDesktop")
	procGetUserObjectInformation = modUser32.NewProc("GetUserObjectInformationW")
	procGetThreadDesktop         = modUser32.NewProc("GetThreadDesktop")
)

const (
	maximumAllowed = 0x02000000

	uoiName     = 2
	uoiHeapSize = 5
)

// Desktop owns exactly one HDESK at a time.
type Desktop struct {
	handle windows.Handle
}

// New creates a desktop object within the caller's current window
// station. heapSize is in kilobytes, mirroring CreateDesktopEx's dwHeapSize
// parameter.
func New(name string, heapSize uint32) (*Desktop, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("desktop: encode name: %w", err)
	}
	h, _, err := procCreateDesktopExW.Call(
		uintptr(unsafe.Pointer(namePtr)),
		0, 0, 0,
		uintptr(maximumAllowed),
		0,
		uintptr(heapSize),
		0)
	if h == 0 {
		return nil, fmt.Errorf("desktop: CreateDesktopExW: %w", err)
	}
	return &Desktop{handle: windows.Handle(h)}, nil
}

// OpenInteractive returns the desktop currently receiving user input, i.e.
// the one the operator is looking at before a sandbox run switches away
// from it.
func OpenInteractive() (*Desktop, error) {
	h, _, err := procOpenInputDesktop.Call(0, 0, uintptr(maximumAllowed))
	if h == 0 {
		return nil, fmt.Errorf("desktop: OpenInputDesktop: %w", err)
	}
	return &Desktop{handle: windows.Handle(h)}, nil
}

// Valid reports whether the wrapper currently owns a desktop handle.
func (d *Desktop) Valid() bool {
	return d != nil && d.handle != 0
}

// Name queries UOI_NAME, growing the buffer to whatever size the first
// call reports as required.
func (d *Desktop) Name() (string, error) {
	var needed uint32
	procGetUserObjectInformation.Call(uintptr(d.handle), uoiName, 0, 0, uintptr(unsafe.Pointer(&needed)))
	if needed == 0 {
		return "", fmt.Errorf("desktop: GetUserObjectInformationW: size probe failed")
	}
	buf := make([]uint16, needed/2+1)
	ok, _, err := procGetUserObjectInformation.Call(
		uintptr(d.handle), uoiName,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)*2),
		uintptr(unsafe.Pointer(&needed)))
	if ok == 0 {
		return "", fmt.Errorf("desktop: GetUserObjectInformationW: %w", err)
	}
	return windows.UTF16ToString(buf), nil
}

// HeapSize reports the heap size, in kilobytes, of the desktop currently
// assigned to the calling thread.
func HeapSize() (uint32, error) {
	threadDesktop, _, _ := procGetThreadDesktop.Call(uintptr(windows.GetCurrentThreadId()))
	var heapSize, needed uint32
	ok, _, err := procGetUserObjectInformation.Call(
		threadDesktop, uoiHeapSize,
		uintptr(unsafe.Pointer(&heapSize)), unsafe.Sizeof(heapSize),
		uintptr(unsafe.Pointer(&needed)))
	if ok == 0 {
		return 0, fmt.Errorf("desktop: GetUserObjectInformationW(heap size): %w", err)
	}
	return heapSize, nil
}

// SetForCurrentThread assigns d as the calling thread's desktop; every
// subsequent CreateProcess on this thread that does not pass its own
// desktop name inherits this one.
func (d *Desktop) SetForCurrentThread() error {
	ok, _, err := procSetThreadDesktop.Call(uintptr(d.handle))
	if ok == 0 {
		return fmt.Errorf("desktop: SetThreadDesktop: %w", err)
	}
	return nil
}

func (d *Desktop) activate() error {
	ok, _, err := procSwitchDesktop.Call(uintptr(d.handle))
	if ok == 0 {
		return fmt.Errorf("desktop: SwitchDesktop: %w", err)
	}
	return nil
}

// Close releases the desktop handle.
func (d *Desktop) Close() {
	if !d.Valid() {
		return
	}
	procCloseDesktop.Call(uintptr(d.handle))
	d.handle = 0
}

// ScopedActivation switches the interactive session onto a new desktop for
// the lifetime of a sandboxed run and restores the previously-active
// desktop when released, mirroring the original RAII guard.
type ScopedActivation struct {
	previous *Desktop
	ok       bool
}

// Activate captures whatever desktop is currently interactive, then
// switches onto target. Success reports whether both steps worked.
func Activate(target *Desktop) *ScopedActivation {
	previous, err := OpenInteractive()
	ok := err == nil
	if ok {
		ok = target.activate() == nil
	}
	return &ScopedActivation{previous: previous, ok: ok}
}

// Success reports whether the activation fully completed.
func (s *ScopedActivation) Success() bool {
	return s.ok
}

// Restore switches back to the desktop that was interactive before
// Activate was called.
func (s *ScopedActivation) Restore() {
	if s.previous == nil {
		return
	}
	defer s.previous.Close()
	s.previous.activate()
}
