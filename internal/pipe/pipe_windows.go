//go:build windows

// Package pipe creates the anonymous, overlapped-I/O pipe pairs used to
// capture a sandboxed child's stdout/stderr: a non-inheritable async read
// end kept by the parent, and an inheritable write end handed to the child.
package pipe

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sys/windows"

	"github.com/nehonix-labs/oven/internal/winhandle"
)

// Pipe is either fully valid or fully invalid: New never returns a
// half-open pair.
type Pipe struct {
	Read       *winhandle.Handle
	Write      *winhandle.Handle
	Overlapped windows.Overlapped

	// transferred is set once ownership of Read has moved to a drainer, so
	// Close can skip the "closing a valid pipe" diagnostic that would
	// otherwise fire on every normal run (see spec open question on the
	// pipe destructor warning).
	transferred bool
}

// New creates a uniquely-named local pipe pair. The name is randomized
// (via a UUID, replacing the C++ original's shuffled-digit scheme) so
// concurrently-created pipes never collide.
func New() (*Pipe, error) {
	name := fmt.Sprintf(`\\.\pipe\oven-%s`, uuid.NewString())
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("pipe: encode name: %w", err)
	}

	readHandle, err := windows.CreateNamedPipe(
		namePtr,
		windows.PIPE_ACCESS_INBOUND|windows.FILE_FLAG_FIRST_PIPE_INSTANCE|windows.FILE_FLAG_OVERLAPPED,
		windows.PIPE_TYPE_BYTE|windows.PIPE_REJECT_REMOTE_CLIENTS,
		1,
		0, 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("pipe: create named pipe: %w", err)
	}
	p := &Pipe{Read: winhandle.Wrap(readHandle)}

	sa := &windows.SecurityAttributes{
		InheritHandle:      1,
		SecurityDescriptor: nil,
	}
	sa.Length = uint32(unsafe.Sizeof(*sa))
	writeHandle, err := windows.CreateFile(namePtr, windows.GENERIC_WRITE, 0, sa,
		windows.OPEN_EXISTING, windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		p.Read.Close()
		return nil, fmt.Errorf("pipe: open named pipe: %w", err)
	}
	p.Write = winhandle.Wrap(writeHandle)

	if err := windows.ConnectNamedPipe(p.Read.Get(), &p.Overlapped); err != nil &&
		err != windows.ERROR_PIPE_CONNECTED && err != windows.ERROR_IO_PENDING {
		p.Read.Close()
		p.Write.Close()
		return nil, fmt.Errorf("pipe: connect named pipe: %w", err)
	}

	return p, nil
}

// Valid reports whether both ends are currently owned.
func (p *Pipe) Valid() bool {
	return p != nil && p.Read.Valid() && p.Write.Valid()
}

// MarkOwnershipTransferred records that Read has been (or is about to be)
// handed to a drainer, suppressing the forgotten-ownership diagnostic in
// Close.
func (p *Pipe) MarkOwnershipTransferred() {
	p.transferred = true
}

// Close releases both ends. If the pipe is still fully valid and ownership
// was never marked as transferred, a diagnostic is logged: in every path
// this codebase exercises that combination only means a caller forgot to
// hand the read end to the drainer before dropping the pipe.
func (p *Pipe) Close() {
	if p.Valid() && !p.transferred {
		log.Printf("pipe: closing pipe that was never handed off")
	}
	p.Read.Close()
	p.Write.Close()
}
