//go:build windows

package drain

import (
	"log"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/nehonix-labs/oven/internal/iocp"
	"github.com/nehonix-labs/oven/internal/pipe"
)

const readChunkSize = 4096

// stream is one pipe's read context: its own fixed buffer plus the
// accumulating output and whether it has reached EOF or a read error.
type stream struct {
	pipe   *pipe.Pipe
	buffer [readChunkSize]byte
	output []byte
	closed bool
}

func streamKey(s *stream) uintptr {
	return uintptr(unsafe.Pointer(s))
}

// Drainer runs the drain loop in a background goroutine and exposes its
// result as a one-shot future: exactly one producer, any number of
// consumers calling Retrieve.
type Drainer struct {
	done   chan struct{}
	result Outputs
}

// Start takes ownership of both pipes' read ends and begins draining them.
// Callers must not touch stdout or stderr again after calling Start.
func Start(stdout, stderr *pipe.Pipe) *Drainer {
	stdout.MarkOwnershipTransferred()
	stderr.MarkOwnershipTransferred()

	d := &Drainer{done: make(chan struct{})}
	go func() {
		d.result = drainBoth(stdout, stderr)
		close(d.done)
	}()
	return d
}

// Retrieve blocks until the drain completes. Safe to call more than once;
// later calls return the same result immediately.
func (d *Drainer) Retrieve() Outputs {
	<-d.done
	return d.result
}

func drainBoth(stdoutPipe, stderrPipe *pipe.Pipe) Outputs {
	// The parent's copy of the write end must close before draining starts:
	// otherwise it keeps the pipe open even after the child exits and every
	// read blocks forever instead of seeing EOF.
	stdoutPipe.Write.Close()
	stderrPipe.Write.Close()

	out := &stream{pipe: stdoutPipe}
	errs := &stream{pipe: stderrPipe}
	defer out.pipe.Read.Close()
	defer errs.pipe.Read.Close()

	port, err := iocp.New()
	if err != nil {
		log.Printf("drain: create completion port: %v", err)
		return Outputs{}
	}
	defer port.Close()

	streams := map[uintptr]*stream{
		streamKey(out):  out,
		streamKey(errs): errs,
	}

	if err := port.Register(out.pipe.Read.Get(), streamKey(out)); err != nil {
		log.Printf("drain: register stdout pipe: %v", err)
		return Outputs{}
	}
	if err := port.Register(errs.pipe.Read.Get(), streamKey(errs)); err != nil {
		log.Printf("drain: register stderr pipe: %v", err)
		return Outputs{}
	}

	if !issueRead(out) {
		out.closed = true
	}
	if !issueRead(errs) {
		errs.closed = true
	}

	for !(out.closed && errs.closed) {
		result, key, _, bytes, err := port.Wait(time.Duration(-1))
		if result != iocp.Success {
			// A broken pipe is the normal end-of-stream signal, not a failure.
			if err != nil && err != windows.ERROR_BROKEN_PIPE {
				log.Printf("drain: wait for pipe completion: %v", err)
			}
			break
		}
		s := streams[key]
		if s == nil {
			continue
		}
		if bytes == 0 {
			s.closed = true
			continue
		}
		s.output = append(s.output, s.buffer[:bytes]...)
		if !issueRead(s) {
			s.closed = true
		}
	}

	return Outputs{Stdout: out.output, Stderr: errs.output}
}

// issueRead starts (or restarts) an overlapped read on s. It returns false
// when the pipe has reached EOF or failed outright; a read failure here is
// the expected end-of-stream signal, not a drainer error.
func issueRead(s *stream) bool {
	var done uint32
	err := windows.ReadFile(s.pipe.Read.Get(), s.buffer[:], &done, &s.pipe.Overlapped)
	if err != nil && err != windows.ERROR_IO_PENDING {
		return false
	}
	return true
}
