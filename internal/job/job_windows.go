//go:build windows

// Package job manages an unnamed Windows job object: the kernel container
// that enforces CPU-time and memory limits on a sandboxed child and
// publishes its lifecycle as asynchronous notifications over a completion
// port.
//
// The job-object notification surface (JOB_OBJECT_MSG_*,
// JOBOBJECT_ASSOCIATE_COMPLETION_PORT) isn't part of
// golang.org/x/sys/windows, so this package binds kernel32.dll directly,
// the same approach hcsshim and go-winjob take for the same gap.
package job

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/nehonix-labs/oven/internal/iocp"
	"github.com/nehonix-labs/oven/internal/winhandle"
)

var (
	modKernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procCreateJobObjectW          = modKernel32.NewProc("CreateJobObjectW")
	procAssignProcessToJobObject  = modKernel32.NewProc("AssignProcessToJobObject")
	procSetInformationJobObject   = modKernel32.NewProc("SetInformationJobObject")
	procQueryInformationJobObject = modKernel32.NewProc("QueryInformationJobObject")
)

// notificationKey is the completion key reserved for job object
// notifications, distinct from any key a pipe drainer registers on the
// same port.
const notificationKey uintptr = 0xbad

// Job object notification messages, delivered via the completion port
// associated through JobObjectAssociateCompletionPortInformation.
const (
	msgEndOfJobTime          = 1
	msgEndOfProcessTime      = 2
	msgActiveProcessLimit    = 3
	msgActiveProcessZero     = 4
	msgNewProcess            = 6
	msgExitProcess           = 7
	msgAbnormalExitProcess   = 8
	msgProcessMemoryLimit    = 9
	msgJobMemoryLimit        = 10
	msgNotificationLimit     = 11
)

// Job object information classes used with SetInformationJobObject.
const (
	classExtendedLimitInformation      = 9
	classAssociateCompletionPort       = 7
	classLimitViolationInformation     = 13
)

// Limit flags for JOBOBJECT_BASIC_LIMIT_INFORMATION.LimitFlags.
const (
	limitJobTime       uint32 = 0x00000004
	limitProcessMemory uint32 = 0x00000100
	limitJobMemory     uint32 = 0x00000200
)

// Job owns an unnamed job object handle plus the completion port its
// notifications are delivered through.
type Job struct {
	handle *winhandle.Handle
	port   *iocp.Port

	observersGuard sync.Mutex
	observers      []Observer

	stop        chan struct{}
	listenerWG  sync.WaitGroup
	listenerSet bool
	listenerMu  sync.Mutex
}

// New creates an unnamed job object.
func New() (*Job, error) {
	h, _, err := procCreateJobObjectW.Call(0, 0)
	if h == 0 {
		return nil, fmt.Errorf("job: CreateJobObjectW: %w", err)
	}
	port, err := iocp.New()
	if err != nil {
		windows.CloseHandle(windows.Handle(h))
		return nil, fmt.Errorf("job: create notification port: %w", err)
	}
	return &Job{
		handle: winhandle.Wrap(windows.Handle(h)),
		port:   port,
		stop:   make(chan struct{}),
	}, nil
}

// AddObserver registers observer if it is not already present. The job
// does not own observers; callers must keep them alive for as long as the
// job might deliver events.
func (j *Job) AddObserver(observer Observer) {
	j.observersGuard.Lock()
	defer j.observersGuard.Unlock()
	for _, existing := range j.observers {
		if existing == observer {
			return
		}
	}
	j.observers = append(j.observers, observer)
}

type jobObjectBasicLimitInformation struct {
	PerProcessUserTimeLimit int64
	PerJobUserTimeLimit     int64
	LimitFlags              uint32
	MinimumWorkingSetSize   uintptr
	MaximumWorkingSetSize   uintptr
	ActiveProcessLimit      uint32
	Affinity                uintptr
	PriorityClass           uint32
	SchedulingClass         uint32
}

type ioCounters struct {
	ReadOperationCount  uint64
	WriteOperationCount uint64
	OtherOperationCount uint64
	ReadTransferCount   uint64
	WriteTransferCount  uint64
	OtherTransferCount  uint64
}

type jobObjectExtendedLimitInformation struct {
	BasicLimitInformation jobObjectBasicLimitInformation
	IoInfo                ioCounters
	ProcessMemoryLimit    uintptr
	JobMemoryLimit        uintptr
	PeakProcessMemoryUsed uintptr
	PeakJobMemoryUsed     uintptr
}

type jobObjectAssociateCompletionPort struct {
	CompletionKey  uintptr
	CompletionPort windows.Handle
}

// cpuTicksPerMillisecond converts a millisecond duration to the
// 100-nanosecond units PerJobUserTimeLimit expects.
const cpuTicksPerMillisecond = 10000

// SetBasicLimits applies CPU user-time and memory caps to the job. On
// failure the job is left usable but with no enforced limits.
func (j *Job) SetBasicLimits(limits BasicLimits) error {
	var info jobObjectExtendedLimitInformation
	var flags uint32

	if limits.HasOverallMemoryLimit {
		info.JobMemoryLimit = uintptr(limits.OverallMemoryLimit)
		flags |= limitJobMemory
	}
	if limits.HasPerProcessMemoryLimit {
		info.ProcessMemoryLimit = uintptr(limits.PerProcessMemoryLimit)
		flags |= limitProcessMemory
	}
	if limits.HasCPUTimeLimit {
		info.BasicLimitInformation.PerJobUserTimeLimit = limits.CPUTimeLimit.Milliseconds() * cpuTicksPerMillisecond
		flags |= limitJobTime
	}
	info.BasicLimitInformation.LimitFlags = flags

	if flags == 0 {
		return nil
	}
	if err := j.setInformation(classExtendedLimitInformation, unsafe.Pointer(&info), uint32(unsafe.Sizeof(info))); err != nil {
		return fmt.Errorf("job: SetInformationJobObject(extended limits): %w", err)
	}
	return nil
}

// AssignProcess adds process to the job and, on first use, starts the
// notification listener and associates this job's completion port.
func (j *Job) AssignProcess(process windows.Handle) error {
	ok, _, err := procAssignProcessToJobObject.Call(uintptr(j.handle.Get()), uintptr(process))
	if ok == 0 {
		return fmt.Errorf("job: AssignProcessToJobObject: %w", err)
	}

	if !j.ensureListener() {
		return nil
	}

	assoc := jobObjectAssociateCompletionPort{
		CompletionKey:  notificationKey,
		CompletionPort: j.port.Handle(),
	}
	if err := j.setInformation(classAssociateCompletionPort, unsafe.Pointer(&assoc), uint32(unsafe.Sizeof(assoc))); err != nil {
		return fmt.Errorf("job: associate completion port: %w", err)
	}
	return nil
}

func (j *Job) setInformation(class uint32, info unsafe.Pointer, length uint32) error {
	ok, _, err := procSetInformationJobObject.Call(uintptr(j.handle.Get()), uintptr(class), uintptr(info), uintptr(length))
	if ok == 0 {
		return err
	}
	return nil
}

func (j *Job) ensureListener() bool {
	j.listenerMu.Lock()
	defer j.listenerMu.Unlock()
	if j.listenerSet {
		return false
	}
	j.listenerSet = true
	j.listenerWG.Add(1)
	go j.listen()
	return true
}

func (j *Job) listen() {
	defer j.listenerWG.Done()
	for {
		select {
		case <-j.stop:
			return
		default:
		}

		result, _, overlapped, bytes, _ := j.port.Wait(time.Second)
		switch result {
		case iocp.Timeout:
			continue
		case iocp.Stopped:
			return
		case iocp.Failure:
			return
		case iocp.Success:
			j.notify(overlapped, bytes)
		}
	}
}

func (j *Job) notify(overlapped *windows.Overlapped, value uint32) {
	processID := uint32(uintptr(unsafe.Pointer(overlapped)))
	var kind EventKind
	switch value {
	case msgAbnormalExitProcess:
		kind = AbnormalExitProcess
	case msgActiveProcessLimit:
		kind = ActiveProcessLimit
	case msgActiveProcessZero:
		kind = ActiveProcessZero
	case msgEndOfJobTime:
		kind = EndOfJobTime
	case msgEndOfProcessTime:
		kind = EndOfProcessTime
	case msgExitProcess:
		kind = ExitProcess
	case msgJobMemoryLimit, msgProcessMemoryLimit:
		kind = JobMemoryLimit
	case msgNewProcess:
		kind = NewProcess
	case msgNotificationLimit:
		kind = LimitNotification
	default:
		return
	}

	if kind == LimitNotification {
		j.logLimitViolation()
	}

	j.observersGuard.Lock()
	defer j.observersGuard.Unlock()
	event := Event{Kind: kind, ProcessID: processID}
	for _, observer := range j.observers {
		observer.OnJobEvent(event)
	}
}

type jobObjectLimitViolationInformation struct {
	LimitFlags                uint32
	ViolationLimitFlags       uint32
	IoReadBytes               uint64
	IoReadBytesLimit          uint64
	IoWriteBytes              uint64
	IoWriteBytesLimit         uint64
	PerJobUserTime            int64
	PerJobUserTimeLimit       int64
	JobMemory                 uint64
	JobMemoryLimit            uint64
	RateControlTolerance      uint32
	RateControlToleranceLimit uint32
}

// logLimitViolation queries which limit tripped a notification, matching
// the diagnostic the kernel container's notification handler produces for
// operators watching a run.
func (j *Job) logLimitViolation() {
	var info jobObjectLimitViolationInformation
	var returned uint32
	ok, _, _ := procQueryInformationJobObject.Call(
		uintptr(j.handle.Get()), uintptr(classLimitViolationInformation),
		uintptr(unsafe.Pointer(&info)), unsafe.Sizeof(info),
		uintptr(unsafe.Pointer(&returned)))
	if ok == 0 {
		return
	}
	if info.ViolationLimitFlags&limitJobMemory != 0 {
		fmt.Printf("job: reached memory limit with up to %d bytes consumed\n", info.JobMemory)
	}
	if info.ViolationLimitFlags&limitJobTime != 0 {
		fmt.Printf("job: reached user-mode execution time limit with up to %d * 100ns consumed\n", info.PerJobUserTime)
	}
}

// Close stops the notification listener and releases the job and port
// handles. Safe to call once, after which the Job must not be reused.
func (j *Job) Close() {
	close(j.stop)
	j.port.Stop()
	j.listenerWG.Wait()
	j.port.Close()
	j.handle.Close()
}
