//go:build !windows

package desktop

import "errors"

// ErrUnsupported is returned by every operation on non-Windows platforms.
var ErrUnsupported = errors.New("desktop: desktop objects are only supported on windows")

type Desktop struct{}

func New(name string, heapSize uint32) (*Desktop, error) {
	return nil, ErrUnsupported
}

func OpenInteractive() (*Desktop, error) {
	return nil, ErrUnsupported
}

func (d *Desktop) Valid() bool {
	return false
}

func (d *Desktop) Name() (string, error) {
	return "", ErrUnsupported
}

func HeapSize() (uint32, error) {
	return 0, ErrUnsupported
}

func (d *Desktop) SetForCurrentThread() error {
	return ErrUnsupported
}

func (d *Desktop) Close() {}

type ScopedActivation struct{}

func Activate(target *Desktop) *ScopedActivation {
	return &ScopedActivation{}
}

func (s *ScopedActivation) Success() bool {
	return false
}

func (s *ScopedActivation) Restore() {}
