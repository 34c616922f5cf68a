//go:build !windows

package drain

import "errors"

// ErrUnsupported is returned by every operation on non-Windows platforms.
var ErrUnsupported = errors.New("drain: overlapped pipe draining is only supported on windows")

// Drainer is an empty placeholder on non-Windows platforms.
type Drainer struct{}

// Start always returns a Drainer whose Retrieve resolves to empty Outputs,
// since there is no pipe type to drain off Windows.
func Start(stdout, stderr any) *Drainer {
	d := &Drainer{}
	return d
}

func (d *Drainer) Retrieve() Outputs {
	return Outputs{}
}
