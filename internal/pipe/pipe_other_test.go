//go:build !windows

package pipe

import "testing"

func TestNewReturnsErrUnsupported(t *testing.T) {
	p, err := New()
	if p != nil {
		t.Errorf("New returned non-nil Pipe: %+v", p)
	}
	if err != ErrUnsupported {
		t.Errorf("New err = %v, want ErrUnsupported", err)
	}
}

func TestStubMethodsAreNoOps(t *testing.T) {
	p := &Pipe{}
	if p.Valid() {
		t.Error("Valid() = true on an unsupported platform, want false")
	}
	p.MarkOwnershipTransferred()
	p.Close()
}
