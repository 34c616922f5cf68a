//go:build !windows

package iocp

import (
	"testing"
	"time"
)

func TestNewReturnsErrUnsupported(t *testing.T) {
	p, err := New()
	if p != nil {
		t.Errorf("New returned non-nil Port: %+v", p)
	}
	if err != ErrUnsupported {
		t.Errorf("New err = %v, want ErrUnsupported", err)
	}
}

func TestStubMethodsReturnErrUnsupported(t *testing.T) {
	p := &Port{}
	if err := p.Register(0, 0); err != ErrUnsupported {
		t.Errorf("Register err = %v, want ErrUnsupported", err)
	}
	if result, _, _, _, err := p.Wait(time.Millisecond); result != Failure || err != ErrUnsupported {
		t.Errorf("Wait() = (%v, err=%v), want (Failure, ErrUnsupported)", result, err)
	}
	if err := p.Stop(); err != ErrUnsupported {
		t.Errorf("Stop err = %v, want ErrUnsupported", err)
	}
	p.Close()
}
