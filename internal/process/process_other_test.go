//go:build !windows

package process

import (
	"testing"
	"time"
)

func TestRenderCommandLineJoinsUnquoted(t *testing.T) {
	c := New("child.exe", []string{"--flag", "value with spaces"})
	want := "child.exe --flag value with spaces"
	if got := c.RenderCommandLine(); got != want {
		t.Errorf("RenderCommandLine() = %q, want %q", got, want)
	}
}

func TestRenderCommandLineNoArguments(t *testing.T) {
	c := New("child.exe", nil)
	if got := c.RenderCommandLine(); got != "child.exe" {
		t.Errorf("RenderCommandLine() = %q, want %q", got, "child.exe")
	}
}

func TestRunReturnsErrUnsupported(t *testing.T) {
	c := New("child.exe", nil)
	if _, err := c.Run(nil, "OvenDesktop"); err != ErrUnsupported {
		t.Errorf("Run err = %v, want ErrUnsupported", err)
	}
}

func TestStubLifecycleMethods(t *testing.T) {
	c := New("child.exe", nil)
	if c.IsAlive() {
		t.Error("IsAlive() = true on an unsupported platform, want false")
	}
	if _, ok := c.Wait(time.Second); ok {
		t.Error("Wait() ok = true on an unsupported platform, want false")
	}
	if _, ok := c.Terminate(); ok {
		t.Error("Terminate() ok = true on an unsupported platform, want false")
	}
	if outputs := c.Outputs(); outputs.Stdout != nil || outputs.Stderr != nil {
		t.Errorf("Outputs() = %+v, want zero value", outputs)
	}
	c.Close()
}
