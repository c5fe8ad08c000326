package hardware

import (
	"errors"
	"testing"
)

// TestNullDriver verifies the no-hardware backend degrades cleanly.
func TestNullDriver(t *testing.T) {
	n := NewNull()

	if err := n.ClaimOutput(24); err != nil {
		t.Errorf("ClaimOutput() error = %v, want nil", err)
	}
	if err := n.WriteLine(24, true); !errors.Is(err, ErrUnsupported) {
		t.Errorf("WriteLine() error = %v, want ErrUnsupported", err)
	}
	if _, err := n.ReadLine(24); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ReadLine() error = %v, want ErrUnsupported", err)
	}
	if err := n.WatchInput("input01", 23, true); err != nil {
		t.Errorf("WatchInput() error = %v, want nil", err)
	}

	if err := n.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// The event channel is closed after Close and never delivered.
	if _, ok := <-n.Events(); ok {
		t.Error("Events() delivered a value, want closed empty channel")
	}
}
