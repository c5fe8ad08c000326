package hardware

import (
	"testing"
	"time"
)

// joiningLine mimics a watched line whose Close waits for its edge
// handler to return: the handler fires one last event during the join,
// exactly as gpiocdev does.
type joiningLine struct {
	g      *GPIO
	evt    Event
	joined chan struct{}
}

func (l *joiningLine) SetValue(int) error { return nil }

func (l *joiningLine) Value() (int, error) { return 0, nil }

func (l *joiningLine) Close() error {
	l.g.deliver(l.evt)
	close(l.joined)
	return nil
}

// TestCloseJoinsEventHandler verifies shutdown completes while an edge
// handler is still delivering: the driver must not hold its mutex
// across the line close that joins the handler.
func TestCloseJoinsEventHandler(t *testing.T) {
	g := NewGPIO("gpiochip0")
	joined := make(chan struct{})
	g.lines[23] = &joiningLine{
		g:      g,
		evt:    Event{Name: "input01", Line: 23, Value: true, Time: time.Now().UTC()},
		joined: joined,
	}

	finished := make(chan error, 1)
	go func() { finished <- g.Close() }()

	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close() deadlocked against an in-flight event handler")
	}
	<-joined

	// The late event was dropped and the stream is cleanly closed.
	if _, ok := <-g.Events(); ok {
		t.Error("event delivered after Close()")
	}
}

// TestCloseIdempotent verifies a second Close is a no-op.
func TestCloseIdempotent(t *testing.T) {
	g := NewGPIO("gpiochip0")
	if err := g.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

// TestLineOpsAfterClose verifies released lines reject reads and writes.
func TestLineOpsAfterClose(t *testing.T) {
	g := NewGPIO("gpiochip0")
	g.lines[24] = &joiningLine{g: g, joined: make(chan struct{})}
	if err := g.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := g.WriteLine(24, true); err == nil {
		t.Error("WriteLine() after Close() = nil, want error")
	}
	if _, err := g.ReadLine(24); err == nil {
		t.Error("ReadLine() after Close() = nil, want error")
	}
}
