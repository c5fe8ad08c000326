package hardware

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// eventBuffer bounds the input event queue. Transitions beyond it are
// dropped rather than blocking the kernel event handler.
const eventBuffer = 64

// gpioLine is the claimed-line surface the driver drives. It matches
// *gpiocdev.Line; tests substitute fakes.
type gpioLine interface {
	SetValue(value int) error
	Value() (int, error)
	Close() error
}

// GPIO drives lines through the Linux GPIO character device.
type GPIO struct {
	chip string

	mu     sync.Mutex
	lines  map[int]gpioLine
	events chan Event
	closed bool
}

// NewGPIO creates a driver for the named chip, e.g. "gpiochip0".
func NewGPIO(chip string) *GPIO {
	return &GPIO{
		chip:   chip,
		lines:  make(map[int]gpioLine),
		events: make(chan Event, eventBuffer),
	}
}

// ClaimOutput requests a line for output, initially low.
func (g *GPIO) ClaimOutput(line int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.lines[line]; ok {
		return nil
	}

	l, err := gpiocdev.RequestLine(g.chip, line, gpiocdev.AsOutput(0))
	if err != nil {
		return fmt.Errorf("claiming output line %d on %s: %w", line, g.chip, err)
	}
	g.lines[line] = l
	return nil
}

// WriteLine drives a claimed output line.
func (g *GPIO) WriteLine(line int, value bool) error {
	g.mu.Lock()
	l, ok := g.lines[line]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrLineNotClaimed, line)
	}

	v := 0
	if value {
		v = 1
	}
	if err := l.SetValue(v); err != nil {
		return fmt.Errorf("writing line %d: %w", line, err)
	}
	return nil
}

// ReadLine reads the current state of a claimed line.
func (g *GPIO) ReadLine(line int) (bool, error) {
	g.mu.Lock()
	l, ok := g.lines[line]
	g.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrLineNotClaimed, line)
	}

	v, err := l.Value()
	if err != nil {
		return false, fmt.Errorf("reading line %d: %w", line, err)
	}
	return v != 0, nil
}

// WatchInput requests a line for input with edge detection. Each edge
// becomes an Event; events are dropped if the buffer is full.
func (g *GPIO) WatchInput(name string, line int, pullUp bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.lines[line]; ok {
		return fmt.Errorf("line %d already claimed", line)
	}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			g.deliver(Event{
				Name:  name,
				Line:  line,
				Value: evt.Type == gpiocdev.LineEventRisingEdge,
				Time:  time.Now().UTC(),
			})
		}),
	}
	if pullUp {
		opts = append(opts, gpiocdev.WithPullUp)
	}

	l, err := gpiocdev.RequestLine(g.chip, line, opts...)
	if err != nil {
		return fmt.Errorf("claiming input line %d on %s: %w", line, g.chip, err)
	}
	g.lines[line] = l
	return nil
}

// deliver pushes an event without blocking the kernel handler.
func (g *GPIO) deliver(evt Event) {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		return
	}

	select {
	case g.events <- evt:
	default:
		// Buffer full: drop. Input watching is informational.
	}
}

// Events returns the input transition stream.
func (g *GPIO) Events() <-chan Event {
	return g.events
}

// Close releases every claimed line.
//
// Closing a watched line joins its in-flight event handler, and that
// handler may be blocked in deliver waiting for the driver mutex. The
// mutex is therefore released before any line is closed; the events
// channel is closed only after every handler has returned.
func (g *GPIO) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	lines := g.lines
	g.lines = make(map[int]gpioLine)
	g.mu.Unlock()

	var firstErr error
	for line, l := range lines {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing line %d: %w", line, err)
		}
	}

	close(g.events)
	return firstErr
}
