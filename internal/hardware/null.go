package hardware

// Null is the no-hardware backend. Reads and writes report
// ErrUnsupported so the resolver falls back to the store; input
// watching accepts registrations and never delivers an event.
type Null struct {
	events chan Event
}

// NewNull creates a null driver.
func NewNull() *Null {
	return &Null{events: make(chan Event)}
}

// ClaimOutput accepts any line so startup proceeds without hardware.
func (n *Null) ClaimOutput(int) error { return nil }

// WriteLine reports ErrUnsupported.
func (n *Null) WriteLine(int, bool) error { return ErrUnsupported }

// ReadLine reports ErrUnsupported.
func (n *Null) ReadLine(int) (bool, error) { return false, ErrUnsupported }

// WatchInput accepts the registration and does nothing.
func (n *Null) WatchInput(string, int, bool) error { return nil }

// Events returns a channel that never delivers.
func (n *Null) Events() <-chan Event { return n.events }

// Close releases nothing.
func (n *Null) Close() error {
	close(n.events)
	return nil
}
