package publish

import (
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/outpost/internal/control"
	"github.com/nerrad567/outpost/internal/hardware"
)

// recordingLogger captures debug lines so tests can assert the
// publisher saw an event even with no backends attached.
type recordingLogger struct {
	mu     sync.Mutex
	debugs []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, msg)
}

func (l *recordingLogger) Warn(string, ...any) {}

func TestOutputChangedWithoutBackends(t *testing.T) {
	p := New(nil, nil, &recordingLogger{})

	// Both integrations disabled: the notification is a no-op, not a panic.
	p.OutputChanged("output01", control.BoolValue(true))
	p.OutputChanged("brightness", control.IntValue(80))
	p.OutputChanged("banner", control.TextValue("closed"))
}

func TestHandleInputWithoutBackends(t *testing.T) {
	log := &recordingLogger{}
	p := New(nil, nil, log)

	p.HandleInput(hardware.Event{
		Name:  "input01",
		Line:  23,
		Value: true,
		Time:  time.Now().UTC(),
	})

	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.debugs) != 1 {
		t.Fatalf("debug lines = %d, want 1", len(log.debugs))
	}
}
