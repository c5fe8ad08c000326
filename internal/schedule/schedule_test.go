package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/outpost/internal/control"
)

// memoryRepo is an in-memory control.Repository for loop tests.
type memoryRepo struct {
	mu     sync.Mutex
	values map[string]control.Value
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{values: make(map[string]control.Value)}
}

func (r *memoryRepo) Seed(_ context.Context, defs []control.Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, def := range defs {
		if _, ok := r.values[def.Name]; !ok {
			r.values[def.Name] = def.Default
		}
	}
	return nil
}

func (r *memoryRepo) Read(_ context.Context, name string, _ control.Kind) (control.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.values[name]
	if !ok {
		return control.Value{}, control.ErrUnknownOutput
	}
	return value, nil
}

func (r *memoryRepo) Write(_ context.Context, name string, value control.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name] = value
	return nil
}

func (r *memoryRepo) PowerUp(_ context.Context, name string, _ control.Kind) (control.PowerUpRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return control.PowerUpRow{Name: name, Current: r.values[name]}, nil
}

func (r *memoryRepo) SetPowerUp(context.Context, string, control.Value, bool) error {
	return nil
}

// recordingNotifier counts OutputChanged calls per output.
type recordingNotifier struct {
	mu    sync.Mutex
	seen  map[string]int
	total int
}

func (n *recordingNotifier) OutputChanged(name string, _ control.Value) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seen == nil {
		n.seen = make(map[string]int)
	}
	n.seen[name]++
	n.total++
}

// memoryLog collects appended messages.
type memoryLog struct {
	mu    sync.Mutex
	texts []string
}

func (l *memoryLog) Append(_ context.Context, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.texts = append(l.texts, text)
	return nil
}

func (l *memoryLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.texts)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

func testResolver(t *testing.T) *control.Resolver {
	t.Helper()

	defs := []control.Definition{
		{Name: "output01", Kind: control.KindBoolean, Default: control.BoolValue(true)},
		{Name: "brightness", Kind: control.KindInteger, Default: control.IntValue(25)},
	}
	registry, err := control.NewRegistry(defs, nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	repo := newMemoryRepo()
	if err := repo.Seed(context.Background(), defs); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	return control.NewResolver(registry, repo, nil)
}

func TestLoopRepublishesAndHeartbeats(t *testing.T) {
	resolver := testResolver(t)
	notifier := &recordingNotifier{}
	log := &memoryLog{}

	loop := New(resolver, notifier, log, 10*time.Millisecond, noopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	// Wait for at least one full tick.
	deadline := time.After(2 * time.Second)
	for log.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no heartbeat recorded within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if notifier.seen["output01"] == 0 || notifier.seen["brightness"] == 0 {
		t.Errorf("republish counts = %v, want every output at least once", notifier.seen)
	}

	if log.texts[0] != "hourly scheduled events completed" {
		t.Errorf("heartbeat text = %q", log.texts[0])
	}
}

func TestLoopStopsOnCancel(t *testing.T) {
	resolver := testResolver(t)
	log := &memoryLog{}

	loop := New(resolver, nil, log, time.Hour, noopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if log.count() != 0 {
		t.Errorf("messages appended = %d, want 0 before first interval", log.count())
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	loop := New(testResolver(t), nil, &memoryLog{}, 0, noopLogger{})
	if loop.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", loop.interval, DefaultInterval)
	}
}
