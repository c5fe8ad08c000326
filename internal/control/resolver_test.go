package control

import (
	"context"
	"errors"
	"testing"
)

// fakeHardware records line writes and serves canned line reads.
type fakeHardware struct {
	lines    map[int]bool
	failAll  bool
	writes   int
	lastLine int
}

func newFakeHardware() *fakeHardware {
	return &fakeHardware{lines: make(map[int]bool)}
}

func (h *fakeHardware) ReadLine(line int) (bool, error) {
	if h.failAll {
		return false, errors.New("no backend")
	}
	return h.lines[line], nil
}

func (h *fakeHardware) WriteLine(line int, value bool) error {
	if h.failAll {
		return errors.New("no backend")
	}
	h.lines[line] = value
	h.writes++
	h.lastLine = line
	return nil
}

// newTestResolver builds a resolver over an in-memory store with one
// hardware-backed boolean, one integer and one text output.
func newTestResolver(t *testing.T, hw Hardware) (*Resolver, Repository) {
	t.Helper()

	defs := []Definition{
		{Name: "output01", Kind: KindBoolean, Default: BoolValue(false), UsePowerUp: true, Hardware: &HardwareRef{Line: 24}},
		{Name: "brightness", Kind: KindInteger, Default: IntValue(50)},
		{Name: "banner", Kind: KindText, Default: TextValue("hello")},
	}

	reg, err := NewRegistry(defs, nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	repo := NewSQLiteRepository(setupTestDB(t))
	if err := repo.Seed(context.Background(), defs); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	return NewResolver(reg, repo, hw), repo
}

// TestWriteReadRoundTrip verifies write-then-read for store-only outputs.
func TestWriteReadRoundTrip(t *testing.T) {
	resolver, _ := newTestResolver(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		raw  any
		want Value
	}{
		{"brightness", "128", IntValue(128)},
		{"banner", "back soon", TextValue("back soon")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			written, err := resolver.Write(ctx, tt.name, tt.raw)
			if err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if !written.Equal(tt.want) {
				t.Errorf("Write() = %v, want %v", written, tt.want)
			}

			got, err := resolver.Read(ctx, tt.name)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Read() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestBooleanWriteEquivalence locks in the lenient boolean contract:
// true, "true" and "True" are equivalent, and an arbitrary string is
// accepted as false rather than rejected.
func TestBooleanWriteEquivalence(t *testing.T) {
	resolver, _ := newTestResolver(t, nil)
	ctx := context.Background()

	for _, raw := range []any{true, "true", "True"} {
		if _, err := resolver.Write(ctx, "output01", raw); err != nil {
			t.Fatalf("Write(%v) error = %v", raw, err)
		}
		got, err := resolver.Read(ctx, "output01")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !got.Bool {
			t.Errorf("Read() after Write(%v) = false, want true", raw)
		}
	}

	// Surprising but contractual: an uncoercible string on a boolean
	// output is false, not an error.
	written, err := resolver.Write(ctx, "output01", "banana")
	if err != nil {
		t.Fatalf("Write(banana) error = %v, boolean writes must never reject", err)
	}
	if written.Bool {
		t.Error("Write(banana) = true, want false")
	}
}

// TestWriteInvalidValue verifies strict coercion on non-boolean kinds.
func TestWriteInvalidValue(t *testing.T) {
	resolver, repo := newTestResolver(t, nil)
	ctx := context.Background()

	if _, err := resolver.Write(ctx, "brightness", "banana"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("Write() error = %v, want ErrInvalidValue", err)
	}

	// No partial write.
	v, err := repo.Read(ctx, "brightness", KindInteger)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !v.Equal(IntValue(50)) {
		t.Errorf("stored value = %v, want untouched 50", v)
	}
}

// TestWriteUnknownOutput verifies rejection with no store mutation.
func TestWriteUnknownOutput(t *testing.T) {
	resolver, _ := newTestResolver(t, nil)

	if _, err := resolver.Write(context.Background(), "ghost", 1); !errors.Is(err, ErrUnknownOutput) {
		t.Errorf("Write() error = %v, want ErrUnknownOutput", err)
	}
	if _, err := resolver.Read(context.Background(), "ghost"); !errors.Is(err, ErrUnknownOutput) {
		t.Errorf("Read() error = %v, want ErrUnknownOutput", err)
	}
}

// TestHardwareWinsOnBooleanRead verifies that a live pin beats the store.
func TestHardwareWinsOnBooleanRead(t *testing.T) {
	hw := newFakeHardware()
	resolver, repo := newTestResolver(t, hw)
	ctx := context.Background()

	// Store says false, hardware says true: hardware wins.
	if err := repo.Write(ctx, "output01", BoolValue(false)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	hw.lines[24] = true

	got, err := resolver.Read(ctx, "output01")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !got.Bool {
		t.Error("Read() = false, want hardware value true")
	}
}

// TestHardwareFailureDegradesToStore verifies store-only degradation.
func TestHardwareFailureDegradesToStore(t *testing.T) {
	hw := newFakeHardware()
	hw.failAll = true
	resolver, repo := newTestResolver(t, hw)
	ctx := context.Background()

	if err := repo.Write(ctx, "output01", BoolValue(true)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Read falls back to the store.
	got, err := resolver.Read(ctx, "output01")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !got.Bool {
		t.Error("Read() = false, want stored value true")
	}

	// Write succeeds despite the hardware fault.
	if _, err := resolver.Write(ctx, "output01", false); err != nil {
		t.Fatalf("Write() error = %v, hardware faults must not fail writes", err)
	}
	got, err = resolver.Read(ctx, "output01")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Bool {
		t.Error("Read() = true, want false after store-only write")
	}
}

// TestWriteDrivesHardware verifies hardware is set on boolean writes.
func TestWriteDrivesHardware(t *testing.T) {
	hw := newFakeHardware()
	resolver, _ := newTestResolver(t, hw)

	if _, err := resolver.Write(context.Background(), "output01", true); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !hw.lines[24] {
		t.Error("hardware line 24 not driven high")
	}
}

// TestPowerUpSnapshot verifies the power-up resolution policy.
func TestPowerUpSnapshot(t *testing.T) {
	resolver, repo := newTestResolver(t, nil)
	ctx := context.Background()

	// output01 uses its power-up default (false). brightness does not,
	// so its last persisted value survives restart.
	if err := repo.Write(ctx, "output01", BoolValue(true)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := repo.Write(ctx, "brightness", IntValue(200)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	snapshot, err := resolver.PowerUpSnapshot(ctx)
	if err != nil {
		t.Fatalf("PowerUpSnapshot() error = %v", err)
	}

	if got := snapshot["output01"]; !got.Equal(BoolValue(false)) {
		t.Errorf("output01 snapshot = %v, want power-up default false", got)
	}
	if got := snapshot["brightness"]; !got.Equal(IntValue(200)) {
		t.Errorf("brightness snapshot = %v, want last persisted 200", got)
	}
}

// TestApplyPowerUp verifies hardware and store both receive the snapshot.
func TestApplyPowerUp(t *testing.T) {
	hw := newFakeHardware()
	resolver, repo := newTestResolver(t, hw)
	ctx := context.Background()

	// Drift: store says true, power-up default is false.
	if err := repo.Write(ctx, "output01", BoolValue(true)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	hw.lines[24] = true

	if err := resolver.ApplyPowerUp(ctx); err != nil {
		t.Fatalf("ApplyPowerUp() error = %v", err)
	}

	if hw.lines[24] {
		t.Error("hardware line still high, want power-up default false applied")
	}
	v, err := repo.Read(ctx, "output01", KindBoolean)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if v.Bool {
		t.Error("stored value still true, want power-up default false")
	}
}

// TestSetPowerUp verifies policy editing through the resolver.
func TestSetPowerUp(t *testing.T) {
	resolver, _ := newTestResolver(t, nil)
	ctx := context.Background()

	if err := resolver.SetPowerUp(ctx, "brightness", "75", true); err != nil {
		t.Fatalf("SetPowerUp() error = %v", err)
	}

	row, err := resolver.PowerUpConfig(ctx, "brightness")
	if err != nil {
		t.Fatalf("PowerUpConfig() error = %v", err)
	}
	if !row.UsePowerUp || !row.PowerUp.Equal(IntValue(75)) {
		t.Errorf("PowerUpConfig() = %+v, want use=true value=75", row)
	}

	if err := resolver.SetPowerUp(ctx, "ghost", 1, true); !errors.Is(err, ErrUnknownOutput) {
		t.Errorf("SetPowerUp() error = %v, want ErrUnknownOutput", err)
	}
}
