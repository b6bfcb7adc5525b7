package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceAccumulates(t *testing.T) {
	f := NewFake()
	if f.Elapsed() != 0 {
		t.Fatalf("Elapsed() = %v, want 0", f.Elapsed())
	}
	f.Advance(10 * time.Millisecond)
	f.Advance(5 * time.Millisecond)
	if got, want := f.Elapsed(), 15*time.Millisecond; got != want {
		t.Fatalf("Elapsed() = %v, want %v", got, want)
	}
}

func TestFakeSetPins(t *testing.T) {
	f := NewFake()
	f.Advance(100 * time.Millisecond)
	f.Set(3 * time.Second)
	if got, want := f.Elapsed(), 3*time.Second; got != want {
		t.Fatalf("Elapsed() = %v, want %v", got, want)
	}
}

func TestRealElapsedIsMonotonicNonNegative(t *testing.T) {
	r := NewReal()
	time.Sleep(time.Millisecond)
	if r.Elapsed() <= 0 {
		t.Fatalf("Elapsed() = %v, want > 0", r.Elapsed())
	}
}
