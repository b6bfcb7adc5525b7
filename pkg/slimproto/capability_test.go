package slimproto

import (
	"errors"
	"testing"
)

func TestCapabilitySetShortTokens(t *testing.T) {
	c := NewCapabilitySet()
	c.Add(CapWmal)
	if got, want := c.Render(), "wmal"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestCapabilitySetValueAndFlag(t *testing.T) {
	c := NewCapabilitySet()
	c.AddValue(CapModel, "squeezelite")
	c.AddFlag(CapHasDisableDAC)
	c.Add(CapRhap)

	got := c.Render()
	want := "Model=squeezelite,HasDisableDac=1,Rhap"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestDefaultCapabilitySet(t *testing.T) {
	c := DefaultCapabilitySet()
	got := c.Render()
	want := "Model=squeezelite,ModelName=SqueezeLite,AccuratePlayPoints=1,HasDigitalOut=1,HasPreAmp=1,HasDisableDac=1"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

// Adding a predefined capability twice with the same value yields the
// same rendering as adding it once.
func TestCapabilityIdempotenceSameValue(t *testing.T) {
	once := NewCapabilitySet()
	once.AddValue(CapModel, "squeezelite")

	twice := NewCapabilitySet()
	twice.AddValue(CapModel, "squeezelite")
	twice.AddValue(CapModel, "squeezelite")

	if once.Render() != twice.Render() {
		t.Fatalf("Render() mismatch: %q vs %q", once.Render(), twice.Render())
	}
}

// Adding two distinct values of the same predefined tag yields the
// later value only.
func TestCapabilityReplacesOnDistinctValue(t *testing.T) {
	c := NewCapabilitySet()
	c.AddValue(CapModel, "first")
	c.AddValue(CapModel, "second")
	if got, want := c.Render(), "Model=second"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

// Replacing a tag removes the earlier entry and appends the new one at
// the end.
func TestCapabilityReplaceMovesToEnd(t *testing.T) {
	c := NewCapabilitySet()
	c.AddValue(CapModel, "first")
	c.Add(CapWmal)
	c.AddValue(CapModel, "second")

	if got, want := c.Render(), "wmal,Model=second"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

// The same custom token added twice appears twice, never deduplicated.
func TestCapabilityCustomNeverDeduped(t *testing.T) {
	c := NewCapabilitySet()
	if err := c.AddCustom("Foo=1"); err != nil {
		t.Fatalf("AddCustom: %v", err)
	}
	if err := c.AddCustom("Foo=1"); err != nil {
		t.Fatalf("AddCustom: %v", err)
	}
	if got, want := c.Render(), "Foo=1,Foo=1"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

// An empty custom token is rejected rather than silently inserted,
// which would otherwise render as a stray comma alongside any other
// entries.
func TestCapabilityAddCustomEmptyRejected(t *testing.T) {
	c := NewCapabilitySet()
	c.AddValue(CapModel, "squeezelite")
	if err := c.AddCustom(""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("AddCustom(\"\") err = %v, want ErrInvalidArgument", err)
	}
	if got, want := c.Render(), "Model=squeezelite"; got != want {
		t.Fatalf("Render() = %q, want %q (rejected token must not be inserted)", got, want)
	}
}

func TestCapabilitySetEmpty(t *testing.T) {
	c := NewCapabilitySet()
	if got := c.Render(); got != "" {
		t.Fatalf("Render() = %q, want empty", got)
	}
}
