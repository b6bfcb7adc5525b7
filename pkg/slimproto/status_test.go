package slimproto

import (
	"testing"
	"time"

	"github.com/squeezelite-go/slimproto/pkg/clock"
)

func TestTrackerWrappingCounters(t *testing.T) {
	tr := NewTracker(clock.NewFake())

	tr.AddCrlf(250)
	tr.AddCrlf(10) // 260 wraps to 4 modulo 256
	if got := tr.Snapshot().Crlf; got != 4 {
		t.Fatalf("Crlf = %d, want 4", got)
	}

	tr.AddBytesReceived(^uint64(0)) // max uint64
	tr.AddBytesReceived(2)          // wraps to 1
	if got := tr.Snapshot().BytesReceived; got != 1 {
		t.Fatalf("BytesReceived = %d, want 1", got)
	}
}

func TestTrackerElapsedSplit(t *testing.T) {
	tr := NewTracker(clock.NewFake())
	tr.SetElapsed(1500 * time.Millisecond)
	snap := tr.Snapshot()
	if snap.ElapsedSeconds != 1 {
		t.Fatalf("ElapsedSeconds = %d, want 1", snap.ElapsedSeconds)
	}
	if snap.ElapsedMS != 1500 {
		t.Fatalf("ElapsedMS = %d, want 1500", snap.ElapsedMS)
	}
}

func TestTrackerCreateStatusMessageRefreshesJiffies(t *testing.T) {
	fake := clock.NewFake()
	tr := NewTracker(fake)

	fake.Advance(250 * time.Millisecond)
	stat := tr.CreateStatusMessage(EventTimer)

	if stat.Status.JiffiesMS != 250 {
		t.Fatalf("JiffiesMS = %d, want 250", stat.Status.JiffiesMS)
	}
	if stat.EventCode != ([4]byte{'S', 'T', 'M', 't'}) {
		t.Fatalf("EventCode = %v, want STMt", stat.EventCode)
	}
}

func TestEventCodeWireForms(t *testing.T) {
	cases := map[EventCode][4]byte{
		EventConnect:           {'S', 'T', 'M', 'c'},
		EventTrackStarted:      {'S', 'T', 'M', 's'},
		EventUnderrun:          {'S', 'T', 'M', 'u'},
		EventStreamEstablished: {'S', 'T', 'M', 'e'},
	}
	for code, want := range cases {
		if got := code.ToEventCode(); got != want {
			t.Fatalf("%v.ToEventCode() = %v, want %v", code, got, want)
		}
	}
}

func TestTrackerSetters(t *testing.T) {
	tr := NewTracker(clock.NewFake())
	tr.SetBufferSize(1024)
	tr.SetFullness(512)
	tr.SetSignalStrength(100)
	tr.SetOutputBufferSize(2048)
	tr.SetOutputBufferFullness(1024)
	tr.SetVoltage(33)
	tr.SetTimestampMS(99)
	tr.SetErrorCode(0)

	snap := tr.Snapshot()
	if snap.BufferSize != 1024 || snap.Fullness != 512 || snap.SignalStrength != 100 ||
		snap.OutputBufferSize != 2048 || snap.OutputBufferFullness != 1024 ||
		snap.Voltage != 33 || snap.TimestampMS != 99 {
		t.Fatalf("Snapshot() = %+v", snap)
	}
}
