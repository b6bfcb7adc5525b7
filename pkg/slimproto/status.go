package slimproto

import (
	"time"

	"github.com/squeezelite-go/slimproto/pkg/clock"
	"github.com/squeezelite-go/slimproto/pkg/wire"
)

// StatusSnapshot is the 49-byte status payload embedded in every Stat
// message. jiffies_ms is owned by the Tracker, not the caller.
type StatusSnapshot struct {
	Crlf                 uint8
	BufferSize           uint32
	Fullness             uint32
	BytesReceived        uint64
	SignalStrength       uint16
	JiffiesMS            uint32
	OutputBufferSize     uint32
	OutputBufferFullness uint32
	ElapsedSeconds       uint32
	Voltage              uint16
	ElapsedMS            uint32
	TimestampMS          uint32
	ErrorCode            uint16
}

// encode writes the 49-byte big-endian wire form of the snapshot.
func (s StatusSnapshot) encode(w *wire.Writer) {
	w.U8(s.Crlf)
	w.U16(0) // reserved
	w.U32(s.BufferSize)
	w.U32(s.Fullness)
	w.U64(s.BytesReceived)
	w.U16(s.SignalStrength)
	w.U32(s.JiffiesMS)
	w.U32(s.OutputBufferSize)
	w.U32(s.OutputBufferFullness)
	w.U32(s.ElapsedSeconds)
	w.U16(s.Voltage)
	w.U32(s.ElapsedMS)
	w.U32(s.TimestampMS)
	w.U16(s.ErrorCode)
}

// EventCode identifies what triggered a Stat message. ToEventCode renders
// it to the 4-ASCII-byte wire form.
type EventCode int

const (
	EventConnect EventCode = iota
	EventDecoderReady
	EventStreamEstablished
	EventFlushed
	EventHeadersReceived
	EventBufferThreshold
	EventNotSupported
	EventOutputUnderrun
	EventPause
	EventResume
	EventTrackStarted
	EventTimer
	EventUnderrun
)

var eventCodeWire = map[EventCode][4]byte{
	EventConnect:           [4]byte{'S', 'T', 'M', 'c'},
	EventDecoderReady:      [4]byte{'S', 'T', 'M', 'd'},
	EventStreamEstablished: [4]byte{'S', 'T', 'M', 'e'},
	EventFlushed:           [4]byte{'S', 'T', 'M', 'f'},
	EventHeadersReceived:   [4]byte{'S', 'T', 'M', 'h'},
	EventBufferThreshold:   [4]byte{'S', 'T', 'M', 'l'},
	EventNotSupported:      [4]byte{'S', 'T', 'M', 'n'},
	EventOutputUnderrun:    [4]byte{'S', 'T', 'M', 'o'},
	EventPause:             [4]byte{'S', 'T', 'M', 'p'},
	EventResume:            [4]byte{'S', 'T', 'M', 'r'},
	EventTrackStarted:      [4]byte{'S', 'T', 'M', 's'},
	EventTimer:             [4]byte{'S', 'T', 'M', 't'},
	EventUnderrun:          [4]byte{'S', 'T', 'M', 'u'},
}

// ToEventCode renders the 4-ASCII-byte wire form of the event.
func (e EventCode) ToEventCode() [4]byte {
	return eventCodeWire[e]
}

// Tracker holds the mutable status counters for one player and a clock
// used to populate JiffiesMS. It is single-owner: callers synchronize
// cross-thread mutation themselves.
type Tracker struct {
	clock  clock.Source
	status StatusSnapshot
}

// NewTracker returns a Tracker whose clock starts now (by src's
// definition of "now").
func NewTracker(src clock.Source) *Tracker {
	return &Tracker{clock: src}
}

// AddCrlf adds k to the crlf counter, wrapping modulo 256.
func (t *Tracker) AddCrlf(k uint8) {
	t.status.Crlf = t.status.Crlf + k
}

// AddBytesReceived adds k to bytes_received, wrapping modulo 2^64.
func (t *Tracker) AddBytesReceived(k uint64) {
	t.status.BytesReceived += k
}

// SetBufferSize sets the buffer_size field.
func (t *Tracker) SetBufferSize(v uint32) { t.status.BufferSize = v }

// SetFullness sets the fullness field.
func (t *Tracker) SetFullness(v uint32) { t.status.Fullness = v }

// SetSignalStrength sets the signal_strength field.
func (t *Tracker) SetSignalStrength(v uint16) { t.status.SignalStrength = v }

// SetOutputBufferSize sets the output_buffer_size field.
func (t *Tracker) SetOutputBufferSize(v uint32) { t.status.OutputBufferSize = v }

// SetOutputBufferFullness sets the output_buffer_fullness field.
func (t *Tracker) SetOutputBufferFullness(v uint32) { t.status.OutputBufferFullness = v }

// SetElapsed sets elapsed_seconds and elapsed_ms from d.
func (t *Tracker) SetElapsed(d time.Duration) {
	t.status.ElapsedSeconds = uint32(d / time.Second)
	t.status.ElapsedMS = uint32(d / time.Millisecond)
}

// SetVoltage sets the voltage field.
func (t *Tracker) SetVoltage(v uint16) { t.status.Voltage = v }

// SetTimestampMS sets the timestamp_ms field.
func (t *Tracker) SetTimestampMS(v uint32) { t.status.TimestampMS = v }

// SetErrorCode sets the error_code field.
func (t *Tracker) SetErrorCode(v uint16) { t.status.ErrorCode = v }

// Snapshot returns a copy of the current status, without refreshing
// jiffies_ms.
func (t *Tracker) Snapshot() StatusSnapshot {
	return t.status
}

// CreateStatusMessage refreshes jiffies_ms from the clock and returns a
// Stat message tagged with code's wire event code.
func (t *Tracker) CreateStatusMessage(code EventCode) Stat {
	t.status.JiffiesMS = uint32(t.clock.Elapsed() / time.Millisecond)
	return Stat{
		EventCode: code.ToEventCode(),
		Status:    t.status,
	}
}
