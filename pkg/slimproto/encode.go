package slimproto

import (
	"fmt"

	"github.com/squeezelite-go/slimproto/pkg/wire"
)

// Encode serializes a CS message to its full wire frame:
// [opcode: 4 ASCII][payload_length: u32 BE][payload]. The length prefix
// here is 4 bytes, unlike the 2-byte length prefix the session strips
// from inbound SC frames — this asymmetry is part of the wire contract.
func Encode(msg CS) ([]byte, error) {
	var payload []byte
	var err error

	switch m := msg.(type) {
	case Helo:
		payload, err = encodeHelo(m)
	case Stat:
		payload = encodeStat(m)
	case Bye:
		payload = []byte{m.Reason}
	case SetName:
		payload = encodeSetName(m)
	default:
		return nil, fmt.Errorf("slimproto: unencodable CS message type %T", msg)
	}
	if err != nil {
		return nil, err
	}

	out := wire.NewWriter(8 + len(payload))
	out.Raw([]byte(msg.csOpcode()))
	out.U32(uint32(len(payload)))
	out.Raw(payload)
	return out.Bytes(), nil
}

func encodeHelo(m Helo) ([]byte, error) {
	capStr := m.Capabilities.Render()
	if capStr == "" {
		return nil, fmt.Errorf("slimproto: helo capabilities rendered empty: %w", ErrInvalidArgument)
	}

	w := wire.NewWriter(1 + 1 + 6 + 16 + 2 + 8 + 2 + len(capStr))
	w.U8(m.DeviceID)
	w.U8(m.Revision)
	w.Raw(m.MAC[:])
	w.Raw(m.UUID[:])
	w.U16(m.WlanChannels)
	w.U64(m.BytesReceived)
	w.Raw(m.Language[:])
	w.Raw([]byte(capStr))
	return w.Bytes(), nil
}

func encodeStat(m Stat) []byte {
	w := wire.NewWriter(4 + 49)
	w.Raw(m.EventCode[:])
	m.Status.encode(w)
	return w.Bytes()
}

func encodeSetName(m SetName) []byte {
	w := wire.NewWriter(1 + len(m.Name))
	w.U8(0x00)
	w.Raw([]byte(m.Name))
	return w.Bytes()
}
