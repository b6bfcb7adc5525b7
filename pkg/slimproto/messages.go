package slimproto

import (
	"net"
	"time"
)

// CS is implemented by every client→server message variant. It is a
// closed sum type in spirit: the only implementations are the ones in
// this file, and Encode is the single source of truth for the wire
// opcode table.
type CS interface {
	csOpcode() string
}

// Helo is the first message sent on every connection.
type Helo struct {
	DeviceID      uint8
	Revision      uint8
	MAC           [6]byte
	UUID          [16]byte
	WlanChannels  uint16
	BytesReceived uint64
	Language      [2]byte
	Capabilities  CapabilitySet
}

func (Helo) csOpcode() string { return "HELO" }

// Stat reports a StatusSnapshot tagged with a 4-byte event code.
type Stat struct {
	EventCode [4]byte
	Status    StatusSnapshot
}

func (Stat) csOpcode() string { return "STAT" }

// Bye announces a clean client-initiated disconnect.
type Bye struct {
	Reason uint8
}

func (Bye) csOpcode() string { return "BYE!" }

// SetName responds to a QueryName/SetNameRequest with the player's name.
type SetName struct {
	Name string
}

func (SetName) csOpcode() string { return "SETD" }

// SC is implemented by every server→client message variant.
type SC interface {
	scOpcode() string
}

// Serv tells the client to (re)connect to a (possibly different)
// server, optionally joining a sync group.
type Serv struct {
	IP          net.IP
	SyncGroupID *string
}

func (Serv) scOpcode() string { return "serv" }

// StatusRequest asks the client to report status at the given interval.
type StatusRequest struct {
	Interval time.Duration
}

func (StatusRequest) scOpcode() string { return "strm_t" }

// AutoStart controls whether the client starts playback automatically
// once enough data is buffered, and whether it talks directly to the
// stream source.
type AutoStart int

const (
	AutoStartNone AutoStart = iota
	AutoStartAuto
	AutoStartDirect
	AutoStartAutoDirect
)

// StreamFormat identifies the audio container/codec of a Stream command.
type StreamFormat byte

const (
	FormatPCM StreamFormat = iota
	FormatMP3
	FormatFLAC
	FormatWMA
	FormatOgg
	FormatAAC
	FormatALAC
)

// PCMSampleSize is either a fixed bit depth or "ask the stream".
type PCMSampleSize int

const (
	SampleSize8 PCMSampleSize = iota
	SampleSize16
	SampleSize20
	SampleSize32
	SampleSizeSelfDescribing
)

// PCMSampleRate is either a fixed rate in Hz or "ask the stream".
type PCMSampleRate int

const (
	SampleRateSelfDescribing PCMSampleRate = -1
	SampleRate11025          PCMSampleRate = 11025
	SampleRate22050          PCMSampleRate = 22050
	SampleRate32000          PCMSampleRate = 32000
	SampleRate44100          PCMSampleRate = 44100
	SampleRate48000          PCMSampleRate = 48000
	SampleRate8000           PCMSampleRate = 8000
	SampleRate12000          PCMSampleRate = 12000
	SampleRate16000          PCMSampleRate = 16000
	SampleRate24000          PCMSampleRate = 24000
	SampleRate96000          PCMSampleRate = 96000
)

// PCMChannels is the channel layout, or "ask the stream".
type PCMChannels int

const (
	ChannelsSelfDescribing PCMChannels = iota
	ChannelsMono
	ChannelsStereo
)

// PCMEndian is the byte order of raw PCM samples, or "ask the stream".
type PCMEndian int

const (
	EndianBig PCMEndian = iota
	EndianLittle
	EndianSelfDescribing
)

// SpdifEnable controls S/PDIF passthrough for the stream.
type SpdifEnable byte

const (
	SpdifAuto SpdifEnable = iota
	SpdifOn
	SpdifOff
)

// StreamFlags is the bitfield at Stream command offset +10.
type StreamFlags byte

const (
	FlagInvertPolarityLeft  StreamFlags = 1 << 0
	FlagInvertPolarityRight StreamFlags = 1 << 1
	FlagNoRestartDecoder    StreamFlags = 1 << 6
	FlagInfiniteLoop        StreamFlags = 1 << 7
)

// Has reports whether flag bit b is set.
func (f StreamFlags) Has(b StreamFlags) bool { return f&b != 0 }

// Stream is the `strm s` command: start streaming audio from a server.
type Stream struct {
	AutoStart         AutoStart
	Format            StreamFormat
	PCMSampleSize     PCMSampleSize
	PCMSampleRate     PCMSampleRate
	PCMChannels       PCMChannels
	PCMEndian         PCMEndian
	ThresholdBytes    uint32 // threshold byte * 1024
	SpdifEnable       SpdifEnable
	TransitionPeriod  uint8 // seconds
	TransitionType    byte  // ASCII '0'..'4'
	Flags             StreamFlags
	OutputThresholdMS uint32 // output_threshold byte * 10
	ReplayGain        float64
	ServerPort        uint16
	ServerIP          net.IP
	HTTPHeaders       *string
}

func (Stream) scOpcode() string { return "strm_s" }

// Stop ends the current stream.
type Stop struct{}

func (Stop) scOpcode() string { return "strm_q" }

// Flush discards buffered audio without ending the stream.
type Flush struct{}

func (Flush) scOpcode() string { return "strm_f" }

// Pause pauses playback at the given timestamp.
type Pause struct {
	Timestamp time.Duration
}

func (Pause) scOpcode() string { return "strm_p" }

// Unpause resumes playback at the given timestamp.
type Unpause struct {
	Timestamp time.Duration
}

func (Unpause) scOpcode() string { return "strm_u" }

// Skip jumps playback to the given timestamp.
type Skip struct {
	Timestamp time.Duration
}

func (Skip) scOpcode() string { return "strm_a" }

// Enable toggles the S/PDIF output and DAC.
type Enable struct {
	Spdif bool
	Dac   bool
}

func (Enable) scOpcode() string { return "aude" }

// Gain sets per-channel output gain, decoded from Q16.16 fixed point.
type Gain struct {
	Left  float64
	Right float64
}

func (Gain) scOpcode() string { return "audg" }

// QueryName asks the client to report its name.
type QueryName struct{}

func (QueryName) scOpcode() string { return "setd_0" }

// SetNameRequest asks the client to adopt a new name.
type SetNameRequest struct {
	Name string
}

func (SetNameRequest) scOpcode() string { return "setd_0" }

// DisableDac asks the client to disable its DAC.
type DisableDac struct{}

func (DisableDac) scOpcode() string { return "setd_4" }

// Version carries the server's version string.
type Version struct {
	Text string
}

func (Version) scOpcode() string { return "vers" }

// Unknown preserves an unrecognized frame (top-level opcode or
// sub-dispatch character) without losing any bytes or stream alignment.
type Unknown struct {
	Opcode string
	Raw    []byte
}

func (Unknown) scOpcode() string { return "unknown" }
