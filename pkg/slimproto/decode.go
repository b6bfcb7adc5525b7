package slimproto

import (
	"fmt"
	"net"
	"time"

	"github.com/squeezelite-go/slimproto/pkg/wire"
)

// MaxFrameSize is the largest length-prefixed server→client frame the
// session will accept; larger values fail as Malformed before decode is
// even attempted.
const MaxFrameSize = 1 << 20 // 1 MiB

// Decode parses one already-de-framed server→client payload (opcode
// prefix included, no length prefix) into its tagged SC variant.
// Unrecognized opcodes — at the top level or under a sub-dispatch — are
// never an error: they come back as Unknown with the full input
// preserved, so the caller never loses frame alignment.
func Decode(payload []byte) (SC, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("slimproto: payload shorter than opcode: %w", ErrMalformed)
	}

	r := wire.NewReader(payload)
	op, _ := r.Opcode()

	switch {
	case wire.OpcodeEqual(op, "serv"):
		return decodeServ(payload[4:])
	case wire.OpcodeEqual(op, "strm"):
		return decodeStrm(payload[4:])
	case wire.OpcodeEqual(op, "aude"):
		return decodeAude(payload[4:])
	case wire.OpcodeEqual(op, "audg"):
		return decodeAudg(payload[4:])
	case wire.OpcodeEqual(op, "vers"):
		return Version{Text: string(payload[4:])}, nil
	case wire.OpcodeEqual(op, "setd"):
		return decodeSetd(payload[4:])
	default:
		return Unknown{Opcode: string(op[:]), Raw: payload}, nil
	}
}

func decodeServ(body []byte) (SC, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("slimproto: serv payload too short: %w", ErrMalformed)
	}
	ip := net.IP(append([]byte(nil), body[:4]...))
	var syncGroupID *string
	if len(body) > 4 {
		s := string(body[4:])
		syncGroupID = &s
	}
	return Serv{IP: ip, SyncGroupID: syncGroupID}, nil
}

func decodeStrm(body []byte) (SC, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("slimproto: strm payload empty: %w", ErrMalformed)
	}
	cmd := body[0]
	rest := body[1:] // relative offset 0 starts right after the command byte

	switch cmd {
	case 't':
		ts, err := strmTimestamp(rest)
		if err != nil {
			return nil, err
		}
		return StatusRequest{Interval: ts}, nil
	case 's':
		return decodeStream(rest)
	case 'q':
		return Stop{}, nil
	case 'f':
		return Flush{}, nil
	case 'p':
		ts, err := strmTimestamp(rest)
		if err != nil {
			return nil, err
		}
		return Pause{Timestamp: ts}, nil
	case 'u':
		ts, err := strmTimestamp(rest)
		if err != nil {
			return nil, err
		}
		return Unpause{Timestamp: ts}, nil
	case 'a':
		ts, err := strmTimestamp(rest)
		if err != nil {
			return nil, err
		}
		return Skip{Timestamp: ts}, nil
	default:
		return Unknown{Opcode: fmt.Sprintf("strm_%c", cmd), Raw: append([]byte{'s', 't', 'r', 'm'}, body...)}, nil
	}
}

// strmTimestamp reads the u32 BE millisecond field at relative offset
// 13 (absolute offset 14 in the full strm payload), shared by
// StatusRequest.Interval, Pause, Unpause and Skip.
func strmTimestamp(rest []byte) (time.Duration, error) {
	if len(rest) < 17 {
		return 0, fmt.Errorf("slimproto: strm timestamp payload too short: %w", ErrTruncated)
	}
	r := wire.NewReader(rest)
	r.Seek(13)
	ms, err := r.U32()
	if err != nil {
		return 0, fmt.Errorf("slimproto: strm timestamp: %w", ErrTruncated)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func decodeStream(rest []byte) (SC, error) {
	if len(rest) < 23 {
		return nil, fmt.Errorf("slimproto: strm stream payload too short: %w", ErrTruncated)
	}

	autoStart, err := decodeAutoStart(rest[0])
	if err != nil {
		return nil, err
	}
	format, err := decodeStreamFormat(rest[1])
	if err != nil {
		return nil, err
	}
	sampleSize, err := decodeSampleSize(rest[2])
	if err != nil {
		return nil, err
	}
	sampleRate, err := decodeSampleRate(rest[3])
	if err != nil {
		return nil, err
	}
	channels, err := decodeChannels(rest[4])
	if err != nil {
		return nil, err
	}
	endian, err := decodeEndian(rest[5])
	if err != nil {
		return nil, err
	}

	threshold := uint32(rest[6]) * 1024
	spdif := SpdifEnable(rest[7])
	if spdif > SpdifOff {
		return nil, fmt.Errorf("slimproto: invalid spdif_enable byte %d: %w", rest[7], ErrMalformed)
	}
	transitionPeriod := rest[8]
	transitionType := rest[9]
	if transitionType < '0' || transitionType > '4' {
		return nil, fmt.Errorf("slimproto: invalid transition_type byte %q: %w", transitionType, ErrMalformed)
	}
	flags := StreamFlags(rest[10])
	outputThreshold := uint32(rest[11]) * 10
	// rest[12] is reserved and skipped.

	r := wire.NewReader(rest)
	r.Seek(13)
	gainRaw, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("slimproto: strm replay_gain: %w", ErrTruncated)
	}
	port, err := r.U16()
	if err != nil {
		return nil, fmt.Errorf("slimproto: strm server_port: %w", ErrTruncated)
	}
	ipBytes, err := r.Bytes(4)
	if err != nil {
		return nil, fmt.Errorf("slimproto: strm server_ip: %w", ErrTruncated)
	}
	ip := net.IP(append([]byte(nil), ipBytes...))

	var headers *string
	if r.Len() > 0 {
		h := string(r.Rest())
		headers = &h
	}

	return Stream{
		AutoStart:         autoStart,
		Format:            format,
		PCMSampleSize:     sampleSize,
		PCMSampleRate:     sampleRate,
		PCMChannels:       channels,
		PCMEndian:         endian,
		ThresholdBytes:    threshold,
		SpdifEnable:       spdif,
		TransitionPeriod:  transitionPeriod,
		TransitionType:    transitionType,
		Flags:             flags,
		OutputThresholdMS: outputThreshold,
		ReplayGain:        float64(gainRaw) / 65536.0,
		ServerPort:        port,
		ServerIP:          ip,
		HTTPHeaders:       headers,
	}, nil
}

func decodeAutoStart(b byte) (AutoStart, error) {
	switch b {
	case '0':
		return AutoStartNone, nil
	case '1':
		return AutoStartAuto, nil
	case '2':
		return AutoStartDirect, nil
	case '3':
		return AutoStartAutoDirect, nil
	default:
		return 0, fmt.Errorf("slimproto: invalid auto_start byte %q: %w", b, ErrMalformed)
	}
}

func decodeStreamFormat(b byte) (StreamFormat, error) {
	switch b {
	case 'p':
		return FormatPCM, nil
	case 'm':
		return FormatMP3, nil
	case 'f':
		return FormatFLAC, nil
	case 'w':
		return FormatWMA, nil
	case 'o':
		return FormatOgg, nil
	case 'a':
		return FormatAAC, nil
	case 'l':
		return FormatALAC, nil
	default:
		return 0, fmt.Errorf("slimproto: invalid format byte %q: %w", b, ErrMalformed)
	}
}

func decodeSampleSize(b byte) (PCMSampleSize, error) {
	switch b {
	case '0':
		return SampleSize8, nil
	case '1':
		return SampleSize16, nil
	case '2':
		return SampleSize20, nil
	case '3':
		return SampleSize32, nil
	case '?':
		return SampleSizeSelfDescribing, nil
	default:
		return 0, fmt.Errorf("slimproto: invalid pcm_sample_size byte %q: %w", b, ErrMalformed)
	}
}

func decodeSampleRate(b byte) (PCMSampleRate, error) {
	switch b {
	case '0':
		return SampleRate11025, nil
	case '1':
		return SampleRate22050, nil
	case '2':
		return SampleRate32000, nil
	case '3':
		return SampleRate44100, nil
	case '4':
		return SampleRate48000, nil
	case '5':
		return SampleRate8000, nil
	case '6':
		return SampleRate12000, nil
	case '7':
		return SampleRate16000, nil
	case '8':
		return SampleRate24000, nil
	case '9':
		return SampleRate96000, nil
	case '?':
		return SampleRateSelfDescribing, nil
	default:
		return 0, fmt.Errorf("slimproto: invalid pcm_sample_rate byte %q: %w", b, ErrMalformed)
	}
}

func decodeChannels(b byte) (PCMChannels, error) {
	switch b {
	case '1':
		return ChannelsMono, nil
	case '2':
		return ChannelsStereo, nil
	case '?':
		return ChannelsSelfDescribing, nil
	default:
		return 0, fmt.Errorf("slimproto: invalid pcm_channels byte %q: %w", b, ErrMalformed)
	}
}

func decodeEndian(b byte) (PCMEndian, error) {
	switch b {
	case '0':
		return EndianBig, nil
	case '1':
		return EndianLittle, nil
	case '?':
		return EndianSelfDescribing, nil
	default:
		return 0, fmt.Errorf("slimproto: invalid pcm_endian byte %q: %w", b, ErrMalformed)
	}
}

func decodeAude(body []byte) (SC, error) {
	if len(body) < 2 {
		return nil, fmt.Errorf("slimproto: aude payload too short: %w", ErrTruncated)
	}
	return Enable{Spdif: body[0] != 0, Dac: body[1] != 0}, nil
}

func decodeAudg(body []byte) (SC, error) {
	if len(body) < 18 {
		return nil, fmt.Errorf("slimproto: audg payload too short: %w", ErrTruncated)
	}
	r := wire.NewReader(body)
	r.Seek(10)
	left, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("slimproto: audg left gain: %w", ErrTruncated)
	}
	right, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("slimproto: audg right gain: %w", ErrTruncated)
	}
	return Gain{Left: float64(left) / 65536.0, Right: float64(right) / 65536.0}, nil
}

func decodeSetd(body []byte) (SC, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("slimproto: setd payload empty: %w", ErrMalformed)
	}
	id := body[0]
	rest := body[1:]

	switch id {
	case 0:
		if len(rest) == 0 {
			return QueryName{}, nil
		}
		// The final byte is assumed to be a NUL terminator and is
		// dropped unconditionally; a name with no terminator loses its
		// last character (see the wire format's open questions).
		name := rest[:len(rest)-1]
		return SetNameRequest{Name: string(name)}, nil
	case 4:
		return DisableDac{}, nil
	default:
		return Unknown{Opcode: fmt.Sprintf("setd_%d", id), Raw: append([]byte{'s', 'e', 't', 'd'}, body...)}, nil
	}
}
