package slimproto

import (
	"fmt"
	"strings"
)

// CapabilityTag is the closed enumeration of predefined capability
// tokens. A zero value is never produced by public constructors.
type CapabilityTag int

const (
	CapWma CapabilityTag = iota + 1
	CapWmap
	CapWmal
	CapOgg
	CapFlc
	CapPcm
	CapAif
	CapMp3
	CapAlc
	CapAac
	CapMaxSampleRate
	CapModel
	CapModelName
	CapRhap
	CapAccuratePlayPoints
	CapSyncgroupID
	CapHasDigitalOut
	CapHasPreAmp
	CapHasDisableDAC
	CapFirmware
	CapBalance
	CapCanHTTPS
)

var capShortToken = map[CapabilityTag]string{
	CapWma:  "wma",
	CapWmap: "wmap",
	CapWmal: "wmal",
	CapOgg:  "ogg",
	CapFlc:  "flc",
	CapPcm:  "pcm",
	CapAif:  "aif",
	CapMp3:  "mp3",
	CapAlc:  "alc",
	CapAac:  "aac",
}

var capValueName = map[CapabilityTag]string{
	CapMaxSampleRate: "MaxSampleRate",
	CapModel:         "Model",
	CapModelName:     "ModelName",
	CapSyncgroupID:   "SyncgroupID",
	CapFirmware:      "Firmware",
}

var capFlagName = map[CapabilityTag]string{
	CapAccuratePlayPoints: "AccuratePlayPoints",
	CapHasDigitalOut:      "HasDigitalOut",
	CapHasPreAmp:          "HasPreAmp",
	CapHasDisableDAC:      "HasDisableDac", // sic: renders with lowercase "ac"
	CapBalance:            "Balance",
	CapCanHTTPS:           "CanHTTPS",
}

// capabilityEntry is one entry in a CapabilitySet: either a predefined
// tag (with an optional value) or a raw custom token.
type capabilityEntry struct {
	tag    CapabilityTag // zero means "custom"
	value  string
	custom string
}

func (e capabilityEntry) render() string {
	if e.tag == 0 {
		return e.custom
	}
	if tok, ok := capShortToken[e.tag]; ok {
		return tok
	}
	if name, ok := capValueName[e.tag]; ok {
		return name + "=" + e.value
	}
	if e.tag == CapRhap {
		return "Rhap"
	}
	if name, ok := capFlagName[e.tag]; ok {
		return name + "=1"
	}
	return ""
}

// CapabilitySet is an ordered, insertion-order-preserving sequence of
// capability entries. Adding a predefined tag that already appears
// replaces the earlier entry (removing it, then appending the new one).
// Custom entries are never deduplicated.
type CapabilitySet struct {
	entries []capabilityEntry
}

// NewCapabilitySet returns an empty set.
func NewCapabilitySet() *CapabilitySet {
	return &CapabilitySet{}
}

// DefaultCapabilitySet returns the convenience default set described in
// the wire spec: Model=squeezelite, ModelName=SqueezeLite,
// AccuratePlayPoints=1, HasDigitalOut=1, HasPreAmp=1, HasDisableDac=1.
func DefaultCapabilitySet() *CapabilitySet {
	c := NewCapabilitySet()
	c.AddValue(CapModel, "squeezelite")
	c.AddValue(CapModelName, "SqueezeLite")
	c.AddFlag(CapAccuratePlayPoints)
	c.AddFlag(CapHasDigitalOut)
	c.AddFlag(CapHasPreAmp)
	c.AddFlag(CapHasDisableDAC)
	return c
}

func (c *CapabilitySet) removeTag(tag CapabilityTag) {
	for i, e := range c.entries {
		if e.tag == tag {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Add inserts a predefined capability with no associated value (e.g.
// Wma, Pcm, Rhap). Re-adding the same tag replaces the earlier entry.
func (c *CapabilitySet) Add(tag CapabilityTag) {
	c.removeTag(tag)
	c.entries = append(c.entries, capabilityEntry{tag: tag})
}

// AddValue inserts a predefined capability that requires a value (e.g.
// Model, MaxSampleRate). Re-adding the same tag replaces the earlier
// entry with the new value.
func (c *CapabilitySet) AddValue(tag CapabilityTag, value string) {
	c.removeTag(tag)
	c.entries = append(c.entries, capabilityEntry{tag: tag, value: value})
}

// AddFlag inserts a predefined boolean-flag capability (renders as
// "<Name>=1"). Re-adding the same tag replaces the earlier entry.
func (c *CapabilitySet) AddFlag(tag CapabilityTag) {
	c.removeTag(tag)
	c.entries = append(c.entries, capabilityEntry{tag: tag})
}

// AddCustom appends a raw ASCII token. Custom entries are never
// deduplicated against each other or against predefined entries. An
// empty token is rejected with ErrInvalidArgument rather than silently
// inserting a rendering-empty entry that would corrupt the
// comma-separated output.
func (c *CapabilitySet) AddCustom(token string) error {
	if token == "" {
		return fmt.Errorf("slimproto: empty custom capability token: %w", ErrInvalidArgument)
	}
	c.entries = append(c.entries, capabilityEntry{custom: token})
	return nil
}

// Render produces the comma-separated capability string in insertion
// order. An empty set renders to "".
func (c *CapabilitySet) Render() string {
	parts := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		parts = append(parts, e.render())
	}
	return strings.Join(parts, ",")
}
