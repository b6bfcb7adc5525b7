package discovery

import (
	"net"
	"testing"
)

func tlvRecord(token string, value []byte) []byte {
	rec := append([]byte(token), byte(len(value)))
	return append(rec, value...)
}

func TestParseTLVRecognizedRecords(t *testing.T) {
	buf := append(tlvRecord("NAME", []byte("kitchen")), tlvRecord("VERS", []byte("7.9"))...)
	buf = append(buf, tlvRecord("IPAD", []byte("192.168.1.50"))...)
	buf = append(buf, tlvRecord("JSON", []byte("9000"))...)

	got := parseTLV(buf)

	if got["NAME"] != TlvName("kitchen") {
		t.Fatalf("NAME = %v", got["NAME"])
	}
	if got["VERS"] != TlvVersion("7.9") {
		t.Fatalf("VERS = %v", got["VERS"])
	}
	addr, ok := got["IPAD"].(TlvAddress)
	if !ok || !net.IP(addr).Equal(net.IPv4(192, 168, 1, 50)) {
		t.Fatalf("IPAD = %v", got["IPAD"])
	}
	if got["JSON"] != TlvPort(9000) {
		t.Fatalf("JSON = %v", got["JSON"])
	}
}

// Appending an unknown record to a valid TLV stream does not change
// the parsed result for known tokens.
func TestParseTLVUnknownRecordIgnored(t *testing.T) {
	base := tlvRecord("NAME", []byte("kitchen"))
	withExtra := append(base, tlvRecord("WXYZ", []byte("???"))...)

	got := parseTLV(withExtra)
	want := parseTLV(base)

	if got["NAME"] != want["NAME"] {
		t.Fatalf("NAME mismatch: %v vs %v", got["NAME"], want["NAME"])
	}
	if _, ok := got["WXYZ"]; ok {
		t.Fatalf("unexpected WXYZ entry in result")
	}
}

// An invalid IPv4 in IPAD skips that record but preserves subsequent
// records.
func TestParseTLVInvalidIPADSkipsButContinues(t *testing.T) {
	buf := append(tlvRecord("IPAD", []byte("not-an-ip")), tlvRecord("NAME", []byte("kitchen"))...)
	got := parseTLV(buf)

	if _, ok := got["IPAD"]; ok {
		t.Fatalf("IPAD should have been skipped, got %v", got["IPAD"])
	}
	if got["NAME"] != TlvName("kitchen") {
		t.Fatalf("NAME = %v, want kitchen (record after bad IPAD)", got["NAME"])
	}
}

// Non-decimal JSON skips that record but preserves subsequent records.
func TestParseTLVNonDecimalJSONSkipsButContinues(t *testing.T) {
	buf := append(tlvRecord("JSON", []byte("abc")), tlvRecord("VERS", []byte("7.9"))...)
	got := parseTLV(buf)

	if _, ok := got["JSON"]; ok {
		t.Fatalf("JSON should have been skipped, got %v", got["JSON"])
	}
	if got["VERS"] != TlvVersion("7.9") {
		t.Fatalf("VERS = %v, want 7.9", got["VERS"])
	}
}

func TestParseTLVTruncatedTrailingData(t *testing.T) {
	buf := tlvRecord("NAME", []byte("kitchen"))
	buf = append(buf, "NA"...) // 2 trailing bytes, not enough for a header
	got := parseTLV(buf)
	if got["NAME"] != TlvName("kitchen") {
		t.Fatalf("NAME = %v, want kitchen", got["NAME"])
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
}

func TestParseTLVLastWriterWins(t *testing.T) {
	buf := append(tlvRecord("NAME", []byte("first")), tlvRecord("NAME", []byte("second"))...)
	got := parseTLV(buf)
	if got["NAME"] != TlvName("second") {
		t.Fatalf("NAME = %v, want second", got["NAME"])
	}
}

func TestParseTLVEmptyInput(t *testing.T) {
	got := parseTLV(nil)
	if len(got) != 0 {
		t.Fatalf("got %d records, want 0", len(got))
	}
}
