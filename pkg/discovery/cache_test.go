package discovery

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/squeezelite-go/slimproto/pkg/session"
)

func TestCachePutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discovery.db")
	c, err := OpenCache(path)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()

	srv := &Server{
		EndPoint: session.EndPoint{IP: net.IPv4(192, 168, 1, 50), Port: Port},
		TLV: map[string]TlvValue{
			"NAME": TlvName("kitchen"),
			"VERS": TlvVersion("7.9"),
		},
	}

	if err := c.Put("wlan0", srv); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := c.Get("wlan0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil, want cached server")
	}
	if !got.EndPoint.IP.Equal(net.IPv4(192, 168, 1, 50)) {
		t.Fatalf("EndPoint.IP = %v", got.EndPoint.IP)
	}
	if got.TLV["NAME"] != TlvName("kitchen") {
		t.Fatalf("TLV[NAME] = %v", got.TLV["NAME"])
	}
	if got.TLV["VERS"] != TlvVersion("7.9") {
		t.Fatalf("TLV[VERS] = %v", got.TLV["VERS"])
	}
}

func TestCacheGetMissingNetworkReturnsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discovery.db")
	c, err := OpenCache(path)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()

	got, err := c.Get("unknown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("Get() = %+v, want nil", got)
	}
}

func TestCachePutOverwritesPriorEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discovery.db")
	c, err := OpenCache(path)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()

	first := &Server{EndPoint: session.EndPoint{IP: net.IPv4(10, 0, 0, 1), Port: Port}, TLV: map[string]TlvValue{"NAME": TlvName("old")}}
	second := &Server{EndPoint: session.EndPoint{IP: net.IPv4(10, 0, 0, 2), Port: Port}, TLV: map[string]TlvValue{"NAME": TlvName("new")}}

	if err := c.Put("eth0", first); err != nil {
		t.Fatalf("Put(first): %v", err)
	}
	if err := c.Put("eth0", second); err != nil {
		t.Fatalf("Put(second): %v", err)
	}

	got, err := c.Get("eth0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TLV["NAME"] != TlvName("new") {
		t.Fatalf("TLV[NAME] = %v, want new", got.TLV["NAME"])
	}
}
