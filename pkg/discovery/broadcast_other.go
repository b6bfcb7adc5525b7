//go:build !unix

package discovery

import "net"

// enableBroadcast is a no-op on non-unix platforms; net.ListenUDP's
// default socket options are sufficient there.
func enableBroadcast(conn *net.UDPConn) error {
	return nil
}
