//go:build !unix

package server

import (
	"net"
	"time"
)

// readNonBlocking performs at most one short read from conn. It returns errWouldBlock if nothing
// arrived within a millisecond.
func readNonBlocking(conn net.Conn, p []byte) (n int, err error) {
	if err = conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return 0, err
	}
	n, err = conn.Read(p)
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		err = errWouldBlock
	}
	return
}
