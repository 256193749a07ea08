//go:build unix

package server

import (
	"net"
	"syscall"
	"time"
)

// readNonBlocking performs at most one read from conn without waiting for data. It returns
// errWouldBlock if nothing is available and n == 0, err == nil on EOF.
func readNonBlocking(conn net.Conn, p []byte) (n int, err error) {
	sconn, ok := conn.(syscall.Conn)
	if !ok {
		return readDeadline(conn, p)
	}
	rc, err := sconn.SyscallConn()
	if err != nil {
		return 0, err
	}
	rerr := rc.Read(func(fd uintptr) bool {
		n, err = syscall.Read(int(fd), p)
		return true
	})
	switch {
	case rerr != nil:
		return 0, rerr
	case err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || err == syscall.EINTR:
		return 0, errWouldBlock
	case err != nil:
		return 0, err
	case n < 0:
		return 0, errWouldBlock
	}
	return n, nil
}

// readDeadline emulates a non-blocking read for conns without a file descriptor.
func readDeadline(conn net.Conn, p []byte) (n int, err error) {
	if err = conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
		return 0, err
	}
	n, err = conn.Read(p)
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		err = errWouldBlock
	}
	return
}
