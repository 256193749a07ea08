package server

import (
	"context"
	"net"
	"time"
)

// accepterHandler hands accepted connections to the server loop. The accepter runs Serve in its
// own goroutine per connection; Serve parks there until the loop has closed the connection.
type accepterHandler struct {
	s *Server
}

func (ah *accepterHandler) Serve(ctx context.Context, conn net.Conn) {
	c := newConn(conn, time.Now())
	select {
	case ah.s.pending <- c:
	case <-ctx.Done():
		conn.Close()
		return
	case <-ah.s.done:
		conn.Close()
		return
	}
	select {
	case <-c.released:
	case <-ah.s.done:
		conn.Close()
	}
}
