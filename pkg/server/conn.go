package server

import (
	"bytes"
	"net"
	"strconv"
	"time"

	"github.com/simult/webdiag/pkg/httphdr"
)

var headerTerminator = []byte("\r\n\r\n")

// Conn is the per-connection state owned by the connection table.
type Conn struct {
	nc       net.Conn
	released chan struct{}

	buf      []byte
	used     int
	expected int
	header   *httphdr.Header

	lastActivity time.Time
	started      time.Time
}

func newConn(nc net.Conn, now time.Time) *Conn {
	return &Conn{
		nc:           nc,
		released:     make(chan struct{}),
		lastActivity: now,
	}
}

// alloc gives the connection its buffer once it owns a table slot.
func (c *Conn) alloc(size int) {
	c.buf = make([]byte, size)
}

// tail is the free part of the buffer.
func (c *Conn) tail() []byte {
	return c.buf[c.used:]
}

// advance accounts n bytes just written into tail.
func (c *Conn) advance(n int, now time.Time) {
	if n <= 0 {
		return
	}
	if c.used == 0 {
		c.started = now
	}
	c.used += n
	c.lastActivity = now
}

// frame parses the header once its terminator is buffered and reports whether a complete
// request is ready for dispatch.
func (c *Conn) frame(maxHeaderBytes int) (ready bool, err error) {
	if c.header == nil {
		idx := bytes.Index(c.buf[:c.used], headerTerminator)
		if idx < 0 {
			if c.used >= maxHeaderBytes {
				return false, errHeaderTooLarge
			}
			return false, nil
		}
		boundary := idx + len(headerTerminator)
		if boundary > maxHeaderBytes {
			return false, errHeaderTooLarge
		}
		var h *httphdr.Header
		h, err = httphdr.Parse(c.buf[:boundary])
		if err != nil {
			return false, wrapConnError("parse", err)
		}
		expected := boundary
		if s, ok := h.Field("Content-Length"); ok {
			var n uint64
			n, err = strconv.ParseUint(s, 10, 63)
			if err != nil {
				return false, errContentLength
			}
			if n > uint64(len(c.buf)-boundary) {
				return false, errOversize
			}
			expected += int(n)
		}
		c.header, c.expected = h, expected
	}
	return c.used >= c.expected, nil
}

// request returns the bytes of the request ready for dispatch.
func (c *Conn) request() []byte {
	return c.buf[:c.expected]
}

// reset drops the dispatched request and keeps any bytes that followed it.
func (c *Conn) reset(now time.Time) {
	n := copy(c.buf, c.buf[c.expected:c.used])
	c.used = n
	c.expected = 0
	c.header = nil
	c.lastActivity = now
	c.started = now
}

// release lets the accept goroutine that handed over the connection return.
func (c *Conn) release() {
	select {
	case <-c.released:
	default:
		close(c.released)
	}
}
