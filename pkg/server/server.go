// Package server implements a single-loop HTTP/1.1 front end. One goroutine owns a fixed-capacity
// connection table; every tick it admits pending connections, polls each live connection once with
// a non-blocking read, frames and parses requests, answers complete ones and evicts connections
// that timed out or violated the framing rules.
package server

import (
	"context"
	"net"
	"strconv"
	"time"

	accepter "github.com/orkunkaraduman/go-accepter"
	"github.com/pkg/errors"

	"github.com/simult/webdiag/pkg/httphdr"
)

// Server serves connections handed over by its accepter.
type Server struct {
	opts    Options
	tbl     *connTable
	pending chan *Conn
	done    chan struct{}
	metrics *serverMetrics
}

// New creates a new Server by given options
func New(opts Options) (s *Server) {
	s = &Server{}
	s.opts.CopyFrom(&opts)
	s.tbl = newConnTable(s.opts.MaxConns)
	s.pending = make(chan *Conn, s.opts.MaxConns)
	s.done = make(chan struct{})
	s.metrics = newServerMetrics(s.opts.Name)
	return
}

// GetOpts returns a copy of underlying Server's options
func (s *Server) GetOpts() (opts Options) {
	opts.CopyFrom(&s.opts)
	return
}

// Serve accepts connections on lis and runs the server loop until ctx is done. Every live
// connection is closed before Serve returns. A Server can serve only once.
func (s *Server) Serve(ctx context.Context, lis net.Listener) (err error) {
	accr := &accepter.Accepter{
		Handler: &accepterHandler{s: s},
	}
	accrErrCh := make(chan error, 1)
	go func() {
		accrErrCh <- accr.Serve(lis)
	}()
	defer func() {
		s.shutdown()
		accr.Close()
	}()

	infoLogger.Printf("server %q listening on %q", s.opts.Name, lis.Addr().String())

	tmr := time.NewTimer(s.opts.TickInterval)
	defer tmr.Stop()
	for {
		s.tick(time.Now())
		select {
		case <-ctx.Done():
			return nil
		case err = <-accrErrCh:
			if err == nil {
				err = errors.New("accepter stopped")
			}
			return errors.Wrapf(err, "server %q accept", s.opts.Name)
		case <-tmr.C:
			tmr.Reset(s.opts.TickInterval)
		}
	}
}

// tick admits pending connections, then services every occupied slot once, in slot order.
func (s *Server) tick(now time.Time) {
	s.admit(now)
	for slot, c := range s.tbl.slots {
		if c == nil {
			continue
		}
		if err := s.service(c, now); err != nil {
			s.closeConn(slot, err)
		}
	}
}

func (s *Server) admit(now time.Time) {
	for {
		select {
		case c := <-s.pending:
			s.register(c, now)
		default:
			return
		}
	}
}

func (s *Server) register(c *Conn, now time.Time) {
	if s.tbl.full() {
		warningLogger.Printf("REJECTED: %v: %v, max %d connections", c.nc.RemoteAddr(), errTableFull, s.opts.MaxConns)
		s.metrics.connectionsRejectedTotal.Inc()
		c.nc.Close()
		c.release()
		return
	}
	slot, _ := s.tbl.insert(c)
	c.alloc(s.opts.BufferSize)
	c.lastActivity = now
	s.metrics.connectionsAcceptedTotal.Inc()
	s.metrics.connectionsActive.Set(float64(s.tbl.len()))
	debugLogger.Printf("CONNECTED: slot=%2d %v", slot, c.nc.RemoteAddr())
}

// service performs one non-blocking read on c and dispatches a request if one is complete.
// A non-nil error means c must be closed.
func (s *Server) service(c *Conn, now time.Time) (err error) {
	if c.used < len(c.buf) {
		var n int
		n, err = readNonBlocking(c.nc, c.tail())
		if n > 0 {
			c.advance(n, now)
			s.metrics.readBytesTotal.Add(float64(n))
		} else if now.Sub(c.lastActivity) > s.opts.IdleTimeout {
			return errIdleTimeout
		}
	}
	if c.used == 0 {
		return nil
	}
	parsed := c.header != nil
	ready, err := c.frame(s.opts.MaxHeaderBytes)
	if err != nil {
		debugLogger.Printf("frame request from %v: %v", c.nc.RemoteAddr(), err)
		return err
	}
	if !ready {
		if !parsed && c.header != nil {
			s.prefetch(c.header)
		}
		return nil
	}
	return s.dispatch(c, now)
}

func (s *Server) prefetch(h *httphdr.Header) {
	pf, ok := s.opts.Resolver.(Prefetcher)
	if !ok {
		return
	}
	if host, port, _ := requestTarget(h); host != "" {
		pf.Prefetch(host, port)
	}
}

// dispatch answers the complete request buffered in c and applies the keep-alive decision.
func (s *Server) dispatch(c *Conn, now time.Time) (err error) {
	h := c.header
	host, port, path := requestTarget(h)
	infoLogger.Printf("REQUEST: %v %s %s %s", c.nc.RemoteAddr(), h.Method, h.Target, h.Version)

	ip := ""
	if host != "" {
		ctx, ctxCancel := context.WithTimeout(context.Background(), s.opts.ResolveTimeout)
		ip, err = s.opts.Resolver.Resolve(ctx, host, port)
		ctxCancel()
		if err != nil {
			debugLogger.Printf("resolve %q for %v: %v", host, c.nc.RemoteAddr(), err)
			ip = ""
		}
	}

	ka := keepAlive(h)
	resp := appendResponse(nil, s.opts.Render(c.request(), host, ip, port, path), ka)
	c.nc.SetWriteDeadline(now.Add(s.opts.WriteTimeout))
	n, err := c.nc.Write(resp)
	s.metrics.writeBytesTotal.Add(float64(n))
	s.metrics.requestsTotal.WithLabelValues(h.Method, h.Version, strconv.FormatBool(ka)).Inc()
	s.metrics.requestDurationSeconds.Observe(time.Since(c.started).Seconds())
	if err != nil {
		return wrapConnError("communication", errors.WithStack(err))
	}
	if !ka {
		return errNotKeepAlive
	}
	c.reset(now)
	return nil
}

// requestTarget returns the host, port and path a request is aimed at. Origin-form targets take
// host and port from the Host field.
func requestTarget(h *httphdr.Header) (host, port, path string) {
	host, port, path = h.Host(), h.Port(), h.Path()
	if host == "" {
		if v, ok := h.Field("Host"); ok {
			host, port, _ = httphdr.SplitTarget(v)
		}
	}
	return
}

func (s *Server) closeConn(slot int, err error) {
	c := s.tbl.remove(slot)
	if c == nil {
		return
	}
	debugLogger.Printf("CLOSED: slot=%2d %v: %v", slot, c.nc.RemoteAddr(), err)
	c.nc.Close()
	c.release()
	s.metrics.connectionsClosedTotal.WithLabelValues(closeReason(err)).Inc()
	s.metrics.connectionsActive.Set(float64(s.tbl.len()))
}

func (s *Server) shutdown() {
	for slot := range s.tbl.slots {
		s.closeConn(slot, errServerShutdown)
	}
	close(s.done)
	for {
		select {
		case c := <-s.pending:
			c.nc.Close()
			c.release()
		default:
			return
		}
	}
}
