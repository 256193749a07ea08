package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
)

type stubResolver struct{}

func (stubResolver) Resolve(ctx context.Context, host, port string) (string, error) {
	if host == "example.com" {
		return "192.0.2.1", nil
	}
	return "", errors.New("unresolved")
}

// prefetchResolver records Prefetch calls on top of stubResolver.
type prefetchResolver struct {
	stubResolver
	mu      sync.Mutex
	fetched []string
}

func (r *prefetchResolver) Prefetch(host, port string) {
	r.mu.Lock()
	r.fetched = append(r.fetched, net.JoinHostPort(host, port))
	r.mu.Unlock()
}

func (r *prefetchResolver) Fetched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fetched...)
}

func startServer(t *testing.T, opts Options) (addr string) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	if opts.Resolver == nil {
		opts.Resolver = stubResolver{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 5 * time.Millisecond
	}
	s := New(opts)
	ctx, ctxCancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ctx, lis)
	}()
	t.Cleanup(func() {
		ctxCancel()
		if err := <-errCh; err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	})
	return lis.Addr().String()
}

type client struct {
	t    *testing.T
	conn net.Conn
	br   *bufio.Reader
}

func dial(t *testing.T, addr string) *client {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn, br: bufio.NewReader(conn)}
}

func (c *client) send(s string) {
	c.t.Helper()
	if _, err := io.WriteString(c.conn, s); err != nil {
		c.t.Fatalf("write error: %v", err)
	}
}

func (c *client) response() (resp *http.Response, body string) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	resp, err := http.ReadResponse(c.br, nil)
	if err != nil {
		c.t.Fatalf("read response error: %v", err)
	}
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		c.t.Fatalf("read body error: %v", err)
	}
	if resp.StatusCode != 200 {
		c.t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html; charset=UTF-8" {
		c.t.Errorf("Content-Type = %q", ct)
	}
	return resp, string(b)
}

// closed reports whether the server closed the connection without sending anything more.
func (c *client) closed(wait time.Duration) bool {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(wait))
	b, err := io.ReadAll(c.br)
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return false
	}
	if len(b) > 0 {
		c.t.Errorf("unexpected bytes before close: %q", b)
	}
	return true
}

// silent reports whether nothing arrives within wait.
func (c *client) silent(wait time.Duration) bool {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(wait))
	_, err := c.br.Peek(1)
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

func TestServer_KeepAliveHTTP11(t *testing.T) {
	addr := startServer(t, Options{})
	c := dial(t, addr)

	c.send("GET /first HTTP/1.1\r\nHost: example.com\r\n\r\n")
	resp, body := c.response()
	if v := resp.Header.Get("Connection"); v != "keep-alive" {
		t.Errorf("Connection = %q, want keep-alive", v)
	}
	if !strings.Contains(body, "HOSTIP = example.com (192.0.2.1)") {
		t.Errorf("body = %q, want resolved host", body)
	}
	if !strings.Contains(body, "PATH   = /first") {
		t.Errorf("body = %q, want path /first", body)
	}

	c.send("GET /second HTTP/1.1\r\nHost: example.com:8080\r\n\r\n")
	_, body = c.response()
	if !strings.Contains(body, "PATH   = /second") || !strings.Contains(body, "PORT   = 8080") {
		t.Errorf("body = %q, want path /second port 8080", body)
	}
	if strings.Contains(body, "/first") {
		t.Errorf("body = %q, echoes previous request", body)
	}
}

func TestServer_HTTP10Closes(t *testing.T) {
	addr := startServer(t, Options{})
	c := dial(t, addr)

	c.send("GET / HTTP/1.0\r\nHost: example.com\r\n\r\n")
	resp, _ := c.response()
	if !resp.Close {
		t.Errorf("response Close = false, want Connection: close")
	}
	if !c.closed(2 * time.Second) {
		t.Errorf("connection not closed after HTTP/1.0 response")
	}
}

func TestServer_HTTP10KeepAlive(t *testing.T) {
	addr := startServer(t, Options{})
	c := dial(t, addr)

	c.send("GET / HTTP/1.0\r\nConnection: Keep-Alive\r\n\r\n")
	c.response()
	c.send("GET / HTTP/1.0\r\n\r\n")
	c.response()
	if !c.closed(2 * time.Second) {
		t.Errorf("connection not closed after second HTTP/1.0 response")
	}
}

func TestServer_ConnectionClose(t *testing.T) {
	addr := startServer(t, Options{})
	c := dial(t, addr)

	c.send("GET / HTTP/1.1\r\nconnection: CLOSE\r\n\r\n")
	resp, _ := c.response()
	if !resp.Close {
		t.Errorf("response Close = false, want Connection: close")
	}
	if !c.closed(2 * time.Second) {
		t.Errorf("connection not closed after Connection: close")
	}
}

func TestServer_BodyAcrossReads(t *testing.T) {
	addr := startServer(t, Options{})
	c := dial(t, addr)

	c.send("POST /upload HTTP/1.1\r\nHost: example.com\r\nContent-Length: 5\r\n\r\nab")
	if !c.silent(100 * time.Millisecond) {
		t.Fatalf("response sent before body was complete")
	}
	c.send("cde")
	_, body := c.response()
	if !strings.Contains(body, "\r\n\r\nabcde</pre>") {
		t.Errorf("body = %q, want echoed request body", body)
	}
	if !c.silent(100 * time.Millisecond) {
		t.Errorf("more than one response for one request")
	}
}

func TestServer_Pipelined(t *testing.T) {
	addr := startServer(t, Options{})
	c := dial(t, addr)

	c.send("POST /a HTTP/1.1\r\nContent-Length: 3\r\n\r\nxyzGET /b HTTP/1.1\r\n\r\n")
	_, body := c.response()
	if !strings.Contains(body, "PATH   = /a") || strings.Contains(body, "GET /b") {
		t.Errorf("first body = %q", body)
	}
	_, body = c.response()
	if !strings.Contains(body, "PATH   = /b") {
		t.Errorf("second body = %q", body)
	}
}

func TestServer_UnresolvedHost(t *testing.T) {
	addr := startServer(t, Options{})
	c := dial(t, addr)

	c.send("GET http://nowhere.test:81/x HTTP/1.1\r\n\r\n")
	_, body := c.response()
	if !strings.Contains(body, "HOSTIP = nowhere.test (failed to resolve IP)") {
		t.Errorf("body = %q, want resolver failure", body)
	}
	if !strings.Contains(body, "PORT   = 81") {
		t.Errorf("body = %q, want port 81", body)
	}
}

func TestServer_OversizeCloses(t *testing.T) {
	addr := startServer(t, Options{})
	c := dial(t, addr)

	c.send("POST / HTTP/1.1\r\nContent-Length: 70000\r\n\r\n")
	if !c.closed(2 * time.Second) {
		t.Errorf("connection not closed for oversize request")
	}
}

func TestServer_ParseErrorCloses(t *testing.T) {
	addr := startServer(t, Options{})
	c := dial(t, addr)

	c.send("GET / HTTP/1.1\r\nBad header\r\n\r\n")
	if !c.closed(2 * time.Second) {
		t.Errorf("connection not closed for malformed header")
	}
}

func TestServer_HeaderTooLargeCloses(t *testing.T) {
	addr := startServer(t, Options{MaxHeaderBytes: 256})
	c := dial(t, addr)

	c.send("GET / HTTP/1.1\r\nX-Long: " + strings.Repeat("a", 300))
	if !c.closed(2 * time.Second) {
		t.Errorf("connection not closed for unterminated header")
	}
}

func TestServer_IdleTimeout(t *testing.T) {
	addr := startServer(t, Options{IdleTimeout: 200 * time.Millisecond})
	c := dial(t, addr)

	start := time.Now()
	if !c.closed(3 * time.Second) {
		t.Fatalf("idle connection not evicted")
	}
	if d := time.Since(start); d < 150*time.Millisecond {
		t.Errorf("evicted after %v, want at least the idle timeout", d)
	}
}

func TestServer_IntermittentNotEvicted(t *testing.T) {
	addr := startServer(t, Options{IdleTimeout: 300 * time.Millisecond})
	c := dial(t, addr)

	req := "GET /slow HTTP/1.1\r\nHost: example.com\r\nX-Pad: 0123456789\r\n\r\n"
	for i := 0; i < len(req); i += 8 {
		j := i + 8
		if j > len(req) {
			j = len(req)
		}
		c.send(req[i:j])
		time.Sleep(100 * time.Millisecond)
	}
	_, body := c.response()
	if !strings.Contains(body, "PATH   = /slow") {
		t.Errorf("body = %q", body)
	}
}

func TestServer_Capacity(t *testing.T) {
	addr := startServer(t, Options{MaxConns: 2})

	c1 := dial(t, addr)
	c1.send("GET /1 HTTP/1.1\r\n\r\n")
	c1.response()
	c2 := dial(t, addr)
	c2.send("GET /2 HTTP/1.1\r\n\r\n")
	c2.response()

	c3 := dial(t, addr)
	if !c3.closed(2 * time.Second) {
		t.Fatalf("connection over capacity not rejected")
	}

	c1.send("GET /1 HTTP/1.1\r\n\r\n")
	c1.response()
	c2.send("GET /2 HTTP/1.1\r\n\r\n")
	c2.response()

	c1.send("GET / HTTP/1.1\r\nConnection: close\r\n\r\n")
	c1.response()
	if !c1.closed(2 * time.Second) {
		t.Fatalf("connection not closed after Connection: close")
	}
	time.Sleep(50 * time.Millisecond)
	c4 := dial(t, addr)
	c4.send("GET /4 HTTP/1.1\r\n\r\n")
	c4.response()
}

func TestServer_PrefetchBeforeDispatch(t *testing.T) {
	r := &prefetchResolver{}
	addr := startServer(t, Options{Resolver: r})
	c := dial(t, addr)

	c.send("POST /upload HTTP/1.1\r\nHost: example.com\r\nContent-Length: 5\r\n\r\nab")
	if !c.silent(100 * time.Millisecond) {
		t.Fatalf("response sent before body was complete")
	}
	if got := r.Fetched(); len(got) != 1 || got[0] != "example.com:80" {
		t.Fatalf("Prefetch calls before dispatch = %q, want [example.com:80]", got)
	}

	c.send("cde")
	_, body := c.response()
	if !strings.Contains(body, "HOSTIP = example.com (192.0.2.1)") {
		t.Errorf("body = %q", body)
	}
	if got := r.Fetched(); len(got) != 1 {
		t.Errorf("Prefetch calls after dispatch = %q, want one", got)
	}
}

func TestServer_CompleteRequestNotPrefetched(t *testing.T) {
	r := &prefetchResolver{}
	addr := startServer(t, Options{Resolver: r})
	c := dial(t, addr)

	c.send("GET / HTTP/1.1\r\nHost: example.com\r\n\r\n")
	c.response()
	if got := r.Fetched(); len(got) != 0 {
		t.Errorf("Prefetch calls = %q, want none", got)
	}
}
