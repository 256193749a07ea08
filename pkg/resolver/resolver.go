// Package resolver resolves host names to a single textual IP with a strict per-lookup timeout
// and a cache of recent answers.
package resolver

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// ErrUnresolved is returned when a host has no usable address.
var ErrUnresolved = errors.New("failed to resolve IP")

// Options holds Resolver options
type Options struct {
	Timeout      time.Duration
	CacheTTL     time.Duration
	NegativeTTL  time.Duration
	LookupIPAddr func(ctx context.Context, host string) ([]net.IPAddr, error)
}

// CopyFrom sets the underlying Options by given Options and fills defaults
func (o *Options) CopyFrom(src *Options) {
	*o = *src
	if o.Timeout <= 0 {
		o.Timeout = 500 * time.Millisecond
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 1 * time.Minute
	}
	if o.NegativeTTL <= 0 {
		o.NegativeTTL = 10 * time.Second
	}
	if o.LookupIPAddr == nil {
		o.LookupIPAddr = net.DefaultResolver.LookupIPAddr
	}
}

type entry struct {
	ip      string
	expires time.Time
}

// Resolver is safe for concurrent use.
type Resolver struct {
	opts     Options
	cache    *xsync.MapOf[string, entry]
	inflight *xsync.MapOf[string, struct{}]
	now      func() time.Time
}

// New creates a new Resolver by given options
func New(opts Options) (r *Resolver) {
	r = &Resolver{
		cache:    xsync.NewMapOf[string, entry](),
		inflight: xsync.NewMapOf[string, struct{}](),
		now:      time.Now,
	}
	r.opts.CopyFrom(&opts)
	return
}

// Resolve returns the IP of host. IPv4 addresses are preferred. The port does not take part in
// the lookup. The lookup never outlives the configured timeout, whatever ctx allows.
func (r *Resolver) Resolve(ctx context.Context, host, port string) (ip string, err error) {
	if host == "" {
		promLookupsTotal.WithLabelValues("fail").Inc()
		return "", ErrUnresolved
	}
	if addr := net.ParseIP(host); addr != nil {
		return addr.String(), nil
	}
	if e, ok := r.cache.Load(host); ok && r.now().Before(e.expires) {
		promLookupsTotal.WithLabelValues("hit").Inc()
		if e.ip == "" {
			return "", ErrUnresolved
		}
		return e.ip, nil
	}
	promLookupsTotal.WithLabelValues("miss").Inc()
	return r.lookup(ctx, host)
}

// Prefetch starts a background lookup of host unless a fresh answer is cached or a lookup is
// already running.
func (r *Resolver) Prefetch(host, port string) {
	if host == "" || net.ParseIP(host) != nil {
		return
	}
	if e, ok := r.cache.Load(host); ok && r.now().Before(e.expires) {
		return
	}
	if _, loaded := r.inflight.LoadOrStore(host, struct{}{}); loaded {
		return
	}
	go func() {
		defer r.inflight.Delete(host)
		if ip, err := r.lookup(context.Background(), host); err == nil {
			debugLogger.Printf("prefetched %q: %s", host, ip)
		}
	}()
}

func (r *Resolver) lookup(ctx context.Context, host string) (ip string, err error) {
	ctx, ctxCancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer ctxCancel()
	addrs, err := r.opts.LookupIPAddr(ctx, host)
	if err != nil {
		result := "fail"
		if ctx.Err() == context.DeadlineExceeded {
			result = "timeout"
		}
		promLookupsTotal.WithLabelValues(result).Inc()
		if result == "timeout" {
			warningLogger.Printf("lookup %q timed out after %v", host, r.opts.Timeout)
		} else {
			debugLogger.Printf("lookup %q failed: %v", host, err)
		}
		r.cache.Store(host, entry{expires: r.now().Add(r.opts.NegativeTTL)})
		return "", errors.WithMessagef(ErrUnresolved, "lookup %q: %v", host, err)
	}
	ip = pickIP(addrs)
	if ip == "" {
		promLookupsTotal.WithLabelValues("fail").Inc()
		r.cache.Store(host, entry{expires: r.now().Add(r.opts.NegativeTTL)})
		return "", ErrUnresolved
	}
	r.cache.Store(host, entry{ip: ip, expires: r.now().Add(r.opts.CacheTTL)})
	return ip, nil
}

func pickIP(addrs []net.IPAddr) string {
	for _, a := range addrs {
		if a.IP.To4() != nil {
			return a.IP.String()
		}
	}
	for _, a := range addrs {
		if a.IP != nil {
			return a.IP.String()
		}
	}
	return ""
}
