package server

import (
	"context"
	"time"

	"github.com/simult/webdiag/pkg/diag"
	"github.com/simult/webdiag/pkg/resolver"
)

const (
	DefaultMaxConns       = 31
	DefaultBufferSize     = 65535
	DefaultMaxHeaderBytes = 16 * 1024
	DefaultIdleTimeout    = 30 * time.Second
	DefaultTickInterval   = 100 * time.Millisecond
	DefaultWriteTimeout   = 5 * time.Second
	DefaultResolveTimeout = 500 * time.Millisecond
)

// Resolver resolves the host of a dispatched request to a textual IP.
type Resolver interface {
	Resolve(ctx context.Context, host, port string) (ip string, err error)
}

// Prefetcher is implemented by resolvers that can start a lookup in the background.
type Prefetcher interface {
	Prefetch(host, port string)
}

// RenderFunc renders the response body for a dispatched request. raw holds exactly the request's
// header and body bytes; ip is empty if the host could not be resolved.
type RenderFunc func(raw []byte, host, ip, port, path string) string

// Options holds Server options. Zero values are replaced by defaults.
type Options struct {
	Name           string
	MaxConns       int
	BufferSize     int
	MaxHeaderBytes int
	IdleTimeout    time.Duration
	TickInterval   time.Duration
	WriteTimeout   time.Duration
	ResolveTimeout time.Duration
	Resolver       Resolver
	Render         RenderFunc
}

// CopyFrom sets the underlying Options by given Options and fills defaults
func (o *Options) CopyFrom(src *Options) {
	*o = *src
	if o.Name == "" {
		o.Name = "default"
	}
	if o.MaxConns <= 0 {
		o.MaxConns = DefaultMaxConns
	}
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}
	if o.MaxHeaderBytes <= 0 {
		o.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if o.MaxHeaderBytes > o.BufferSize {
		o.MaxHeaderBytes = o.BufferSize
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	if o.ResolveTimeout <= 0 {
		o.ResolveTimeout = DefaultResolveTimeout
	}
	if o.Resolver == nil {
		o.Resolver = resolver.New(resolver.Options{
			Timeout: o.ResolveTimeout,
		})
	}
	if o.Render == nil {
		o.Render = diag.Body
	}
}
