package config

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"

	"github.com/simult/webdiag/pkg/resolver"
	"github.com/simult/webdiag/pkg/server"
)

// Config stores configuration
type Config struct {
	Listen struct {
		Address string
		Port    int
	}
	Server struct {
		Name           string
		MaxConns       int           `yaml:"maxConns"`
		BufferSize     int           `yaml:"bufferSize"`
		MaxHeaderBytes int           `yaml:"maxHeaderBytes"`
		IdleTimeout    time.Duration `yaml:"idleTimeout"`
		TickInterval   time.Duration `yaml:"tickInterval"`
		WriteTimeout   time.Duration `yaml:"writeTimeout"`
	}
	Resolver struct {
		Timeout     time.Duration
		CacheTTL    time.Duration `yaml:"cacheTTL"`
		NegativeTTL time.Duration `yaml:"negativeTTL"`
	}
	Metrics struct {
		Address   string
		Namespace string
	}
}

const (
	DefaultPort      = 1337
	DefaultNamespace = "webdiag"
)

// LoadFrom loads configuration from reader, decodes and returns as Config type
func LoadFrom(r io.Reader) (cfg *Config, err error) {
	cfg = &Config{}
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	err = d.Decode(cfg)
	if err != nil && err != io.EOF {
		err = errors.Wrap(err, "yaml decode error")
		return nil, err
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile takes yaml file as input, decodes and returns as Config type
func LoadFromFile(fileName string) (cfg *Config, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		err = errors.Wrapf(err, "file %q open error", fileName)
		return
	}
	defer f.Close()
	return LoadFrom(f)
}

// Default returns the configuration used when no file is given.
func Default() (cfg *Config) {
	cfg = &Config{}
	cfg.Listen.Port = DefaultPort
	return
}

var (
	nameRgx *regexp.Regexp = regexp.MustCompile(`^[a-zA-Z_\-]([a-zA-Z0-9_\-])*$`)
)

// Validate checks value ranges. Zero values are allowed and mean "use the default".
func (cfg *Config) Validate() error {
	if cfg.Listen.Port < 0 || cfg.Listen.Port > 65535 {
		return errors.Errorf("listen.port %d out of range", cfg.Listen.Port)
	}
	if cfg.Server.Name != "" && !nameRgx.MatchString(cfg.Server.Name) {
		return errors.Errorf("server.name %q is not a valid name", cfg.Server.Name)
	}
	if cfg.Server.MaxConns < 0 {
		return errors.Errorf("server.maxConns %d is negative", cfg.Server.MaxConns)
	}
	if cfg.Server.BufferSize < 0 || cfg.Server.BufferSize > server.DefaultBufferSize {
		return errors.Errorf("server.bufferSize %d out of range", cfg.Server.BufferSize)
	}
	if cfg.Server.MaxHeaderBytes < 0 {
		return errors.Errorf("server.maxHeaderBytes %d is negative", cfg.Server.MaxHeaderBytes)
	}
	for key, d := range map[string]time.Duration{
		"server.idleTimeout":   cfg.Server.IdleTimeout,
		"server.tickInterval":  cfg.Server.TickInterval,
		"server.writeTimeout":  cfg.Server.WriteTimeout,
		"resolver.timeout":     cfg.Resolver.Timeout,
		"resolver.cacheTTL":    cfg.Resolver.CacheTTL,
		"resolver.negativeTTL": cfg.Resolver.NegativeTTL,
	} {
		if d < 0 {
			return errors.Errorf("%s %v is negative", key, d)
		}
	}
	if cfg.Metrics.Namespace != "" && !nameRgx.MatchString(cfg.Metrics.Namespace) {
		return errors.Errorf("metrics.namespace %q is not a valid name", cfg.Metrics.Namespace)
	}
	return nil
}

// Port returns the listen port, DefaultPort if unset.
func (cfg *Config) Port() int {
	if cfg.Listen.Port == 0 {
		return DefaultPort
	}
	return cfg.Listen.Port
}

// ListenAddress returns the host:port the server listens on.
func (cfg *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", cfg.Listen.Address, cfg.Port())
}

// MetricsNamespace returns the prometheus namespace, DefaultNamespace if unset.
func (cfg *Config) MetricsNamespace() string {
	if cfg.Metrics.Namespace == "" {
		return DefaultNamespace
	}
	return cfg.Metrics.Namespace
}

// ResolverOptions converts the resolver section.
func (cfg *Config) ResolverOptions() (opts resolver.Options) {
	opts.Timeout = cfg.Resolver.Timeout
	opts.CacheTTL = cfg.Resolver.CacheTTL
	opts.NegativeTTL = cfg.Resolver.NegativeTTL
	return
}

// ServerOptions converts the server section. The resolver timeout also bounds the server's wait
// for each answer.
func (cfg *Config) ServerOptions() (opts server.Options) {
	opts.Name = cfg.Server.Name
	opts.MaxConns = cfg.Server.MaxConns
	opts.BufferSize = cfg.Server.BufferSize
	opts.MaxHeaderBytes = cfg.Server.MaxHeaderBytes
	opts.IdleTimeout = cfg.Server.IdleTimeout
	opts.TickInterval = cfg.Server.TickInterval
	opts.WriteTimeout = cfg.Server.WriteTimeout
	opts.ResolveTimeout = cfg.Resolver.Timeout
	return
}
