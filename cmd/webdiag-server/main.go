package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/simult/webdiag/pkg/config"
	"github.com/simult/webdiag/pkg/logger"
	"github.com/simult/webdiag/pkg/resolver"
	"github.com/simult/webdiag/pkg/server"
	"github.com/simult/webdiag/pkg/version"
)

var (
	configFilename string
	metricsAddress string
	debug          bool
)

func loadConfig() (cfg *config.Config, ok bool) {
	if configFilename == "" {
		return config.Default(), true
	}
	infoLogger.Printf("loading configuration from %q", configFilename)
	cfg, err := config.LoadFromFile(configFilename)
	if err != nil {
		errorLogger.Printf("configuration load error: %v", err)
		return nil, false
	}
	return cfg, true
}

func parsePort(s string) (port int, ok bool) {
	port, err := strconv.Atoi(s)
	if err != nil || port <= 0 || port > 65535 {
		return 0, false
	}
	return port, true
}

func serveMetrics(ctx context.Context, wg *sync.WaitGroup, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		infoLogger.Printf("metrics listening on %q", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errorLogger.Printf("metrics server error: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
}

func main() {
	flag.StringVar(&configFilename, "c", "", "config file")
	flag.StringVar(&metricsAddress, "metrics", "", "prometheus metrics listen address")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	setLoggers(logger.Std(os.Stdout, debug))

	infoLogger.Printf("webdiag-server %s", version.String())

	if flag.NArg() > 1 {
		errorLogger.Printf("too many arguments: %q", flag.Args())
		os.Exit(2)
	}

	cfg, ok := loadConfig()
	if !ok {
		os.Exit(2)
	}
	if flag.NArg() == 1 {
		port, ok := parsePort(flag.Arg(0))
		if !ok {
			errorLogger.Printf("invalid port %q", flag.Arg(0))
			os.Exit(2)
		}
		cfg.Listen.Port = port
	}
	if metricsAddress == "" {
		metricsAddress = cfg.Metrics.Address
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	if metricsAddress != "" {
		namespace := cfg.MetricsNamespace()
		server.PromInitialize(namespace)
		resolver.PromInitialize(namespace)
		promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
		}, []string{"version", "build"}).WithLabelValues(version.Version(), version.Build()).Set(1)
		serveMetrics(ctx, &wg, metricsAddress)
	}

	opts := cfg.ServerOptions()
	opts.Resolver = resolver.New(cfg.ResolverOptions())
	srv := server.New(opts)

	lis, err := net.Listen("tcp", cfg.ListenAddress())
	if err != nil {
		errorLogger.Printf("listen error: %v", err)
		os.Exit(2)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		infoLogger.Printf("received %v, shutting down", sig)
		cancel()
	}()

	err = srv.Serve(ctx, lis)
	cancel()
	wg.Wait()
	if err != nil {
		errorLogger.Printf("server error: %v", err)
		os.Exit(1)
	}
	infoLogger.Print("server stopped")
}
