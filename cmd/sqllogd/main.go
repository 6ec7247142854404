// FILE: lixenwraith/sqllog/cmd/sqllogd/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/panjf2000/gnet/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/sqllog"
	"github.com/lixenwraith/sqllog/compat"
)

// overrideFlags collects repeated -o key=value arguments
type overrideFlags []string

func (o *overrideFlags) String() string { return strings.Join(*o, ",") }

func (o *overrideFlags) Set(v string) error {
	*o = append(*o, v)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sqllogd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "sqllog.toml", "path to TOML config file (missing file uses defaults)")
	var overrides overrideFlags
	flag.Var(&overrides, "o", "config override as key=value, repeatable")
	flag.Parse()

	cfg, err := sqllog.NewConfigFromFile(*configPath)
	if err != nil {
		return err
	}
	if len(overrides) > 0 {
		if cfg, err = cfg.ApplyOverride(overrides...); err != nil {
			return err
		}
	}

	level, err := sqllog.Level(cfg.DiagLevel)
	if err != nil {
		return err
	}
	diag := sqllog.NewWriterDiagnostics(os.Stderr, level)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := sqllog.NewMetrics(reg)
	if err != nil {
		return err
	}

	registry, err := sqllog.NewRegistry(cfg, sqllog.WithDiagnostics(diag), sqllog.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer func() {
		if err := registry.Close(); err != nil {
			diag.Error("registry close failed", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := registry.StartHeartbeat(ctx, time.Duration(cfg.HeartbeatIntervalS)*time.Second); err != nil {
		return err
	}

	errCh := make(chan error, 2)

	ingest := compat.NewHTTPIngest(registry,
		compat.WithHTTPDiagnostics(diag),
		compat.WithMetricsGatherer(reg),
	)
	server := &fasthttp.Server{
		Handler: ingest.Handler,
		Name:    "sqllogd",
		Logger:  compat.NewFastHTTPAdapter(diag),
	}
	go func() {
		diag.Info("http ingest listening", "addr", cfg.HTTPListen)
		errCh <- server.ListenAndServe(cfg.HTTPListen)
	}()

	var tcp *compat.TCPIngest
	if cfg.TCPListen != "" {
		tcp = compat.NewTCPIngest(registry, diag)
		go func() {
			diag.Info("tcp ingest listening", "addr", cfg.TCPListen)
			errCh <- gnet.Run(tcp, "tcp://"+cfg.TCPListen,
				gnet.WithMulticore(true),
				gnet.WithLogger(compat.NewGnetAdapter(diag)),
			)
		}()
	}

	select {
	case <-ctx.Done():
		diag.Info("shutdown signal received")
	case err = <-errCh:
		diag.Error("listener stopped", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		diag.Warn("http shutdown failed", "error", err)
	}
	if tcp != nil {
		if err := tcp.Stop(shutdownCtx); err != nil {
			diag.Warn("tcp shutdown failed", "error", err)
		}
	}
	return err
}
