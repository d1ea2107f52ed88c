// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Probe the prediction service and expose Prometheus metrics",
	Long: `Monitor probes the service's health endpoint every --interval and
serves the probe results, along with process metrics, at /metrics on
--listen. Availability changes are printed as they happen. Stop with
Ctrl-C.`,
	RunE: runMonitor,
}

// prober is the part of session.Service the monitor loop needs.
type prober interface {
	Available(ctx context.Context) bool
}

func runMonitor(cmd *cobra.Command, args []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	listen, _ := cmd.Flags().GetString("listen")
	if interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %v", interval)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	reg := a.metrics.Registry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", listen, err)
	}
	srv := &http.Server{
		Handler:           metricsHandler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()
	fmt.Fprintf(cmd.ErrOrStderr(), "Serving metrics on http://%s/metrics\n", ln.Addr())

	monitorLoop(cmd.Context(), a.svc, interval, cmd.OutOrStdout(), a.logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

// monitorLoop probes immediately and then on every tick until ctx is
// done, printing a line whenever availability changes.
func monitorLoop(ctx context.Context, p prober, interval time.Duration, out io.Writer, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *bool
	probe := func() {
		up := p.Available(ctx)
		if ctx.Err() != nil {
			return
		}
		logger.Debug("health probe", "available", up)
		if last == nil || *last != up {
			state := "unavailable"
			if up {
				state = "available"
			}
			fmt.Fprintf(out, "%s %s\n", time.Now().Format(time.DateTime), state)
			last = &up
		}
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

func init() {
	monitorCmd.Flags().Duration("interval", 30*time.Second, "time between health probes")
	monitorCmd.Flags().String("listen", "127.0.0.1:9464", "address for the metrics endpoint")
	rootCmd.AddCommand(monitorCmd)
}
