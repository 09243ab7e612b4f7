package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pinchtab/todobench/internal/runner"
	"github.com/pinchtab/todobench/internal/todomvc"
)

const shutdownGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bundled TodoMVC page and run suites over HTTP",
	Long: `Starts an HTTP server with the bundled TodoMVC app under /app/, a /runs
API that launches suite runs in the background, and prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.URL == "" {
			cfg.URL = selfAppURL(cfg.Listen)
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		var driver Driver
		if sim, _ := cmd.Flags().GetBool("simulate"); sim {
			driver = simDriver{}
		} else {
			cd, err := newChromeDriver(cfg)
			if err != nil {
				return err
			}
			cd.opts.Logger = logger
			driver = cd
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		orch := NewOrchestrator(driver, cfg, runner.NewMetrics(reg), logger)
		defer orch.Shutdown()

		srv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           newServer(orch, reg),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", srv.Addr, "default_url", cfg.URL)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
			logger.Info("shutting down")
			return shutdown(srv, logger)
		}
	},
}

// newServer routes the app, the run API and the metrics endpoint.
func newServer(orch *Orchestrator, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResp(w, 200, map[string]string{"status": "ok", "version": version})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	todomvc.Mount(r, "/app")
	orch.RegisterHandlers(r)
	return r
}

func shutdown(srv *http.Server, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown did not complete", "grace", shutdownGrace, "err", err)
		return srv.Close()
	}
	logger.Info("server stopped")
	return nil
}

// selfAppURL is the bundled app's URL on this server.
func selfAppURL(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "http://127.0.0.1" + listen + "/app/"
	}
	return "http://" + listen + "/app/"
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "listen address (default :9867)")
	serveCmd.Flags().String("url", "", "default target for runs (default this server's /app/)")
	serveCmd.Flags().Bool("simulate", false, "run against in-memory documents instead of Chrome")
	addSuiteFlags(serveCmd)
	addBrowserFlags(serveCmd)
}
