// Package cmd - serve command
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"import-cost/api"
	"import-cost/core/session"
	"import-cost/internal/config"
	"import-cost/internal/logging"
	"import-cost/internal/metrics"
)

var (
	serveAddr   string
	serveSample bool
)

// serveCmd runs the JSON API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculator as a JSON API",
	Long: `Serve one calculator session over HTTP. Products and rates are edited
with /products and /config; /result and /trace return the latest figures;
POST /estimate calculates a quote without touching the session.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveSample, "sample", false, "start the session with the sample products")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := logging.Named("api")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	defaults := cfg.Calculator.Configuration()
	p := presenter(cfg)
	sess, err := session.New(defaults,
		session.WithLogger(logging.Named("session")),
		session.WithMetrics(metrics.NewQuoteMetrics(registry)),
		session.WithPresenter(p))
	if err != nil {
		return err
	}
	if serveSample {
		if _, err := sess.SeedExamples(); err != nil {
			return err
		}
	}

	srv := api.NewServer(api.Options{
		Version:      Version,
		Session:      sess,
		Defaults:     defaults,
		Presenter:    p,
		Logger:       logger,
		Registry:     registry,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,

		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("session ready", zap.String("session_id", sess.ID()), zap.String("addr", addr))
	return srv.Run(ctx, addr)
}
