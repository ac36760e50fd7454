package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/arhyth/ledgerxgo"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// optional local overrides, ignored when absent
	_ = godotenv.Load()

	cfp := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()

	var cfg ledgerxgo.Config
	cfgfl, err := os.Open(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening config file")
	}
	if err = yaml.NewDecoder(cfgfl).Decode(&cfg); err != nil {
		logger.Fatal().Err(err).Msg("error decoding config file")
	}
	cfgfl.Close()
	if p := os.Getenv("LEDGER_SNAPSHOT_PATH"); p != "" {
		cfg.Snapshot.Path = p
	}
	if a := os.Getenv("LEDGER_ADDR"); a != "" {
		cfg.Server.Addr = a
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":3000"
	}
	if cfg.Limits.InFlight <= 0 {
		cfg.Limits.InFlight = 64
	}
	if cfg.Limits.AcquireTimeoutMS <= 0 {
		cfg.Limits.AcquireTimeoutMS = 100
	}

	ldgr, err := ledgerxgo.Load(cfg.Snapshot.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Snapshot.Path).Msg("error loading snapshot")
	}

	mc := ledgerxgo.NewMetricsCollector()
	var svc ledgerxgo.Service = ldgr
	for _, mw := range []ledgerxgo.Middleware{
		ledgerxgo.NewInstrumentMiddleware(mc),
		ledgerxgo.NewCircuitBreakMiddleware(ledgerxgo.NewServiceBreaker()),
		ledgerxgo.NewLimitMiddleware(
			ledgerxgo.NewServiceLimits(cfg.Limits.InFlight),
			time.Duration(cfg.Limits.AcquireTimeoutMS)*time.Millisecond,
		),
		ledgerxgo.NewValidationMiddleware(),
	} {
		svc = mw(svc)
	}

	root := chi.NewMux()
	root.Mount("/", ledgerxgo.NewHTTPHandler(svc, &logger))
	root.Method(http.MethodGet, "/metrics", mc.Handler())

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: root,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("error serving HTTP")
		}
	}()
	logger.Info().Str("addr", cfg.Server.Addr).Msg("listening")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("error shutting down HTTP server")
	}
	if err := ldgr.Save(cfg.Snapshot.Path); err != nil {
		logger.Error().Err(err).Str("path", cfg.Snapshot.Path).Msg("error saving snapshot")
		os.Exit(1)
	}
	logger.Info().Str("path", cfg.Snapshot.Path).Msg("snapshot saved")
}
