package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Reckless312/UBB-SE-2025-Team-Pepeja-sub001/internal/server"
)

func main() {
	host := flag.String("host", "", "address to listen on (empty for all interfaces)")
	metricsAddr := flag.String("metrics-addr", "", "metrics listen address (empty to disable)")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := server.DefaultConfig()
	cfg.Host = *host

	srv := server.New(cfg, logger)
	if err := srv.Start(); err != nil {
		logger.Error().Err(err).Msg("failed to start chat server")
		os.Exit(1)
	}

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		srv.Stop()
	case err := <-srv.Err():
		logger.Error().Err(err).Msg("chat room closed")
		srv.Stop()
		os.Exit(1)
	}
}
