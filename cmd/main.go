package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hati/internal/common"
	"hati/internal/config"
	"hati/internal/engine"
	"hati/internal/host"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.Logging.Level).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	pair := common.TradingPair{Base: cfg.Pair.Base, Quote: cfg.Pair.Quote}
	eng := engine.New(pair)
	h := host.New(eng, cfg.Host.StatsInterval, cfg.Host.SnapshotDepth)

	log.Info().Stringer("pair", pair).Msg("matching engine running")

	// Block on the host until shutdown.
	if err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("host exited")
	}
	log.Info().Msg("matching engine stopped")
}
