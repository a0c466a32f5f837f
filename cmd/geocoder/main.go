package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotelmap/internal/adapters/baidu"
	"hotelmap/internal/adapters/observability"
	redisad "hotelmap/internal/adapters/redis"
	"hotelmap/internal/app"
	"hotelmap/internal/domain"
	"hotelmap/internal/shared"
)

const defaultOutput = "output/hotels.json"

func main() {
	cmd := &cobra.Command{
		Use:   "geocoder <input.csv> [output.json]",
		Short: "Resolve hotel names to coordinates with the Baidu Place API",
		Long: `geocoder reads a CSV with "name" and "city" columns, looks every hotel up
with a district-scoped place search and writes the matches as a JSON array
(default ` + defaultOutput + `).

Rows with an empty name or city are skipped and hotels the provider cannot
find are listed at the end; network, HTTP and provider errors stop the run
without writing output.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := defaultOutput
			if len(args) > 1 {
				out = args[1]
			}
			return run(cmd.Context(), args[0], out)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("geocoder failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, input, output string) error {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.RequireServerKey(); err != nil {
		return err
	}

	log.Info().
		Str("base", cfg.PlaceBase).
		Dur("delay", cfg.RequestDelay).
		Dur("timeout", cfg.RequestTimeout).
		Str("input", input).
		Str("output", output).
		Msg("geocoder starting")

	observability.Serve(ctx, cfg.MetricsAddr, observability.InitRegistry())

	client, err := baidu.New(cfg.PlaceBase, cfg.ServerKey, cfg.RequestTimeout, cfg.RequestDelay)
	if err != nil {
		return err
	}

	var places domain.PlaceSearcher = client
	if cfg.RedisAddr != "" {
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer cache.Close()
		if err := cache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("place cache unavailable, continuing without it")
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("place cache enabled")
			places = app.NewCachedSearcher(client, cache, cfg.CacheTTL)
		}
	}

	_, err = app.NewGeocodeService(places, cfg.InputEncoding).Geocode(ctx, input, output)
	return err
}
