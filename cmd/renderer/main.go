package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotelmap/internal/adapters/observability"
	"hotelmap/internal/adapters/watch"
	"hotelmap/internal/app"
	"hotelmap/internal/shared"
)

func main() {
	var (
		templatePath string
		outputPath   string
		watchMode    bool
	)
	cmd := &cobra.Command{
		Use:           "renderer",
		Short:         "Render the map page with the browser-facing API key",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := shared.Load()
			log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

			if err := cfg.RequireBrowserKey(); err != nil {
				return err
			}
			if err := app.RenderMap(templatePath, outputPath, cfg.BrowserKey); err != nil {
				return err
			}
			if !watchMode {
				return nil
			}
			return watch.File(cmd.Context(), templatePath, func() {
				if err := app.RenderMap(templatePath, outputPath, cfg.BrowserKey); err != nil {
					log.Error().Err(err).Msg("re-render failed")
				}
			})
		},
	}
	cmd.Flags().StringVar(&templatePath, "template", "web/map_template.html", "HTML template containing "+app.BrowserKeyPlaceholder)
	cmd.Flags().StringVar(&outputPath, "out", "web/map.html", "rendered page")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "re-render whenever the template changes")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("renderer failed")
		stop()
		os.Exit(1)
	}
}
