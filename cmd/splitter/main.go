package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotelmap/internal/adapters/observability"
	"hotelmap/internal/imagesplit"
	"hotelmap/internal/shared"
)

func main() {
	opts := imagesplit.Defaults
	cmd := &cobra.Command{
		Use:           "splitter <image> [output-dir]",
		Short:         "Split a very tall screenshot into overlapping parts",
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := shared.Load()
			log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

			outDir := "output"
			if len(args) > 1 {
				outDir = args[1]
			}
			paths, err := imagesplit.SplitFile(args[0], outDir, opts)
			if err != nil {
				return err
			}
			if len(paths) > 0 {
				log.Info().Int("parts", len(paths)).Str("dir", outDir).Msg("split done")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.MaxHeight, "max-height", opts.MaxHeight, "leave images at or below this height whole")
	cmd.Flags().IntVar(&opts.PartHeight, "part-height", opts.PartHeight, "target height of each part")
	cmd.Flags().IntVar(&opts.SearchRange, "search", opts.SearchRange, "rows searched either side of each target cut")
	cmd.Flags().IntVar(&opts.Overlap, "overlap", opts.Overlap, "rows repeated across each cut")

	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("splitter failed")
		os.Exit(1)
	}
}
