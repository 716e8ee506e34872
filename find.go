package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"comedyFinderAPI/internal/config"
	"comedyFinderAPI/internal/logger"
	"comedyFinderAPI/services"
	"comedyFinderAPI/utils"
)

func findCmd() *cobra.Command {
	var (
		lat, lng float64
		mode     string
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Run one search and print the result as JSON",
		Example: `  comedyfinder find --lat 34.0522 --lng -118.2437
  comedyfinder find --lat 40.7128 --lng -74.0060 --mode events`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				return fmt.Errorf("both --lat and --lng are required")
			}
			if !utils.ValidCoordinates(lat, lng) {
				return fmt.Errorf("invalid coordinates %f,%f", lat, lng)
			}

			cfg := config.Load()
			if mode != "" {
				cfg.PipelineMode = config.NormaliseMode(mode)
			}
			if err := logger.Init(cfg.LogLevel); err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.comedy.FindComedy(cmd.Context(), lat, lng)
			if err != nil {
				return fmt.Errorf("%s (status %d)", services.PublicMessage(err), services.StatusCode(err))
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude of the search origin")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude of the search origin")
	cmd.Flags().StringVar(&mode, "mode", "", "pipeline mode: venues or events (defaults to PIPELINE_MODE)")
	return cmd
}
