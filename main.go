package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"comedyFinderAPI/internal/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "comedyfinder",
		Short:         "Find the best comedy near a coordinate",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(findCmd())
	rootCmd.AddCommand(migrateCmd())

	err := rootCmd.ExecuteContext(context.Background())
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
