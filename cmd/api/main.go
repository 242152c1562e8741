package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:           "safefam-api",
		Short:         "SafeFam family health API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (default: ./config.yml)")

	root.AddCommand(newServeCmd(), newMigrateCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
