/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/usersvc/apiserver/config"
	"github.com/usersvc/apiserver/internal/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "usersvc",
	Short: "Users CRUD service",
	Long: `usersvc serves a JSON API for creating, reading, updating and
deleting user records, and ships the tooling to migrate its database,
export snapshots and follow change events.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration and initializes the global logger from it.
func loadConfig() config.Config {
	cfg, err := config.Load()
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring config file")
	}
	return cfg
}
