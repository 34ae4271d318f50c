/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/usersvc/apiserver/internal/db"
	"github.com/usersvc/apiserver/internal/storage"
	"github.com/usersvc/apiserver/internal/store"
)

var exportKey string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload a JSON snapshot of all users to object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		ctx := cmd.Context()

		conn, dialect, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		objects, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer objects.Close()

		exporter := storage.NewExporter(store.NewUserRepository(conn, dialect), objects)
		result, err := exporter.Export(ctx, exportKey)
		if err != nil {
			return err
		}

		log.Info().
			Str("bucket", result.Bucket).
			Str("key", result.Key).
			Int("users", result.Count).
			Int("bytes", result.Bytes).
			Msg("snapshot exported")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportKey, "key", "", "object key (default users-<UTC timestamp>.json)")
}
