/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opengcd/gcd/pkg/api"
	"github.com/opengcd/gcd/pkg/catalog"
	"github.com/opengcd/gcd/pkg/config"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP inspection API server",
	Long: `Start the HTTP API for inspecting GCD files. Upload a file to
/api/v1/inspect or /api/v1/validate, or store its summary in the catalog
via /api/v1/catalog. Prometheus metrics are served on /metrics.

Examples:
  gcd serve --port=8080
  gcd serve --config=gcd.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			loaded, err := config.LoadConfig(path)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("catalog-dir") {
			cfg.CatalogDir, _ = cmd.Flags().GetString("catalog-dir")
		}

		cat, err := catalog.Open(cfg.CatalogDir)
		if err != nil {
			return fmt.Errorf("open catalog %s: %w", cfg.CatalogDir, err)
		}
		defer cat.Close()

		return api.StartServer(cat, api.ServerConfig{
			Port: cfg.Port,
			Bind: cfg.Bind,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("config", "", "Path to a yaml config file")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("catalog-dir", "./catalog", "Catalog database directory")
}
