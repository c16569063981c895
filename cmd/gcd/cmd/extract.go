/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opengcd/gcd/pkg/manifest"
	"github.com/opengcd/gcd/pkg/stream"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <file.gcd> <manifest.yaml>",
	Short: "Extract a GCD file into a yaml manifest and firmware blobs",
	Long: `Extract a GCD file into an editable yaml manifest. Firmware
payloads are written as .bin files next to the manifest; the manifest
entries point at them. 'gcd create' rebuilds the identical file.

Example:
  gcd extract GUPDATE.GCD gupdate.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		p, err := stream.NewParser(file, streamOptions(cmd)...)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		dir := filepath.Dir(args[1])
		m, err := manifest.Extract(p, dir)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if err := m.Save(args[1]); err != nil {
			return err
		}
		fmt.Printf("Extracted %d records to %s\n", len(m.Records), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
