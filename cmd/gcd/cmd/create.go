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

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create <manifest.yaml> <file.gcd>",
	Short: "Create a GCD file from a yaml manifest",
	Long: `Create a GCD file from a manifest produced by 'gcd extract'
(possibly edited). Firmware entries are read from the .bin files the
manifest references, relative to the manifest location.

Example:
  gcd create gupdate.yaml GUPDATE.GCD`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := manifest.Load(args[0])
		if err != nil {
			return err
		}

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()

		c, err := stream.NewComposer(out, streamOptions(cmd)...)
		if err != nil {
			return err
		}
		if err := manifest.Build(c, m, filepath.Dir(args[0])); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Printf("Wrote %d records (%d bytes) to %s\n", len(m.Records), c.Offset(), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
