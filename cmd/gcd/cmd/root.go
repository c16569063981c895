/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/binary"
	"os"

	"github.com/spf13/cobra"

	"github.com/opengcd/gcd/pkg/stream"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gcd",
	Short: "gcd - Garmin GCD firmware file tool",
	Long: `gcd reads, verifies, extracts, and creates Garmin GCD firmware
update files, and can serve an HTTP inspection API over a catalog of
scanned files.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("big-endian", false, "Treat the file as big-endian")
}

// streamOptions translates the global flags into stream options.
func streamOptions(cmd *cobra.Command) []stream.Option {
	if be, _ := cmd.Flags().GetBool("big-endian"); be {
		return []stream.Option{stream.WithByteOrder(binary.BigEndian)}
	}
	return nil
}
