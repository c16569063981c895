/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opengcd/gcd/pkg/codec"
	"github.com/opengcd/gcd/pkg/stream"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <file.gcd>",
	Short: "List the records of a GCD file",
	Long: `Read a GCD file and print one line per record, with the byte
offset each record starts at.

Example:
  gcd read GUPDATE.GCD`,
	Args: cobra.ExactArgs(1),
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
		for {
			offset := p.Offset()
			rec, err := p.ReadRecord()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Printf("%08x  %s\n", offset, rec)
			if _, done := rec.(codec.EndRecord); done {
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
