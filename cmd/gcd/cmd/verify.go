/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opengcd/gcd/pkg/catalog"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file.gcd>...",
	Short: "Verify that GCD files are well-formed",
	Long: `Parse each file end to end, validating record order, checksum
checkpoints, and firmware length accounting. Exits non-zero if any file
fails.

Example:
  gcd verify GUPDATE.GCD OTHER.GCD`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed int
		for _, name := range args {
			file, err := os.Open(name)
			if err != nil {
				fmt.Printf("%s: %v\n", name, err)
				failed++
				continue
			}
			s, err := catalog.Summarize(name, file, streamOptions(cmd)...)
			file.Close()
			if err != nil {
				fmt.Printf("%s: %v\n", name, err)
				failed++
				continue
			}
			fmt.Printf("%s: ok, %d records, %d firmware blocks\n", name, s.Records, len(s.FirmwareBlocks))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed verification", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
