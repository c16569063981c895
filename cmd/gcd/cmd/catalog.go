/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/opengcd/gcd/pkg/catalog"
)

// catalogCmd represents the catalog command group
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local catalog of scanned GCD files",
}

var catalogScanCmd = &cobra.Command{
	Use:   "scan <file.gcd>...",
	Short: "Scan files and store their summaries in the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		for _, name := range args {
			file, err := os.Open(name)
			if err != nil {
				return err
			}
			s, err := catalog.Summarize(name, file, streamOptions(cmd)...)
			file.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			id, err := cat.Put(s)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", id, name)
		}
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		entries, err := cat.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%s  %-30s  %d records  %d firmware blocks\n",
				e.ID, e.Summary.Name, e.Summary.Records, len(e.Summary.FirmwareBlocks))
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid catalog ID %q: %w", args[0], err)
		}
		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		s, err := cat.Get(id)
		if err != nil {
			return err
		}
		fmt.Printf("Name:        %s\n", s.Name)
		fmt.Printf("Size:        %d bytes\n", s.Size)
		fmt.Printf("Records:     %d\n", s.Records)
		if s.HardwareID != 0 {
			fmt.Printf("Hardware ID: 0x%04x\n", s.HardwareID)
		}
		if s.SoftwareVersion != "" {
			fmt.Printf("Version:     %s\n", s.SoftwareVersion)
		}
		for _, text := range s.Texts {
			fmt.Printf("Text:        %s\n", text)
		}
		for i, b := range s.FirmwareBlocks {
			fmt.Printf("Firmware %d:  tag 0x%04x, %d bytes in %d chunks", i, b.Tag, b.Length, b.Chunks)
			if b.XorKey != 0 {
				fmt.Printf(", xor 0x%02x", b.XorKey)
			}
			fmt.Println()
		}
		return nil
	},
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := ksuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid catalog ID %q: %w", args[0], err)
		}
		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()
		return cat.Delete(id)
	},
}

func openCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	dir, _ := cmd.Flags().GetString("catalog-dir")
	cat, err := catalog.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", dir, err)
	}
	return cat, nil
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogScanCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogDeleteCmd)
	catalogCmd.PersistentFlags().String("catalog-dir", "./catalog", "Catalog database directory")
}
