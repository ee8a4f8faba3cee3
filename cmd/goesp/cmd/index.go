/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tamriel-io/goesp/pkg/index"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <plugin>...",
	Short: "Build a persistent form id index from plugin files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		indexDir, _ := cmd.Flags().GetString("index-dir")

		ix, err := index.Open(indexDir)
		if err != nil {
			return err
		}
		defer ix.Close()

		for _, path := range args {
			p, err := loadPlugin(cmd, path)
			if err != nil {
				return err
			}
			info, err := ix.IndexPlugin(filepath.Base(path), p)
			if err != nil {
				return err
			}
			cmd.Printf("Indexed %s: %d records (build %s)\n", info.Plugin, info.Records, info.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().String("index-dir", "./index", "Directory of the index database")
}
