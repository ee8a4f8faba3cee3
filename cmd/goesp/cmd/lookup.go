/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tamriel-io/goesp/pkg/index"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <formid>",
	Short: "Look up a form id in the index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		indexDir, _ := cmd.Flags().GetString("index-dir")
		byTag, _ := cmd.Flags().GetString("tag")

		ix, err := index.Open(indexDir)
		if err != nil {
			return err
		}
		defer ix.Close()

		if byTag != "" {
			entries, err := ix.ByTag(byTag)
			if err != nil {
				return err
			}
			for _, e := range entries {
				printEntry(cmd, e)
			}
			cmd.Printf("%d records\n", len(entries))
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("a form id argument is required without --tag")
		}
		formID, err := strconv.ParseUint(args[0], 16, 32)
		if err != nil {
			return fmt.Errorf("invalid form id %q: must be hexadecimal", args[0])
		}
		entry, err := ix.Lookup(uint32(formID))
		if err != nil {
			return err
		}
		printEntry(cmd, entry)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().String("index-dir", "./index", "Directory of the index database")
	lookupCmd.Flags().String("tag", "", "List all indexed records with this tag instead")
}

func printEntry(cmd *cobra.Command, e index.Entry) {
	line := fmt.Sprintf("%08X %s %s", e.FormID, e.Tag, e.Plugin)
	if e.EditorID != "" {
		line += " " + e.EditorID
	}
	cmd.Println(line)
}
