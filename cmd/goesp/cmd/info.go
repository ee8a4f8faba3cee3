/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tamriel-io/goesp/pkg/record"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <plugin>",
	Short: "Show the header summary of a plugin file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPlugin(cmd, args[0])
		if err != nil {
			return err
		}

		records := 0
		p.Walk(func(*record.Record) { records++ })

		cmd.Printf("File:      %s\n", args[0])
		if hdr := p.FileHeader(); hdr != nil {
			h := hdr.Header()
			cmd.Printf("Version:   %.2f\n", h.Version)
			cmd.Printf("Declared:  %d records\n", h.RecordCount)
			if author := hdr.Author(); author != "" {
				cmd.Printf("Author:    %s\n", author)
			}
			if desc := hdr.Description(); desc != "" {
				cmd.Printf("About:     %s\n", desc)
			}
			for _, m := range hdr.Masters() {
				cmd.Printf("Master:    %s\n", m.Name)
			}
		}
		cmd.Printf("Master flag: %v\n", p.Header.Flags.Has(record.FlagMaster))
		cmd.Printf("Localized:   %v\n", p.Header.Flags.Has(record.FlagLocalized))
		cmd.Printf("Groups:    %d\n", len(p.Groups))
		cmd.Printf("Records:   %d (including header)\n", records)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
