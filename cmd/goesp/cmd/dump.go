/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tamriel-io/goesp/pkg/group"
	"github.com/tamriel-io/goesp/pkg/kinds"
	"github.com/tamriel-io/goesp/pkg/record"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <plugin>",
	Short: "Print the record and group tree of a plugin file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPlugin(cmd, args[0])
		if err != nil {
			return err
		}

		tagFilter, _ := cmd.Flags().GetString("tag")
		fields, _ := cmd.Flags().GetBool("fields")

		printRecord(cmd, p.Header, 0, fields)
		for _, g := range p.Groups {
			if tagFilter != "" && (g.Type != group.Top || g.RecordTag().String() != tagFilter) {
				continue
			}
			printGroup(cmd, g, 0, fields)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().String("tag", "", "Only dump the top group with this record tag")
	dumpCmd.Flags().Bool("fields", false, "Print the fields of every record")
}

func printGroup(cmd *cobra.Command, g *group.Group, depth int, fields bool) {
	indent := strings.Repeat("  ", depth)
	cmd.Printf("%sGRUP %s [%s] (%d entries)\n", indent, g.Type, g.LabelString(), len(g.Entries))
	for _, e := range g.Entries {
		switch {
		case e.Record != nil:
			printRecord(cmd, e.Record, depth+1, fields)
		case e.Group != nil:
			printGroup(cmd, e.Group, depth+1, fields)
		}
	}
}

func printRecord(cmd *cobra.Command, r *record.Record, depth int, fields bool) {
	indent := strings.Repeat("  ", depth)
	line := indent + r.Tag.String()
	if r.FormID != 0 || r.Tag != record.HeaderTag {
		line += " " + fmt.Sprintf("%08X", r.FormID)
	}
	if f, ok := r.FieldByTag(kinds.TagEDID); ok && len(f.Data) > 1 {
		line += " " + strings.TrimRight(string(f.Data), "\x00")
	}
	if r.Flags.Deleted() {
		line += " (deleted)"
	}
	if r.Flags.Compressed() {
		line += " (compressed)"
	}
	cmd.Println(line)

	if fields {
		for _, f := range r.Fields {
			cmd.Printf("%s  %s (%d bytes)\n", indent, f.Tag, len(f.Data))
		}
	}
}
