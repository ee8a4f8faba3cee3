/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tamriel-io/goesp/pkg/plugin"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "goesp",
	Short: "goesp - Bethesda plugin file toolkit",
	Long: `goesp parses, inspects, verifies and indexes Bethesda plugin
files (.esp/.esm) built from records and nested groups.`,
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
	rootCmd.PersistentFlags().Bool("strict", false, "Reject top groups whose records do not match the label")
	rootCmd.PersistentFlags().Int("parallel", 0, "Parse top-level groups on this many goroutines")
}

// parseOptions builds the codec options from the persistent flags.
func parseOptions(cmd *cobra.Command) []plugin.Option {
	var opts []plugin.Option
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		opts = append(opts, plugin.WithStrict(true))
	}
	if parallel, _ := cmd.Flags().GetInt("parallel"); parallel > 1 {
		opts = append(opts, plugin.WithParallel(parallel))
	}
	return opts
}

// loadPlugin reads and parses one plugin file.
func loadPlugin(cmd *cobra.Command, path string) (*plugin.Plugin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	p, err := plugin.Parse(data, parseOptions(cmd)...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return p, nil
}
