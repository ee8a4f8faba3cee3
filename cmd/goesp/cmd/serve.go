/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/tamriel-io/goesp/pkg/api"
	"github.com/tamriel-io/goesp/pkg/config"
	"github.com/tamriel-io/goesp/pkg/index"
	"github.com/tamriel-io/goesp/pkg/plugin"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the goesp REST API server over a directory of plugin files.

Every .esp and .esm file in the plugin directory is parsed at startup.
When an index directory is given, form id lookups across the whole
load order are served from the persistent index.

Examples:
  goesp serve --plugin-dir=./plugins --port=8080
  goesp serve --config=~/.config/goesp/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		var opts []plugin.Option
		if cfg.Parse.Strict {
			opts = append(opts, plugin.WithStrict(true))
		}
		if cfg.Parse.Parallel > 1 {
			opts = append(opts, plugin.WithParallel(cfg.Parse.Parallel))
		}

		metrics := api.NewMetrics()
		library := api.NewLibrary(opts...)
		library.SetMetrics(metrics)
		loaded, err := library.LoadDir(cfg.PluginDir)
		if err != nil {
			return err
		}
		log.Printf("Loaded %d plugins from %s", loaded, cfg.PluginDir)

		var ix *index.Index
		if cfg.IndexDir != "" {
			ix, err = index.Open(cfg.IndexDir)
			if err != nil {
				return err
			}
			defer ix.Close()
		}

		server := api.NewServer(library, ix, api.ServerConfig{
			Port:      cfg.Port,
			Bind:      cfg.Bind,
			PluginDir: cfg.PluginDir,
			Strict:    cfg.Parse.Strict,
			Parallel:  cfg.Parse.Parallel,
		}, metrics)

		return api.StartServer(server)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("config", "", "Path to a config file (flags override it)")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("plugin-dir", "./plugins", "Directory of plugin files to serve")
	serveCmd.Flags().String("index-dir", "", "Directory of the index database (disabled when empty)")
}

// resolveConfig merges the config file, when given, with the command
// flags. Explicitly set flags win.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.IndexDir = ""

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind, _ = cmd.Flags().GetString("bind")
	}
	if cmd.Flags().Changed("plugin-dir") {
		cfg.PluginDir, _ = cmd.Flags().GetString("plugin-dir")
	}
	if cmd.Flags().Changed("index-dir") {
		cfg.IndexDir, _ = cmd.Flags().GetString("index-dir")
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		cfg.Parse.Strict = true
	}
	if parallel, _ := cmd.Flags().GetInt("parallel"); parallel > 1 {
		cfg.Parse.Parallel = parallel
	}
	return cfg, nil
}
