package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	transit "cybus.dev/transit"
)

var rootCmd = &cobra.Command{
	Use:          "transit",
	Short:        "Cyprus transit feed tool",
	Long:         "Downloads and imports the Cyprus GTFS feeds and serves live arrival boards",
	SilenceUsage: true,
}

var (
	configPath string
	dataDir    string
	dbPath     string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "", "", "Directory for downloaded archives")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "", "", "Database path (sqlite) or connection string (postgres)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(citiesCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(arrivalsCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(displayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadService builds a Service from the config file with flag
// overrides applied on top.
func loadService() (*transit.Service, error) {
	cfg, err := transit.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if dbPath != "" {
		cfg.Storage.DSN = dbPath
	}
	return transit.NewService(cfg, newLogger())
}
