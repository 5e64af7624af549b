package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	transit "cybus.dev/transit"
	"cybus.dev/transit/storage"
)

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "Lists the known city feeds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		for _, city := range svc.Cities() {
			fmt.Println(city)
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [city]",
	Short: "Downloads feed archives (all cities by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		results, err := svc.Download(cmd.Context(), cityArg(args))
		if err != nil {
			return err
		}

		failures := 0
		for _, city := range sortedKeys(results) {
			r := results[city]
			if r.Success {
				fmt.Printf("%-14s ok    %d bytes\n", city, r.SizeBytes)
			} else {
				fmt.Printf("%-14s FAIL  %s\n", city, r.Error)
				failures++
			}
		}
		if failures == len(results) && len(results) > 0 {
			return fmt.Errorf("all downloads failed")
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [city]",
	Short: "Imports downloaded archives into the database (all cities by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		results, err := svc.Import(cmd.Context(), cityArg(args))
		if err != nil {
			return err
		}

		printImportResults(results)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync [city]",
	Short: "Downloads and imports feeds (all cities by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		results, err := svc.Sync(cmd.Context(), cityArg(args))
		if err != nil {
			return err
		}

		printImportResults(results)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints row counts for the main feed tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		counts := svc.Stats()
		for _, table := range storage.StatsTables {
			fmt.Printf("%-12s %d\n", table, counts[table])
		}
		return nil
	},
}

func cityArg(args []string) string {
	if len(args) == 0 {
		return transit.CityAll
	}
	return args[0]
}

func printImportResults(results map[string]transit.ImportResult) {
	for _, city := range sortedKeys(results) {
		r := results[city]
		if !r.Success {
			fmt.Printf("%s: FAIL %s\n", city, r.Error)
			continue
		}
		fmt.Printf("%s: %d stops, %d routes, %d trips, %d stop_times\n",
			city, r.RowCounts["stops"], r.RowCounts["routes"],
			r.RowCounts["trips"], r.RowCounts["stop_times"])
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
