package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var stopsCmd = &cobra.Command{
	Use:   "stops [lat lon]",
	Short: "Lists stops, nearest first when given a location",
	Args:  cobra.RangeArgs(0, 2),
	RunE:  stops,
}

var (
	stopLimit  int
	stopPrefix string
)

func init() {
	stopsCmd.Flags().IntVarP(&stopLimit, "limit", "l", 100, "Maximum number of stops")
	stopsCmd.Flags().StringVarP(&stopPrefix, "prefix", "p", "", "Filter by stop_id prefix")
	rootCmd.AddCommand(stopsCmd)
}

func stops(cmd *cobra.Command, args []string) error {
	svc, err := loadService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if len(args) == 1 {
		return fmt.Errorf("provide both lat and lon, or neither")
	}

	if len(args) == 2 {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("bad latitude %q", args[0])
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("bad longitude %q", args[1])
		}

		nearby, err := svc.NearbyStops(lat, lon, stopLimit)
		if err != nil {
			return err
		}
		for _, st := range nearby {
			fmt.Printf("%-12s %-40s %.5f,%.5f\n", st.ID, st.Name, st.Lat, st.Lon)
		}
		return nil
	}

	all, err := svc.Stops(stopPrefix, stopLimit)
	if err != nil {
		return err
	}
	for _, st := range all {
		fmt.Printf("%-12s %-40s %.5f,%.5f\n", st.ID, st.Name, st.Lat, st.Lon)
	}
	return nil
}
