package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var asJSON bool

func init() {
	arrivalsCmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Print the full board as JSON")
}

var arrivalsCmd = &cobra.Command{
	Use:   "arrivals <stop_id>",
	Short: "Shows the live arrival board for a stop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		board, err := svc.Arrivals(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(board)
		}

		fmt.Printf("%s (%s)\n", board.StopName, board.StopID)
		for _, alert := range board.Alerts {
			fmt.Printf("! [%s] %s\n", alert.Severity, alert.Title)
		}
		for _, a := range board.Arrivals {
			fmt.Printf("%-6s %-30s %3d min  (%s)\n",
				a.RouteShortName, a.Headsign, a.MinutesLeft, a.ArrivalTime)
		}
		return nil
	},
}

var displayCmd = &cobra.Command{
	Use:   "display",
	Short: "Shows the active ads and news items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		content, err := svc.Display(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(content)
	},
}

var routesCmd = &cobra.Command{
	Use:   "routes <stop_id>",
	Short: "Lists the routes serving a stop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		defer svc.Close()

		routes, err := svc.RoutesForStop(args[0])
		if err != nil {
			return err
		}

		for _, r := range routes {
			fmt.Printf("%-6s %-40s %s\n", r.ShortName, r.LongName, r.Position)
		}
		return nil
	},
}
