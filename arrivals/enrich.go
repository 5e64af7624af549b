package arrivals

import (
	"sort"

	"cybus.dev/transit/model"
	"cybus.dev/transit/routename"
)

// Fallbacks for live routes absent from the static feed of the day.
const (
	UnknownHeadsign  = "Unknown Destination"
	DefaultColor     = "FFFFFF"
	DefaultTextColor = "000000"
)

// Enrich joins live arrival events against the static routes serving
// the stop. The join key is the canonicalized route short name, so
// Greek and Latin spellings of the same line match. Events with no
// static counterpart are kept with fallback presentation rather than
// dropped. The result is ordered soonest first; ties keep scrape
// order.
func Enrich(events []model.LiveArrival, routes []model.RouteAtStop) []model.Arrival {
	byName := make(map[string]model.RouteAtStop, len(routes))
	for _, r := range routes {
		key := routename.Canonical(r.ShortName)
		if _, seen := byName[key]; !seen {
			byName[key] = r
		}
	}

	arrivals := make([]model.Arrival, 0, len(events))
	for _, ev := range events {
		a := model.Arrival{
			RouteShortName: ev.RouteName,
			ArrivalTime:    ev.ArrivalTime,
			MinutesLeft:    ev.MinutesLeft,
			Headsign:       UnknownHeadsign,
			Color:          DefaultColor,
			TextColor:      DefaultTextColor,
			Live:           true,
		}

		// A match attaches route_id and presentation only; the label
		// stays as scraped so the board shows what the sign shows.
		if r, ok := byName[routename.Canonical(ev.RouteName)]; ok {
			a.RouteID = r.RouteID
			if r.Headsign != "" {
				a.Headsign = r.Headsign
			}
			if r.Color != "" {
				a.Color = r.Color
			}
			if r.TextColor != "" {
				a.TextColor = r.TextColor
			}
		}

		arrivals = append(arrivals, a)
	}

	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].MinutesLeft < arrivals[j].MinutesLeft
	})

	return arrivals
}
