package arrivals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybus.dev/transit/model"
)

func TestEnrichMatchesGreekSpelling(t *testing.T) {
	events := []model.LiveArrival{
		{RouteName: "Β2", ArrivalTime: "10:00", MinutesLeft: 12},
	}
	routes := []model.RouteAtStop{
		{RouteID: "r-b2", ShortName: "B2", Headsign: "Limassol Port", Color: "00FF00", TextColor: "FFFFFF"},
	}

	out := Enrich(events, routes)
	require.Len(t, out, 1)
	assert.Equal(t, "r-b2", out[0].RouteID)
	// The label stays as scraped, Greek beta and all.
	assert.Equal(t, "Β2", out[0].RouteShortName)
	assert.Equal(t, "Limassol Port", out[0].Headsign)
	assert.Equal(t, "00FF00", out[0].Color)
	assert.True(t, out[0].Live)
}

func TestEnrichUnmatchedGetsDefaults(t *testing.T) {
	events := []model.LiveArrival{
		{RouteName: "99", ArrivalTime: "10:00", MinutesLeft: 4},
	}

	out := Enrich(events, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "", out[0].RouteID)
	assert.Equal(t, "99", out[0].RouteShortName)
	assert.Equal(t, UnknownHeadsign, out[0].Headsign)
	assert.Equal(t, DefaultColor, out[0].Color)
	assert.Equal(t, DefaultTextColor, out[0].TextColor)
}

func TestEnrichBlankRouteFieldsFallBack(t *testing.T) {
	events := []model.LiveArrival{{RouteName: "30", MinutesLeft: 1}}
	routes := []model.RouteAtStop{{RouteID: "r-30", ShortName: "30"}}

	out := Enrich(events, routes)
	require.Len(t, out, 1)
	assert.Equal(t, "r-30", out[0].RouteID)
	assert.Equal(t, UnknownHeadsign, out[0].Headsign)
	assert.Equal(t, DefaultColor, out[0].Color)
	assert.Equal(t, DefaultTextColor, out[0].TextColor)
}

// Ties keep their scrape order while the board sorts soonest first.
func TestEnrichStableSortByMinutes(t *testing.T) {
	events := []model.LiveArrival{
		{RouteName: "A", MinutesLeft: 5},
		{RouteName: "B", MinutesLeft: 1},
		{RouteName: "C", MinutesLeft: 5},
	}

	out := Enrich(events, nil)
	require.Len(t, out, 3)
	assert.Equal(t, "B", out[0].RouteShortName)
	assert.Equal(t, "A", out[1].RouteShortName)
	assert.Equal(t, "C", out[2].RouteShortName)
}

func TestEnrichEmptyInput(t *testing.T) {
	assert.Empty(t, Enrich(nil, nil))
}
