package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybus.dev/transit/model"
	"cybus.dev/transit/storage"
)

func buildStore(t *testing.T) storage.Store {
	t.Helper()

	s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "transit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedFeed(t *testing.T, s storage.Store) {
	t.Helper()

	require.NoError(t, s.UpsertAgencies([]model.Agency{
		{ID: "9", Name: "OSEL", URL: "https://osel.com.cy", Timezone: "Asia/Nicosia", Lang: "el"},
	}))
	require.NoError(t, s.UpsertStops([]model.Stop{
		{ID: "s1", Name: "Origin Stop", Lat: 34.70, Lon: 33.02},
		{ID: "s2", Name: "Middle Stop", Lat: 34.71, Lon: 33.03},
		{ID: "s3", Name: "Last Stop", Lat: 34.72, Lon: 33.04},
	}))
	require.NoError(t, s.UpsertRoutes([]model.Route{
		{ID: "r30", ShortName: "30", LongName: "Center to Port", Type: model.RouteTypeBus, Color: "FF0000", TextColor: "FFFFFF"},
		{ID: "r31", ShortName: "31", LongName: "Circular", Type: model.RouteTypeBus},
	}))
	require.NoError(t, s.UpsertCalendars([]model.Calendar{
		{ServiceID: "wk", Weekday: 1 << time.Monday, StartDate: 20240101, EndDate: 20241231},
	}))
	require.NoError(t, s.UpsertTrips([]model.Trip{
		{ID: "t1", RouteID: "r30", ServiceID: "wk", Headsign: "Port"},
		{ID: "t2", RouteID: "r31", ServiceID: "wk", Headsign: "Center"},
	}))
	require.NoError(t, s.UpsertStopTimes([]model.StopTime{
		{TripID: "t1", StopID: "s1", StopSequence: 1, Arrival: "08:00:00", Departure: "08:00:00"},
		{TripID: "t1", StopID: "s2", StopSequence: 2, Arrival: "08:10:00", Departure: "08:10:00"},
		{TripID: "t1", StopID: "s3", StopSequence: 3, Arrival: "08:20:00", Departure: "08:20:00"},
		{TripID: "t2", StopID: "s2", StopSequence: 1, Arrival: "09:00:00", Departure: "09:00:00"},
		{TripID: "t2", StopID: "s1", StopSequence: 2, Arrival: "09:10:00", Departure: "09:10:00"},
	}))
}

func TestStopLookup(t *testing.T) {
	s := buildStore(t)
	seedFeed(t, s)

	stop, err := s.Stop("s1")
	require.NoError(t, err)
	require.NotNil(t, stop)
	assert.Equal(t, "Origin Stop", stop.Name)
	assert.InDelta(t, 34.70, stop.Lat, 0.0001)

	missing, err := s.Stop("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpsertStopsOverwritesNameAndCoords(t *testing.T) {
	s := buildStore(t)
	seedFeed(t, s)

	require.NoError(t, s.UpsertStops([]model.Stop{
		{ID: "s1", Name: "Renamed Stop", Lat: 35.0, Lon: 33.5},
	}))

	stop, err := s.Stop("s1")
	require.NoError(t, err)
	require.NotNil(t, stop)
	assert.Equal(t, "Renamed Stop", stop.Name)
	assert.InDelta(t, 35.0, stop.Lat, 0.0001)
}

func TestUpsertAgenciesInsertOnly(t *testing.T) {
	s := buildStore(t)
	seedFeed(t, s)

	require.NoError(t, s.UpsertAgencies([]model.Agency{
		{ID: "9", Name: "Replaced", URL: "https://other", Timezone: "UTC"},
	}))

	counts := s.TableCounts()
	assert.Equal(t, 1, counts["agency"])
}

func TestUpsertIdempotent(t *testing.T) {
	s := buildStore(t)
	seedFeed(t, s)
	before := s.TableCounts()

	seedFeed(t, s)
	assert.Equal(t, before, s.TableCounts())
}

func TestRoutesForStopPositions(t *testing.T) {
	s := buildStore(t)
	seedFeed(t, s)

	routes, err := s.RoutesForStop("s1")
	require.NoError(t, err)
	require.Len(t, routes, 2)

	byName := map[string]model.RouteAtStop{}
	for _, r := range routes {
		byName[r.ShortName] = r
	}

	assert.Equal(t, model.StopPositionOrigin, byName["30"].Position)
	assert.Equal(t, model.StopPositionDestination, byName["31"].Position)
	assert.Equal(t, "Port", byName["30"].Headsign)
	assert.Equal(t, "FF0000", byName["30"].Color)

	// Absent colors fall back to the display defaults.
	assert.Equal(t, "FFFFFF", byName["31"].Color)
	assert.Equal(t, "000000", byName["31"].TextColor)

	mid, err := s.RoutesForStop("s2")
	require.NoError(t, err)
	require.Len(t, mid, 2)
	for _, r := range mid {
		if r.ShortName == "30" {
			assert.Equal(t, model.StopPositionIntermediate, r.Position)
		}
	}
}

func TestRoutesForStopUnknownStop(t *testing.T) {
	s := buildStore(t)
	seedFeed(t, s)

	routes, err := s.RoutesForStop("nope")
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestTableCounts(t *testing.T) {
	s := buildStore(t)
	seedFeed(t, s)

	counts := s.TableCounts()
	assert.Equal(t, 3, counts["stops"])
	assert.Equal(t, 2, counts["routes"])
	assert.Equal(t, 2, counts["trips"])
	assert.Equal(t, 5, counts["stop_times"])
	assert.Equal(t, 0, counts["shapes"])
}

func TestEnsureIndexesRepeatable(t *testing.T) {
	s := buildStore(t)
	seedFeed(t, s)

	require.NoError(t, s.EnsureIndexes())
	require.NoError(t, s.EnsureIndexes())
}

func TestAlertsForStop(t *testing.T) {
	s := buildStore(t)
	now := time.Now().UTC()
	soon := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	systemWide := &model.TransportAlert{
		Title: "Strike", Message: "No service after 18:00",
		Severity: model.SeverityCritical, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.InsertAlert(systemWide))
	assert.NotZero(t, systemWide.ID)

	require.NoError(t, s.InsertAlert(&model.TransportAlert{
		Title: "Stop closed", Message: "Use next stop",
		AffectedStops: "s1, s2", IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, s.InsertAlert(&model.TransportAlert{
		Title: "Elsewhere", Message: "Other stop only",
		AffectedStops: "s9", IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, s.InsertAlert(&model.TransportAlert{
		Title: "Expired", Message: "Old news", IsActive: true,
		CreatedAt: now, UpdatedAt: now, ExpiresAt: &past,
	}))
	require.NoError(t, s.InsertAlert(&model.TransportAlert{
		Title: "Disabled", Message: "Inactive", IsActive: false,
		CreatedAt: now, UpdatedAt: now, ExpiresAt: &soon,
	}))

	alerts, err := s.ActiveAlertsForStop("s2", now)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	titles := []string{alerts[0].Title, alerts[1].Title}
	assert.Contains(t, titles, "Strike")
	assert.Contains(t, titles, "Stop closed")
}

func TestAlertDefaultSeverity(t *testing.T) {
	s := buildStore(t)
	now := time.Now().UTC()

	a := &model.TransportAlert{Title: "Note", Message: "FYI", IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.InsertAlert(a))

	alerts, err := s.ActiveAlertsForStop("any", now)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.SeverityInfo, alerts[0].Severity)
}

func TestActiveAdsOrdering(t *testing.T) {
	s := buildStore(t)
	now := time.Now().UTC()
	past := now.Add(-time.Minute)

	require.NoError(t, s.InsertAd(&model.Ad{
		Title: "Second", ImageURL: "http://img/2", IsActive: true,
		DisplayOrder: 2, DurationSeconds: 10, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, s.InsertAd(&model.Ad{
		Title: "First", ImageURL: "http://img/1", IsActive: true,
		DisplayOrder: 1, DurationSeconds: 10, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, s.InsertAd(&model.Ad{
		Title: "Gone", ImageURL: "http://img/3", IsActive: true,
		DisplayOrder: 0, DurationSeconds: 10, CreatedAt: now, UpdatedAt: now,
		ExpiresAt: &past,
	}))

	ads, err := s.ActiveAds(now)
	require.NoError(t, err)
	require.Len(t, ads, 2)
	assert.Equal(t, "First", ads[0].Title)
	assert.Equal(t, "Second", ads[1].Title)
}

func TestActiveNews(t *testing.T) {
	s := buildStore(t)
	now := time.Now().UTC()

	n := &model.GovernmentNews{
		TitleEL: "Ανακοίνωση", ContentEL: "Περιεχόμενο",
		TitleEN: "Announcement", ContentEN: "Content",
		DurationSeconds: 12, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.InsertNews(n))
	assert.NotZero(t, n.ID)

	items, err := s.ActiveNews(now)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ανακοίνωση", items[0].TitleEL)
	assert.Equal(t, "Announcement", items[0].TitleEN)
}
