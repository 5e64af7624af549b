// Package storage persists the static feed and display content in a
// relational store. Two backends are provided, SQLite and Postgres,
// sharing one SQL core.
package storage

import (
	"time"

	"cybus.dev/transit/model"
)

// Store is the relational store the importer writes to and the
// arrival board reads from.
//
// Each Upsert method takes one batch and commits it in its own
// transaction, so partial progress survives a mid-import failure.
// The conflict policy is per table:
//
//	agency, calendar        insert-only; existing rows are never
//	                        overwritten, protecting curated timezone
//	                        and day-flag data from feed regressions
//	stops                   overwrite name, lat, lon
//	routes                  overwrite short_name, long_name, type
//	trips                   overwrite route_id, service_id
//	calendar_dates, stop_times, shapes, fares
//	                        insert-only by composite key
type Store interface {
	UpsertAgencies(agencies []model.Agency) error
	UpsertStops(stops []model.Stop) error
	UpsertRoutes(routes []model.Route) error
	UpsertCalendars(cals []model.Calendar) error
	UpsertCalendarDates(dates []model.CalendarDate) error
	UpsertTrips(trips []model.Trip) error
	UpsertStopTimes(stopTimes []model.StopTime) error
	UpsertShapes(shapes []model.Shape) error
	UpsertFareAttributes(fares []model.FareAttribute) error
	UpsertFareRules(rules []model.FareRule) error

	// EnsureIndexes (re)creates query-support indexes after bulk
	// load. Best effort: "already exists" is not an error.
	EnsureIndexes() error

	// Stop returns nil (not an error) when the stop is unknown.
	Stop(stopID string) (*model.Stop, error)

	// ListStops returns stops with usable coordinates, ordered by
	// name, optionally filtered by stop_id prefix.
	ListStops(prefix string, limit int) ([]model.Stop, error)

	// NearbyStops returns up to limit stops sorted by distance
	// from a point.
	NearbyStops(lat, lon float64, limit int) ([]model.Stop, error)

	// RoutesForStop lists distinct routes serving a stop, with the
	// stop's position along each route's trips derived from
	// min/max stop_sequence.
	RoutesForStop(stopID string) ([]model.RouteAtStop, error)

	// TableCounts reports row counts for a fixed table list. A
	// failing table counts as 0 rather than failing the report.
	TableCounts() map[string]int

	InsertAlert(alert *model.TransportAlert) error
	// ActiveAlertsForStop returns unexpired active alerts that
	// either name the stop in affected_stops or name no stops at
	// all.
	ActiveAlertsForStop(stopID string, now time.Time) ([]model.TransportAlert, error)

	InsertAd(ad *model.Ad) error
	ActiveAds(now time.Time) ([]model.Ad, error)

	InsertNews(news *model.GovernmentNews) error
	ActiveNews(now time.Time) ([]model.GovernmentNews, error)

	Close() error
}

// StatsTables is the fixed list TableCounts reports on.
var StatsTables = []string{
	"agency",
	"stops",
	"routes",
	"trips",
	"stop_times",
	"calendar",
	"shapes",
}
