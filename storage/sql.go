package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cybus.dev/transit/model"
)

// SQLStore implements Store on top of database/sql. The SQL is
// written once with ? placeholders; the Postgres flavor renumbers
// them and uses RETURNING for generated keys.
type SQLStore struct {
	db           *sql.DB
	numberedArgs bool
	serialPK     string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS agency (
    agency_id TEXT PRIMARY KEY,
    agency_name TEXT NOT NULL,
    agency_url TEXT NOT NULL,
    agency_timezone TEXT NOT NULL,
    agency_lang TEXT
);`,
	`CREATE TABLE IF NOT EXISTS stops (
    stop_id TEXT PRIMARY KEY,
    stop_code TEXT,
    stop_name TEXT,
    stop_desc TEXT,
    stop_lat DOUBLE PRECISION NOT NULL,
    stop_lon DOUBLE PRECISION NOT NULL,
    zone_id TEXT,
    location_type INTEGER NOT NULL DEFAULT 0,
    parent_station TEXT,
    wheelchair_boarding INTEGER NOT NULL DEFAULT 0
);`,
	`CREATE TABLE IF NOT EXISTS routes (
    route_id TEXT PRIMARY KEY,
    agency_id TEXT,
    route_short_name TEXT,
    route_long_name TEXT,
    route_desc TEXT,
    route_type INTEGER NOT NULL,
    route_color TEXT,
    route_text_color TEXT,
    route_sort_order INTEGER
);`,
	`CREATE TABLE IF NOT EXISTS calendar (
    service_id TEXT PRIMARY KEY,
    monday INTEGER NOT NULL,
    tuesday INTEGER NOT NULL,
    wednesday INTEGER NOT NULL,
    thursday INTEGER NOT NULL,
    friday INTEGER NOT NULL,
    saturday INTEGER NOT NULL,
    sunday INTEGER NOT NULL,
    start_date INTEGER NOT NULL,
    end_date INTEGER NOT NULL
);`,
	`CREATE TABLE IF NOT EXISTS calendar_dates (
    service_id TEXT NOT NULL REFERENCES calendar (service_id),
    date INTEGER NOT NULL,
    exception_type INTEGER NOT NULL,
    PRIMARY KEY (service_id, date)
);`,
	`CREATE TABLE IF NOT EXISTS trips (
    trip_id TEXT PRIMARY KEY,
    route_id TEXT NOT NULL,
    service_id TEXT NOT NULL REFERENCES calendar (service_id),
    trip_headsign TEXT,
    trip_short_name TEXT,
    direction_id INTEGER,
    block_id TEXT,
    shape_id TEXT,
    wheelchair_accessible INTEGER NOT NULL DEFAULT 0,
    bikes_allowed INTEGER NOT NULL DEFAULT 0
);`,
	`CREATE TABLE IF NOT EXISTS stop_times (
    trip_id TEXT NOT NULL,
    arrival_time TEXT,
    departure_time TEXT,
    stop_id TEXT NOT NULL,
    stop_sequence INTEGER NOT NULL,
    stop_headsign TEXT,
    pickup_type INTEGER NOT NULL DEFAULT 0,
    drop_off_type INTEGER NOT NULL DEFAULT 0,
    shape_dist_traveled DOUBLE PRECISION,
    timepoint INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (trip_id, stop_sequence)
);`,
	`CREATE TABLE IF NOT EXISTS shapes (
    shape_id TEXT NOT NULL,
    shape_pt_lat DOUBLE PRECISION NOT NULL,
    shape_pt_lon DOUBLE PRECISION NOT NULL,
    shape_pt_sequence INTEGER NOT NULL,
    shape_dist_traveled DOUBLE PRECISION,
    PRIMARY KEY (shape_id, shape_pt_sequence)
);`,
	`CREATE TABLE IF NOT EXISTS fare_attributes (
    fare_id TEXT PRIMARY KEY,
    price DOUBLE PRECISION,
    currency_type TEXT,
    payment_method INTEGER,
    transfers INTEGER,
    agency_id TEXT,
    transfer_duration INTEGER
);`,
	`CREATE TABLE IF NOT EXISTS fare_rules (
    fare_id TEXT NOT NULL,
    route_id TEXT NOT NULL,
    origin_id TEXT,
    destination_id TEXT,
    PRIMARY KEY (fare_id, route_id)
);`,
	`CREATE TABLE IF NOT EXISTS transport_alerts (
    id SERIAL_PK,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    severity TEXT NOT NULL DEFAULT 'info',
    affected_routes TEXT,
    affected_stops TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP
);`,
	`CREATE TABLE IF NOT EXISTS ads (
    id SERIAL_PK,
    title TEXT NOT NULL,
    image_url TEXT NOT NULL,
    link_url TEXT,
    advertiser_name TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    display_order INTEGER NOT NULL DEFAULT 0,
    duration_seconds INTEGER NOT NULL DEFAULT 10,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP
);`,
	`CREATE TABLE IF NOT EXISTS government_news (
    id SERIAL_PK,
    title_el TEXT NOT NULL,
    content_el TEXT NOT NULL,
    title_en TEXT,
    content_en TEXT,
    image_url TEXT,
    source TEXT,
    duration_seconds INTEGER NOT NULL DEFAULT 12,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    display_order INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP
);`,
}

func (s *SQLStore) createSchema() error {
	for _, stmt := range schema {
		stmt = strings.ReplaceAll(stmt, "SERIAL_PK", s.serialPK)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// rebind renumbers ? placeholders to $1, $2, ... for Postgres.
func (s *SQLStore) rebind(query string) string {
	if !s.numberedArgs {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// execBatch runs one prepared statement over a batch inside a single
// transaction.
func (s *SQLStore) execBatch(query string, n int, args func(i int) []interface{}) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(s.rebind(query))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing statement: %w", err)
	}

	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(args(i)...); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("executing batch row %d: %w", i, err)
		}
	}

	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (s *SQLStore) UpsertAgencies(agencies []model.Agency) error {
	// Insert-only. Existing agency rows hold curated timezone and
	// language data and are never overwritten by a re-import.
	return s.execBatch(`
INSERT INTO agency (agency_id, agency_name, agency_url, agency_timezone, agency_lang)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (agency_id) DO NOTHING`,
		len(agencies), func(i int) []interface{} {
			a := agencies[i]
			return []interface{}{a.ID, a.Name, a.URL, a.Timezone, a.Lang}
		})
}

func (s *SQLStore) UpsertStops(stops []model.Stop) error {
	return s.execBatch(`
INSERT INTO stops (stop_id, stop_code, stop_name, stop_desc, stop_lat, stop_lon, zone_id, location_type, parent_station, wheelchair_boarding)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (stop_id) DO UPDATE SET
    stop_name = excluded.stop_name,
    stop_lat = excluded.stop_lat,
    stop_lon = excluded.stop_lon`,
		len(stops), func(i int) []interface{} {
			st := stops[i]
			return []interface{}{
				st.ID, nullIfEmpty(st.Code), st.Name, nullIfEmpty(st.Desc),
				st.Lat, st.Lon, nullIfEmpty(st.ZoneID), int(st.LocationType),
				nullIfEmpty(st.ParentStation), st.WheelchairBoarding,
			}
		})
}

func (s *SQLStore) UpsertRoutes(routes []model.Route) error {
	return s.execBatch(`
INSERT INTO routes (route_id, agency_id, route_short_name, route_long_name, route_desc, route_type, route_color, route_text_color, route_sort_order)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (route_id) DO UPDATE SET
    route_short_name = excluded.route_short_name,
    route_long_name = excluded.route_long_name,
    route_type = excluded.route_type`,
		len(routes), func(i int) []interface{} {
			r := routes[i]
			return []interface{}{
				r.ID, nullIfEmpty(r.AgencyID), r.ShortName, r.LongName,
				nullIfEmpty(r.Desc), int(r.Type), nullIfEmpty(r.Color),
				nullIfEmpty(r.TextColor), r.SortOrder,
			}
		})
}

func (s *SQLStore) UpsertCalendars(cals []model.Calendar) error {
	// Insert-only, same reasoning as agency.
	return s.execBatch(`
INSERT INTO calendar (service_id, monday, tuesday, wednesday, thursday, friday, saturday, sunday, start_date, end_date)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (service_id) DO NOTHING`,
		len(cals), func(i int) []interface{} {
			c := cals[i]
			args := []interface{}{c.ServiceID}
			for wd := time.Monday; wd <= time.Saturday; wd++ {
				args = append(args, boolToInt(c.Weekday&(1<<wd) != 0))
			}
			args = append(args, boolToInt(c.Weekday&(1<<time.Sunday) != 0))
			return append(args, c.StartDate, c.EndDate)
		})
}

func (s *SQLStore) UpsertCalendarDates(dates []model.CalendarDate) error {
	return s.execBatch(`
INSERT INTO calendar_dates (service_id, date, exception_type)
VALUES (?, ?, ?)
ON CONFLICT (service_id, date) DO NOTHING`,
		len(dates), func(i int) []interface{} {
			cd := dates[i]
			return []interface{}{cd.ServiceID, cd.Date, int(cd.ExceptionType)}
		})
}

func (s *SQLStore) UpsertTrips(trips []model.Trip) error {
	return s.execBatch(`
INSERT INTO trips (trip_id, route_id, service_id, trip_headsign, trip_short_name, direction_id, block_id, shape_id, wheelchair_accessible, bikes_allowed)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (trip_id) DO UPDATE SET
    route_id = excluded.route_id,
    service_id = excluded.service_id`,
		len(trips), func(i int) []interface{} {
			t := trips[i]
			return []interface{}{
				t.ID, t.RouteID, t.ServiceID, nullIfEmpty(t.Headsign),
				nullIfEmpty(t.ShortName), t.DirectionID, nullIfEmpty(t.BlockID),
				nullIfEmpty(t.ShapeID), t.WheelchairAccessible, t.BikesAllowed,
			}
		})
}

func (s *SQLStore) UpsertStopTimes(stopTimes []model.StopTime) error {
	return s.execBatch(`
INSERT INTO stop_times (trip_id, arrival_time, departure_time, stop_id, stop_sequence, stop_headsign, pickup_type, drop_off_type, shape_dist_traveled, timepoint)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (trip_id, stop_sequence) DO NOTHING`,
		len(stopTimes), func(i int) []interface{} {
			st := stopTimes[i]
			return []interface{}{
				st.TripID, st.Arrival, st.Departure, st.StopID, st.StopSequence,
				nullIfEmpty(st.Headsign), st.PickupType, st.DropOffType,
				st.DistTraveled, st.Timepoint,
			}
		})
}

func (s *SQLStore) UpsertShapes(shapes []model.Shape) error {
	return s.execBatch(`
INSERT INTO shapes (shape_id, shape_pt_lat, shape_pt_lon, shape_pt_sequence, shape_dist_traveled)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (shape_id, shape_pt_sequence) DO NOTHING`,
		len(shapes), func(i int) []interface{} {
			sh := shapes[i]
			return []interface{}{sh.ID, sh.Lat, sh.Lon, sh.Sequence, sh.DistTraveled}
		})
}

func (s *SQLStore) UpsertFareAttributes(fares []model.FareAttribute) error {
	return s.execBatch(`
INSERT INTO fare_attributes (fare_id, price, currency_type, payment_method, transfers, agency_id, transfer_duration)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (fare_id) DO NOTHING`,
		len(fares), func(i int) []interface{} {
			f := fares[i]
			return []interface{}{
				f.ID, f.Price, nullIfEmpty(f.CurrencyType), f.PaymentMethod,
				f.Transfers, nullIfEmpty(f.AgencyID), f.TransferDuration,
			}
		})
}

func (s *SQLStore) UpsertFareRules(rules []model.FareRule) error {
	return s.execBatch(`
INSERT INTO fare_rules (fare_id, route_id, origin_id, destination_id)
VALUES (?, ?, ?, ?)
ON CONFLICT (fare_id, route_id) DO NOTHING`,
		len(rules), func(i int) []interface{} {
			r := rules[i]
			return []interface{}{
				r.FareID, r.RouteID, nullIfEmpty(r.OriginID), nullIfEmpty(r.DestinationID),
			}
		})
}

func (s *SQLStore) EnsureIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_stops_name ON stops (stop_name)",
		"CREATE INDEX IF NOT EXISTS idx_stops_coords ON stops (stop_lat, stop_lon)",
		"CREATE INDEX IF NOT EXISTS idx_routes_short_name ON routes (route_short_name)",
		"CREATE INDEX IF NOT EXISTS idx_trips_route ON trips (route_id)",
		"CREATE INDEX IF NOT EXISTS idx_trips_service ON trips (service_id)",
		"CREATE INDEX IF NOT EXISTS idx_stop_times_stop ON stop_times (stop_id)",
		"CREATE INDEX IF NOT EXISTS idx_stop_times_trip ON stop_times (trip_id)",
		"CREATE INDEX IF NOT EXISTS idx_stop_times_arrival ON stop_times (arrival_time)",
		"CREATE INDEX IF NOT EXISTS idx_shapes_shape ON shapes (shape_id)",
	}

	for _, idx := range indexes {
		// Best effort. IF NOT EXISTS covers re-runs; anything
		// else is ignored too, since missing an index only
		// costs query speed.
		s.db.Exec(idx)
	}
	return nil
}

func (s *SQLStore) Stop(stopID string) (*model.Stop, error) {
	var st model.Stop
	var code, desc, zone, parent sql.NullString
	var locationType, wheelchair sql.NullInt64
	err := s.db.QueryRow(s.rebind(`
SELECT stop_id, stop_code, stop_name, stop_desc, stop_lat, stop_lon, zone_id, location_type, parent_station, wheelchair_boarding
FROM stops
WHERE stop_id = ?`), stopID).Scan(
		&st.ID, &code, &st.Name, &desc, &st.Lat, &st.Lon, &zone,
		&locationType, &parent, &wheelchair,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying stop %s: %w", stopID, err)
	}

	st.Code = code.String
	st.Desc = desc.String
	st.ZoneID = zone.String
	st.LocationType = model.LocationType(locationType.Int64)
	st.ParentStation = parent.String
	st.WheelchairBoarding = int(wheelchair.Int64)
	return &st, nil
}

func (s *SQLStore) RoutesForStop(stopID string) ([]model.RouteAtStop, error) {
	rows, err := s.db.Query(s.rebind(`
SELECT
    routes.route_id,
    routes.route_short_name,
    routes.route_long_name,
    routes.route_color,
    routes.route_text_color,
    trips.trip_headsign,
    stop_times.stop_sequence,
    seq.min_seq,
    seq.max_seq
FROM stop_times
INNER JOIN trips ON trips.trip_id = stop_times.trip_id
INNER JOIN routes ON routes.route_id = trips.route_id
INNER JOIN (
    SELECT trip_id, MIN(stop_sequence) AS min_seq, MAX(stop_sequence) AS max_seq
    FROM stop_times
    GROUP BY trip_id
) seq ON seq.trip_id = stop_times.trip_id
WHERE stop_times.stop_id = ?
ORDER BY routes.route_short_name`), stopID)
	if err != nil {
		return nil, fmt.Errorf("querying routes for stop %s: %w", stopID, err)
	}
	defer rows.Close()

	routes := []model.RouteAtStop{}
	seen := map[string]bool{}
	for rows.Next() {
		var r model.RouteAtStop
		var shortName, longName, color, textColor, headsign sql.NullString
		var stopSeq, minSeq, maxSeq int
		err := rows.Scan(
			&r.RouteID, &shortName, &longName, &color, &textColor,
			&headsign, &stopSeq, &minSeq, &maxSeq,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning route for stop: %w", err)
		}

		// One entry per distinct short name, first trip wins.
		if seen[shortName.String] {
			continue
		}
		seen[shortName.String] = true

		r.ShortName = shortName.String
		r.LongName = longName.String
		r.Color = color.String
		if r.Color == "" {
			r.Color = "FFFFFF"
		}
		r.TextColor = textColor.String
		if r.TextColor == "" {
			r.TextColor = "000000"
		}
		r.Headsign = headsign.String
		switch {
		case stopSeq == minSeq:
			r.Position = model.StopPositionOrigin
		case stopSeq == maxSeq:
			r.Position = model.StopPositionDestination
		default:
			r.Position = model.StopPositionIntermediate
		}

		routes = append(routes, r)
	}

	return routes, rows.Err()
}

func (s *SQLStore) TableCounts() map[string]int {
	counts := map[string]int{}
	for _, table := range StatsTables {
		var n int
		err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
		if err != nil {
			counts[table] = 0
			continue
		}
		counts[table] = n
	}
	return counts
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
