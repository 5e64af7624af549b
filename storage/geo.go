package storage

import (
	"database/sql"
	"fmt"
	"math"
	"sort"

	"cybus.dev/transit/model"
)

// HaversineDistance returns the great-circle distance in km between
// two coordinates.
func HaversineDistance(aLat, aLon, bLat, bLon float64) float64 {
	const earthRadiusKm = 6371

	aLatRad := aLat * math.Pi / 180
	aLonRad := aLon * math.Pi / 180
	bLatRad := bLat * math.Pi / 180
	bLonRad := bLon * math.Pi / 180
	deltaLat := aLatRad - bLatRad
	deltaLon := aLonRad - bLonRad

	a := math.Cos(aLatRad)*math.Cos(bLatRad)*math.Pow(math.Sin(deltaLon/2), 2) + math.Pow(math.Sin(deltaLat/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return c * earthRadiusKm
}

// ListStops returns stops with usable coordinates, ordered by name.
// The prefix filters on stop_id, which encodes the city in these
// feeds. A limit <= 0 means no limit.
func (s *SQLStore) ListStops(prefix string, limit int) ([]model.Stop, error) {
	query := `
SELECT stop_id, stop_code, stop_name, zone_id, stop_lat, stop_lon
FROM stops
WHERE stop_lat != 0 AND stop_lon != 0`
	args := []interface{}{}
	if prefix != "" {
		query += ` AND stop_id LIKE ?`
		args = append(args, prefix+"%")
	}
	query += ` ORDER BY stop_name`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying stops: %w", err)
	}
	defer rows.Close()

	return scanStopRows(rows)
}

// NearbyStops returns up to limit stops sorted by distance from the
// given point.
func (s *SQLStore) NearbyStops(lat, lon float64, limit int) ([]model.Stop, error) {
	stops, err := s.ListStops("", 0)
	if err != nil {
		return nil, err
	}

	sort.Slice(stops, func(i, j int) bool {
		di := HaversineDistance(lat, lon, stops[i].Lat, stops[i].Lon)
		dj := HaversineDistance(lat, lon, stops[j].Lat, stops[j].Lon)
		return di < dj
	})

	if limit > 0 && len(stops) > limit {
		stops = stops[:limit]
	}
	return stops, nil
}

func scanStopRows(rows *sql.Rows) ([]model.Stop, error) {
	stops := []model.Stop{}
	for rows.Next() {
		var st model.Stop
		var code, zone sql.NullString
		if err := rows.Scan(&st.ID, &code, &st.Name, &zone, &st.Lat, &st.Lon); err != nil {
			return nil, fmt.Errorf("scanning stop: %w", err)
		}
		st.Code = code.String
		st.ZoneID = zone.String
		stops = append(stops, st)
	}
	return stops, rows.Err()
}
