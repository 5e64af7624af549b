package parse

import (
	"fmt"
	"io"
	"strconv"

	"cybus.dev/transit/model"
)

type stopCSV struct {
	ID                 string `csv:"stop_id"`
	Code               string `csv:"stop_code"`
	Name               string `csv:"stop_name"`
	Desc               string `csv:"stop_desc"`
	Lat                string `csv:"stop_lat"`
	Lon                string `csv:"stop_lon"`
	ZoneID             string `csv:"zone_id"`
	LocationType       string `csv:"location_type"`
	ParentStation      string `csv:"parent_station"`
	WheelchairBoarding string `csv:"wheelchair_boarding"`
}

// Stops decodes stops.txt. Rows whose lat/lon fail numeric parse are
// dropped rather than stored with zeroes that look like coordinates;
// the second return value counts the dropped rows.
func Stops(data io.Reader) ([]model.Stop, int, error) {
	records := []*stopCSV{}
	if err := unmarshalCSV(data, &records); err != nil {
		return nil, 0, fmt.Errorf("unmarshaling stops csv: %w", err)
	}

	stops := make([]model.Stop, 0, len(records))
	skipped := 0
	for _, st := range records {
		lat, latErr := strconv.ParseFloat(st.Lat, 64)
		lon, lonErr := strconv.ParseFloat(st.Lon, 64)
		if latErr != nil || lonErr != nil {
			skipped++
			continue
		}

		stops = append(stops, model.Stop{
			ID:                 st.ID,
			Code:               st.Code,
			Name:               st.Name,
			Desc:               st.Desc,
			Lat:                lat,
			Lon:                lon,
			ZoneID:             st.ZoneID,
			LocationType:       model.LocationType(atoiDefault(st.LocationType, 0)),
			ParentStation:      st.ParentStation,
			WheelchairBoarding: atoiDefault(st.WheelchairBoarding, 0),
		})
	}

	return stops, skipped, nil
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func atofDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
