package parse

import (
	"fmt"
	"io"

	"cybus.dev/transit/model"
)

type tripCSV struct {
	ID                   string `csv:"trip_id"`
	RouteID              string `csv:"route_id"`
	ServiceID            string `csv:"service_id"`
	Headsign             string `csv:"trip_headsign"`
	ShortName            string `csv:"trip_short_name"`
	DirectionID          string `csv:"direction_id"`
	BlockID              string `csv:"block_id"`
	ShapeID              string `csv:"shape_id"`
	WheelchairAccessible string `csv:"wheelchair_accessible"`
	BikesAllowed         string `csv:"bikes_allowed"`
}

func Trips(data io.Reader) ([]model.Trip, error) {
	records := []*tripCSV{}
	if err := unmarshalCSV(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling trips csv: %w", err)
	}

	trips := make([]model.Trip, 0, len(records))
	for _, t := range records {
		trips = append(trips, model.Trip{
			ID:                   t.ID,
			RouteID:              t.RouteID,
			ServiceID:            t.ServiceID,
			Headsign:             t.Headsign,
			ShortName:            t.ShortName,
			DirectionID:          atoiDefault(t.DirectionID, 0),
			BlockID:              t.BlockID,
			ShapeID:              t.ShapeID,
			WheelchairAccessible: atoiDefault(t.WheelchairAccessible, 0),
			BikesAllowed:         atoiDefault(t.BikesAllowed, 0),
		})
	}

	return trips, nil
}
