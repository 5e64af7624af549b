package parse

import (
	"fmt"
	"io"

	"cybus.dev/transit/model"
)

type routeCSV struct {
	ID        string `csv:"route_id"`
	AgencyID  string `csv:"agency_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
	Desc      string `csv:"route_desc"`
	Type      string `csv:"route_type"`
	Color     string `csv:"route_color"`
	TextColor string `csv:"route_text_color"`
	SortOrder string `csv:"route_sort_order"`
}

func Routes(data io.Reader) ([]model.Route, error) {
	records := []*routeCSV{}
	if err := unmarshalCSV(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling routes csv: %w", err)
	}

	routes := make([]model.Route, 0, len(records))
	for _, r := range records {
		routes = append(routes, model.Route{
			ID:        r.ID,
			AgencyID:  r.AgencyID,
			ShortName: r.ShortName,
			LongName:  r.LongName,
			Desc:      r.Desc,
			// Bus is the sensible default for this operator.
			Type:      model.RouteType(atoiDefault(r.Type, int(model.RouteTypeBus))),
			Color:     r.Color,
			TextColor: r.TextColor,
			SortOrder: atoiDefault(r.SortOrder, 0),
		})
	}

	return routes, nil
}
