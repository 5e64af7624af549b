package parse

import (
	"fmt"
	"io"
	"time"

	"cybus.dev/transit/model"
)

type calendarCSV struct {
	ServiceID string `csv:"service_id"`
	Monday    string `csv:"monday"`
	Tuesday   string `csv:"tuesday"`
	Wednesday string `csv:"wednesday"`
	Thursday  string `csv:"thursday"`
	Friday    string `csv:"friday"`
	Saturday  string `csv:"saturday"`
	Sunday    string `csv:"sunday"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
}

func Calendar(data io.Reader) ([]model.Calendar, error) {
	records := []*calendarCSV{}
	if err := unmarshalCSV(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling calendar csv: %w", err)
	}

	cals := make([]model.Calendar, 0, len(records))
	for _, c := range records {
		var weekday int8
		if atoiDefault(c.Monday, 0) == 1 {
			weekday |= 1 << time.Monday
		}
		if atoiDefault(c.Tuesday, 0) == 1 {
			weekday |= 1 << time.Tuesday
		}
		if atoiDefault(c.Wednesday, 0) == 1 {
			weekday |= 1 << time.Wednesday
		}
		if atoiDefault(c.Thursday, 0) == 1 {
			weekday |= 1 << time.Thursday
		}
		if atoiDefault(c.Friday, 0) == 1 {
			weekday |= 1 << time.Friday
		}
		if atoiDefault(c.Saturday, 0) == 1 {
			weekday |= 1 << time.Saturday
		}
		if atoiDefault(c.Sunday, 0) == 1 {
			weekday |= 1 << time.Sunday
		}

		cals = append(cals, model.Calendar{
			ServiceID: c.ServiceID,
			Weekday:   weekday,
			StartDate: atoiDefault(c.StartDate, 0),
			EndDate:   atoiDefault(c.EndDate, 0),
		})
	}

	return cals, nil
}
