package parse

import (
	"fmt"
	"io"

	"cybus.dev/transit/model"
)

type calendarDateCSV struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType string `csv:"exception_type"`
}

func CalendarDates(data io.Reader) ([]model.CalendarDate, error) {
	records := []*calendarDateCSV{}
	if err := unmarshalCSV(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling calendar_dates csv: %w", err)
	}

	dates := make([]model.CalendarDate, 0, len(records))
	for _, cd := range records {
		if cd.ServiceID == "" {
			continue
		}
		dates = append(dates, model.CalendarDate{
			ServiceID:     cd.ServiceID,
			Date:          atoiDefault(cd.Date, 0),
			ExceptionType: model.ExceptionType(atoiDefault(cd.ExceptionType, int(model.ServiceAdded))),
		})
	}

	return dates, nil
}
