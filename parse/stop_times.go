package parse

import (
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"cybus.dev/transit/model"
)

type stopTimeCSV struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	StopSequence  string `csv:"stop_sequence"`
	Headsign      string `csv:"stop_headsign"`
	PickupType    string `csv:"pickup_type"`
	DropOffType   string `csv:"drop_off_type"`
	DistTraveled  string `csv:"shape_dist_traveled"`
	Timepoint     string `csv:"timepoint"`
}

// StopTimes decodes stop_times.txt via a streaming callback, as the
// file tends to dwarf the rest of the archive. Arrival and departure
// are kept as raw clock strings; rows with a non-numeric
// stop_sequence are dropped and counted.
func StopTimes(data io.Reader) ([]model.StopTime, int, error) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	stopTimes := []model.StopTime{}
	skipped := 0

	err := gocsv.UnmarshalToCallbackWithError(data, func(st *stopTimeCSV) error {
		seq, err := strconv.Atoi(st.StopSequence)
		if err != nil {
			skipped++
			return nil
		}

		stopTimes = append(stopTimes, model.StopTime{
			TripID:       st.TripID,
			StopID:       st.StopID,
			StopSequence: seq,
			Arrival:      st.ArrivalTime,
			Departure:    st.DepartureTime,
			Headsign:     st.Headsign,
			PickupType:   atoiDefault(st.PickupType, 0),
			DropOffType:  atoiDefault(st.DropOffType, 0),
			DistTraveled: atofDefault(st.DistTraveled, 0),
			Timepoint:    atoiDefault(st.Timepoint, 1),
		})
		return nil
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "unmarshaling stop_times csv")
	}

	return stopTimes, skipped, nil
}
