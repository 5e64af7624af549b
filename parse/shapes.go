package parse

import (
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"cybus.dev/transit/model"
)

type shapeCSV struct {
	ID           string `csv:"shape_id"`
	Lat          string `csv:"shape_pt_lat"`
	Lon          string `csv:"shape_pt_lon"`
	Sequence     string `csv:"shape_pt_sequence"`
	DistTraveled string `csv:"shape_dist_traveled"`
}

// Shapes decodes shapes.txt, dropping and counting rows whose
// lat/lon/sequence fail numeric parse.
func Shapes(data io.Reader) ([]model.Shape, int, error) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})

	shapes := []model.Shape{}
	skipped := 0

	err := gocsv.UnmarshalToCallbackWithError(data, func(sh *shapeCSV) error {
		lat, latErr := strconv.ParseFloat(sh.Lat, 64)
		lon, lonErr := strconv.ParseFloat(sh.Lon, 64)
		seq, seqErr := strconv.Atoi(sh.Sequence)
		if latErr != nil || lonErr != nil || seqErr != nil {
			skipped++
			return nil
		}

		shapes = append(shapes, model.Shape{
			ID:           sh.ID,
			Lat:          lat,
			Lon:          lon,
			Sequence:     seq,
			DistTraveled: atofDefault(sh.DistTraveled, 0),
		})
		return nil
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "unmarshaling shapes csv")
	}

	return shapes, skipped, nil
}
