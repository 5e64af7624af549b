package transit

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"cybus.dev/transit/model"
	"cybus.dev/transit/parse"
	"cybus.dev/transit/storage"
)

// importBatchSize bounds the rows per transaction for the two large
// tables, stop_times and shapes.
const importBatchSize = 500

// Placeholder calendar bounds for service ids referenced by
// calendar_dates but missing from calendar.txt. The Cyprus feeds ship
// such ids routinely; the placeholder has no weekdays, so only the
// explicit exception dates activate it.
const (
	placeholderStartDate = 20200101
	placeholderEndDate   = 20991231
)

// Importer loads a feed archive into the store in dependency order,
// so foreign keys are satisfied as rows land. Re-importing the same
// archive is idempotent under the store's conflict policies.
type Importer struct {
	store  storage.Store
	logger *slog.Logger
}

func NewImporter(store storage.Store, logger *slog.Logger) *Importer {
	return &Importer{store: store, logger: logger}
}

// Import loads one archive and returns inserted-or-seen row counts
// per table. A file that is absent or fails to decode contributes
// zero rows; only the unreadable archive itself or a storage failure
// aborts the import.
func (im *Importer) Import(archivePath string) (map[string]int, error) {
	archive, err := parse.OpenArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	counts := map[string]int{}

	agencies := importFile(im, archive, "agency.txt", parse.Agencies)
	if err := im.store.UpsertAgencies(agencies); err != nil {
		return counts, errors.Wrap(err, "writing agencies")
	}
	counts["agency"] = len(agencies)

	stops := importFileSkipping(im, archive, "stops.txt", parse.Stops)
	if err := im.store.UpsertStops(stops); err != nil {
		return counts, errors.Wrap(err, "writing stops")
	}
	counts["stops"] = len(stops)

	routes := importFile(im, archive, "routes.txt", parse.Routes)
	if err := im.store.UpsertRoutes(routes); err != nil {
		return counts, errors.Wrap(err, "writing routes")
	}
	counts["routes"] = len(routes)

	calendars := importFile(im, archive, "calendar.txt", parse.Calendar)
	if err := im.store.UpsertCalendars(calendars); err != nil {
		return counts, errors.Wrap(err, "writing calendars")
	}
	counts["calendar"] = len(calendars)

	dates := importFile(im, archive, "calendar_dates.txt", parse.CalendarDates)
	placeholders := missingCalendars(calendars, dates)
	if len(placeholders) > 0 {
		im.logger.Info("synthesizing placeholder calendars",
			"archive", archivePath, "count", len(placeholders))
		if err := im.store.UpsertCalendars(placeholders); err != nil {
			return counts, errors.Wrap(err, "writing placeholder calendars")
		}
	}
	if err := im.store.UpsertCalendarDates(dates); err != nil {
		return counts, errors.Wrap(err, "writing calendar dates")
	}
	counts["calendar_dates"] = len(dates)

	trips := importFile(im, archive, "trips.txt", parse.Trips)
	if err := im.store.UpsertTrips(trips); err != nil {
		return counts, errors.Wrap(err, "writing trips")
	}
	counts["trips"] = len(trips)

	stopTimes := importFileSkipping(im, archive, "stop_times.txt", parse.StopTimes)
	if err := inBatches(stopTimes, im.store.UpsertStopTimes); err != nil {
		return counts, errors.Wrap(err, "writing stop times")
	}
	counts["stop_times"] = len(stopTimes)

	shapes := importFileSkipping(im, archive, "shapes.txt", parse.Shapes)
	if err := inBatches(shapes, im.store.UpsertShapes); err != nil {
		return counts, errors.Wrap(err, "writing shapes")
	}
	counts["shapes"] = len(shapes)

	fares := importFile(im, archive, "fare_attributes.txt", parse.FareAttributes)
	if err := im.store.UpsertFareAttributes(fares); err != nil {
		return counts, errors.Wrap(err, "writing fare attributes")
	}
	counts["fare_attributes"] = len(fares)

	rules := importFile(im, archive, "fare_rules.txt", parse.FareRules)
	if err := im.store.UpsertFareRules(rules); err != nil {
		return counts, errors.Wrap(err, "writing fare rules")
	}
	counts["fare_rules"] = len(rules)

	if err := im.store.EnsureIndexes(); err != nil {
		return counts, errors.Wrap(err, "creating indexes")
	}

	return counts, nil
}

// importFile decodes one archive member, degrading to an empty slice
// when the member is absent or malformed.
func importFile[T any](im *Importer, a *parse.Archive, name string, fn func(io.Reader) ([]T, error)) []T {
	r, err := a.File(name)
	if err != nil || r == nil {
		if err != nil {
			im.logger.Warn("opening feed file", "file", name, "error", err)
		}
		return nil
	}
	defer r.Close()

	rows, err := fn(r)
	if err != nil {
		im.logger.Warn("decoding feed file", "file", name, "error", err)
		return nil
	}
	return rows
}

// importFileSkipping is importFile for parsers that drop bad rows and
// report how many they skipped.
func importFileSkipping[T any](im *Importer, a *parse.Archive, name string, fn func(io.Reader) ([]T, int, error)) []T {
	r, err := a.File(name)
	if err != nil || r == nil {
		if err != nil {
			im.logger.Warn("opening feed file", "file", name, "error", err)
		}
		return nil
	}
	defer r.Close()

	rows, skipped, err := fn(r)
	if err != nil {
		im.logger.Warn("decoding feed file", "file", name, "error", err)
		return nil
	}
	if skipped > 0 {
		im.logger.Warn("skipped malformed rows", "file", name, "skipped", skipped)
	}
	return rows
}

func inBatches[T any](rows []T, upsert func([]T) error) error {
	for start := 0; start < len(rows); start += importBatchSize {
		end := start + importBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := upsert(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// missingCalendars synthesizes a placeholder calendar row for every
// service id that calendar_dates references but calendar.txt lacks.
func missingCalendars(calendars []model.Calendar, dates []model.CalendarDate) []model.Calendar {
	known := make(map[string]bool, len(calendars))
	for _, c := range calendars {
		known[c.ServiceID] = true
	}

	var placeholders []model.Calendar
	for _, d := range dates {
		if known[d.ServiceID] {
			continue
		}
		known[d.ServiceID] = true
		placeholders = append(placeholders, model.Calendar{
			ServiceID: d.ServiceID,
			StartDate: placeholderStartDate,
			EndDate:   placeholderEndDate,
		})
	}
	return placeholders
}
