// Package transit ties the feed pipeline together: downloading the
// per-city archives, importing them into the store, and serving the
// live arrival board for a stop.
package transit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"cybus.dev/transit/arrivals"
	"cybus.dev/transit/fetcher"
	"cybus.dev/transit/gtfstime"
	"cybus.dev/transit/model"
	"cybus.dev/transit/storage"
)

// CityAll selects every registered city in download and import
// operations.
const CityAll = "all"

// ArchiveNotFoundError reports an import requested for a city whose
// archive has not been downloaded yet.
type ArchiveNotFoundError struct {
	City string
	Path string
}

func (e *ArchiveNotFoundError) Error() string {
	return fmt.Sprintf("no downloaded archive for %s (expected %s)", e.City, e.Path)
}

// ErrNoFeedsDownloaded is returned by Sync when every city download
// failed, leaving nothing to import.
var ErrNoFeedsDownloaded = errors.New("no feeds downloaded")

// ImportResult is the per-city outcome of an import run.
type ImportResult struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	RowCounts map[string]int `json:"row_counts,omitempty"`
}

// ArrivalBoard is the response for a stop's arrival query.
type ArrivalBoard struct {
	StopID   string                 `json:"stop_id"`
	StopName string                 `json:"stop_name"`
	Arrivals []model.Arrival        `json:"arrivals"`
	Routes   []model.RouteAtStop    `json:"routes"`
	Alerts   []model.TransportAlert `json:"alerts"`
}

// DisplayContent is the auxiliary content shown alongside the board.
type DisplayContent struct {
	Ads  []model.Ad             `json:"ads"`
	News []model.GovernmentNews `json:"news"`
}

type Service struct {
	store    storage.Store
	fetcher  *fetcher.Fetcher
	importer *Importer
	live     *arrivals.Fetcher
	logger   *slog.Logger
}

// NewService wires a service from config. The caller owns the store
// and closes it via Close.
func NewService(cfg Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	var store storage.Store
	var err error
	switch cfg.Storage.Driver {
	case "postgres":
		store, err = storage.NewPostgresStore(cfg.Storage.DSN)
	default:
		store, err = storage.NewSQLiteStore(cfg.Storage.DSN)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening store")
	}

	f := fetcher.New(fetcher.Config{
		Cities:  cfg.Fetch.Cities,
		DataDir: cfg.DataDir,
		Timeout: time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		Workers: cfg.Fetch.Workers,
	}, logger)

	return &Service{
		store:    store,
		fetcher:  f,
		importer: NewImporter(store, logger),
		live:     arrivals.NewFetcher(cfg.Live.BaseURL, time.Duration(cfg.Live.TimeoutSeconds)*time.Second, logger),
		logger:   logger,
	}, nil
}

func (s *Service) Close() error {
	return s.store.Close()
}

// Cities lists the known city ids, sorted.
func (s *Service) Cities() []string {
	return s.fetcher.Cities()
}

// Download fetches the archive for one city, or for every city when
// given CityAll. Per-city failures land in the result map; only an
// unknown city id is an error.
func (s *Service) Download(ctx context.Context, city string) (map[string]fetcher.Result, error) {
	if city == CityAll {
		return s.fetcher.FetchAll(ctx), nil
	}
	return s.fetcher.Fetch(ctx, []string{city})
}

// Import loads the downloaded archive for one city, or every
// downloaded archive when given CityAll, returning per-city results.
// Only an unknown city id or a specifically requested city with no
// downloaded archive is an error; with CityAll, cities without an
// archive are skipped and a failing city does not stop the rest.
func (s *Service) Import(ctx context.Context, city string) (map[string]ImportResult, error) {
	if city != CityAll {
		if !s.fetcher.Known(city) {
			return nil, &fetcher.UnknownCityError{City: city}
		}
		path := s.fetcher.ArchivePath(city)
		if _, err := os.Stat(path); err != nil {
			return nil, &ArchiveNotFoundError{City: city, Path: path}
		}
		return map[string]ImportResult{city: s.importCity(ctx, city, path)}, nil
	}

	results := map[string]ImportResult{}
	for _, c := range s.fetcher.Cities() {
		path := s.fetcher.ArchivePath(c)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		results[c] = s.importCity(ctx, c, path)
	}
	return results, nil
}

func (s *Service) importCity(ctx context.Context, city, path string) ImportResult {
	if err := ctx.Err(); err != nil {
		return ImportResult{Error: err.Error()}
	}
	s.logger.Info("importing feed", "city", city, "archive", path)
	counts, err := s.importer.Import(path)
	if err != nil {
		s.logger.Error("importing feed failed", "city", city, "error", err)
		return ImportResult{Error: err.Error()}
	}
	s.logger.Info("imported feed", "city", city, "stops", counts["stops"],
		"trips", counts["trips"], "stop_times", counts["stop_times"])
	return ImportResult{Success: true, RowCounts: counts}
}

// Sync downloads and imports one city's archive, or every city's when
// given CityAll. A single-city sync fails as soon as its download
// fails; a full sync fails only when no download succeeded at all.
func (s *Service) Sync(ctx context.Context, city string) (map[string]ImportResult, error) {
	if city != CityAll {
		downloads, err := s.fetcher.Fetch(ctx, []string{city})
		if err != nil {
			return nil, err
		}
		dl := downloads[city]
		if !dl.Success {
			return nil, errors.Errorf("downloading %s: %s", city, dl.Error)
		}
		return map[string]ImportResult{city: s.importCity(ctx, city, dl.Path)}, nil
	}

	downloads := s.fetcher.FetchAll(ctx)

	succeeded := 0
	for _, r := range downloads {
		if r.Success {
			succeeded++
		}
	}
	if succeeded == 0 {
		return nil, ErrNoFeedsDownloaded
	}

	results := map[string]ImportResult{}
	for city, dl := range downloads {
		if !dl.Success {
			results[city] = ImportResult{Error: dl.Error}
			continue
		}
		results[city] = s.importCity(ctx, city, dl.Path)
	}
	return results, nil
}

// Stats reports row counts for the main feed tables.
func (s *Service) Stats() map[string]int {
	return s.store.TableCounts()
}

// Arrivals builds the live board for a stop: static routes joined
// with scraped live times, plus any active alerts covering the stop.
// An unknown stop still gets a board, with a placeholder name, since
// the live source may know stops the static feed does not.
func (s *Service) Arrivals(ctx context.Context, stopID string) (*ArrivalBoard, error) {
	stop, err := s.store.Stop(stopID)
	if err != nil {
		return nil, errors.Wrap(err, "loading stop")
	}

	stopName := "Stop " + stopID
	if stop != nil {
		stopName = stop.Name
	}

	routes, err := s.store.RoutesForStop(stopID)
	if err != nil {
		return nil, errors.Wrap(err, "loading routes for stop")
	}

	live := s.live.Fetch(ctx, stopID)

	alerts, err := s.store.ActiveAlertsForStop(stopID, gtfstime.Now())
	if err != nil {
		s.logger.Warn("loading alerts", "stop_id", stopID, "error", err)
		alerts = nil
	}
	if alerts == nil {
		alerts = []model.TransportAlert{}
	}

	if routes == nil {
		routes = []model.RouteAtStop{}
	}

	return &ArrivalBoard{
		StopID:   stopID,
		StopName: stopName,
		Arrivals: arrivals.Enrich(live, routes),
		Routes:   routes,
		Alerts:   alerts,
	}, nil
}

// RoutesForStop lists the static routes serving a stop.
func (s *Service) RoutesForStop(stopID string) ([]model.RouteAtStop, error) {
	return s.store.RoutesForStop(stopID)
}

// Stops lists stops with usable coordinates, optionally filtered by
// stop_id prefix (the city code in these feeds).
func (s *Service) Stops(prefix string, limit int) ([]model.Stop, error) {
	return s.store.ListStops(prefix, limit)
}

// NearbyStops lists the stops closest to a point.
func (s *Service) NearbyStops(lat, lon float64, limit int) ([]model.Stop, error) {
	return s.store.NearbyStops(lat, lon, limit)
}

// Display returns the currently active ads and news items.
func (s *Service) Display(ctx context.Context) (*DisplayContent, error) {
	now := gtfstime.Now()

	ads, err := s.store.ActiveAds(now)
	if err != nil {
		return nil, errors.Wrap(err, "loading ads")
	}
	news, err := s.store.ActiveNews(now)
	if err != nil {
		return nil, errors.Wrap(err, "loading news")
	}

	if ads == nil {
		ads = []model.Ad{}
	}
	if news == nil {
		news = []model.GovernmentNews{}
	}
	return &DisplayContent{Ads: ads, News: news}, nil
}
