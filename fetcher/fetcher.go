// Package fetcher downloads city feed archives to a local artifact
// directory. Cities are independent: one city failing never aborts or
// corrupts the result of another.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"cybus.dev/transit/downloader"
)

// DefaultCities maps the operator's seven published datasets to their
// download URLs.
var DefaultCities = map[string]string{
	"limassol":     "https://motionbuscard.org.cy/opendata/downloadfile?file=GTFS%5C6_google_transit.zip&rel=True",
	"pafos":        "https://motionbuscard.org.cy/opendata/downloadfile?file=GTFS%5C2_google_transit.zip&rel=True",
	"famagusta":    "https://motionbuscard.org.cy/opendata/downloadfile?file=GTFS%5C4_google_transit.zip&rel=True",
	"intercity":    "https://motionbuscard.org.cy/opendata/downloadfile?file=GTFS%5C5_google_transit.zip&rel=True",
	"nicosia":      "https://motionbuscard.org.cy/opendata/downloadfile?file=GTFS%5C9_google_transit.zip&rel=True",
	"larnaca":      "https://motionbuscard.org.cy/opendata/downloadfile?file=GTFS%5C10_google_transit.zip&rel=True",
	"pame_express": "https://motionbuscard.org.cy/opendata/downloadfile?file=GTFS%5C11_google_transit.zip&rel=True",
}

const (
	DefaultTimeout = 60 * time.Second
	DefaultWorkers = 3
)

// UnknownCityError reports a city id missing from the registry. It is
// raised before any network call.
type UnknownCityError struct {
	City string
}

func (e *UnknownCityError) Error() string {
	return fmt.Sprintf("unknown city: %s", e.City)
}

// Result is the per-city outcome of a download run.
type Result struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	Path      string `json:"path,omitempty"`
}

type Config struct {
	// Cities maps city id to archive URL. Defaults to
	// DefaultCities.
	Cities map[string]string

	// DataDir is where per-city archives land, as <city>.zip.
	DataDir string

	// Timeout bounds each download. One attempt, no retries.
	Timeout time.Duration

	// Workers caps concurrent downloads.
	Workers int
}

type Fetcher struct {
	cities  map[string]string
	dataDir string
	timeout time.Duration
	workers int
	logger  *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Fetcher {
	if cfg.Cities == nil {
		cfg.Cities = DefaultCities
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Fetcher{
		cities:  cfg.Cities,
		dataDir: cfg.DataDir,
		timeout: cfg.Timeout,
		workers: cfg.Workers,
		logger:  logger,
	}
}

// Cities lists the known city ids, sorted.
func (f *Fetcher) Cities() []string {
	cities := make([]string, 0, len(f.cities))
	for city := range f.cities {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}

// Known reports whether a city id is in the registry.
func (f *Fetcher) Known(city string) bool {
	_, ok := f.cities[city]
	return ok
}

// ArchivePath is where a city's downloaded archive lives.
func (f *Fetcher) ArchivePath(city string) string {
	return filepath.Join(f.dataDir, city+".zip")
}

// Fetch downloads the named cities' archives, bounded by the worker
// cap. Network failures and bad statuses land in the per-city Result;
// only an unknown city id is an error, and it is raised before any
// network traffic.
func (f *Fetcher) Fetch(ctx context.Context, cities []string) (map[string]Result, error) {
	for _, city := range cities {
		if !f.Known(city) {
			return nil, &UnknownCityError{City: city}
		}
	}

	if err := os.MkdirAll(f.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	results := make(map[string]Result, len(cities))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, f.workers)

	for _, city := range cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := f.fetchOne(ctx, city)
			mu.Lock()
			results[city] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	return results, nil
}

// FetchAll downloads every registered city.
func (f *Fetcher) FetchAll(ctx context.Context) map[string]Result {
	// All ids come from the registry, so Fetch cannot fail fast.
	results, _ := f.Fetch(ctx, f.Cities())
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, city string) Result {
	url := f.cities[city]
	f.logger.Info("downloading feed", "city", city)

	body, err := downloader.Get(ctx, url, downloader.GetOptions{
		Timeout: f.timeout,
	})
	if err != nil {
		f.logger.Error("feed download failed", "city", city, "error", err)
		return Result{Error: err.Error()}
	}

	path := f.ArchivePath(city)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		f.logger.Error("writing archive failed", "city", city, "error", err)
		return Result{Error: err.Error()}
	}

	f.logger.Info("downloaded feed", "city", city, "bytes", len(body))
	return Result{
		Success:   true,
		SizeBytes: int64(len(body)),
		Path:      path,
	}
}
