package testutil

// Helpers for building feed archives and stores in tests.

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"cybus.dev/transit/storage"
)

// BuildStore returns an on-disk SQLite store in a temp dir, removed
// with the test.
func BuildStore(t testing.TB) storage.Store {
	t.Helper()

	s, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "transit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

// NullLogger discards everything. Tests that assert on behavior, not
// log output, use it to keep `go test` quiet.
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// BuildZip assembles a feed archive from filename to CSV lines.
func BuildZip(t testing.TB, files map[string][]string) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

// WriteZip builds a feed archive and writes it to disk, returning the
// path.
func WriteZip(t testing.TB, dir, name string, files map[string][]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, BuildZip(t, files), 0644))
	return path
}

// BuildFeed fills in minimal versions of the required files, so a
// test only states the tables it cares about.
func BuildFeed(t testing.TB, files map[string][]string) []byte {
	t.Helper()

	if files["agency.txt"] == nil {
		files["agency.txt"] = []string{
			"agency_id,agency_name,agency_url,agency_timezone",
			"1,Test Agency,http://example.com,Asia/Nicosia",
		}
	}
	if files["stops.txt"] == nil {
		files["stops.txt"] = []string{"stop_id,stop_name,stop_lat,stop_lon"}
	}
	if files["routes.txt"] == nil {
		files["routes.txt"] = []string{"route_id,route_short_name,route_long_name,route_type"}
	}
	if files["calendar.txt"] == nil && files["calendar_dates.txt"] == nil {
		files["calendar.txt"] = []string{
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
		}
	}
	if files["trips.txt"] == nil {
		files["trips.txt"] = []string{"route_id,service_id,trip_id"}
	}
	if files["stop_times.txt"] == nil {
		files["stop_times.txt"] = []string{"trip_id,arrival_time,departure_time,stop_id,stop_sequence"}
	}

	return BuildZip(t, files)
}
