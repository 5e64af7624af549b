package fetcher_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybus.dev/transit/fetcher"
	"cybus.dev/transit/testutil"
)

func TestFetchWritesArchives(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "zip bytes for "+r.URL.Path)
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := fetcher.New(fetcher.Config{
		Cities: map[string]string{
			"limassol": srv.URL + "/limassol",
			"nicosia":  srv.URL + "/nicosia",
		},
		DataDir: dir,
	}, testutil.NullLogger())

	results := f.FetchAll(context.Background())
	require.Len(t, results, 2)

	for city, res := range results {
		assert.True(t, res.Success, city)
		assert.Equal(t, f.ArchivePath(city), res.Path)

		body, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		assert.Equal(t, "zip bytes for /"+city, string(body))
		assert.Equal(t, int64(len(body)), res.SizeBytes)
	}
}

func TestFetchIsolatesCityFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	f := fetcher.New(fetcher.Config{
		Cities: map[string]string{
			"good": srv.URL + "/good",
			"bad":  srv.URL + "/bad",
		},
		DataDir: t.TempDir(),
	}, testutil.NullLogger())

	results := f.FetchAll(context.Background())
	require.Len(t, results, 2)

	assert.True(t, results["good"].Success)
	assert.False(t, results["bad"].Success)
	assert.NotEmpty(t, results["bad"].Error)
}

func TestFetchUnknownCityFailsFast(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	f := fetcher.New(fetcher.Config{
		Cities:  map[string]string{"limassol": srv.URL},
		DataDir: t.TempDir(),
	}, testutil.NullLogger())

	_, err := f.Fetch(context.Background(), []string{"limassol", "atlantis"})

	var unknown *fetcher.UnknownCityError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "atlantis", unknown.City)
	assert.Equal(t, 0, requests)
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := fetcher.New(fetcher.Config{
		Cities:  map[string]string{"slow": srv.URL},
		DataDir: t.TempDir(),
		Timeout: 20 * time.Millisecond,
	}, testutil.NullLogger())

	results := f.FetchAll(context.Background())
	require.Len(t, results, 1)
	assert.False(t, results["slow"].Success)
}

func TestCitiesSorted(t *testing.T) {
	f := fetcher.New(fetcher.Config{DataDir: t.TempDir()}, testutil.NullLogger())

	cities := f.Cities()
	require.Len(t, cities, len(fetcher.DefaultCities))
	assert.Equal(t, "famagusta", cities[0])
	assert.True(t, f.Known("limassol"))
	assert.False(t, f.Known("atlantis"))
}
