package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cybus.dev/transit/model"
	"cybus.dev/transit/testutil"
)

func TestArchiveFileMatchesBasename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.zip")
	require.NoError(t, os.WriteFile(path, testutil.BuildZip(t, map[string][]string{
		"google_transit/stops.txt": {"stop_id,stop_name,stop_lat,stop_lon", "1,Center,34.7,33.0"},
	}), 0644))

	archive, err := OpenArchive(path)
	require.NoError(t, err)
	defer archive.Close()

	r, err := archive.File("stops.txt")
	require.NoError(t, err)
	require.NotNil(t, r)
	defer r.Close()

	stops, skipped, err := Stops(r)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, stops, 1)
	assert.Equal(t, "Center", stops[0].Name)
}

func TestArchiveFileAbsentIsNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.zip")
	require.NoError(t, os.WriteFile(path, testutil.BuildZip(t, map[string][]string{
		"stops.txt": {"stop_id"},
	}), 0644))

	archive, err := OpenArchive(path)
	require.NoError(t, err)
	defer archive.Close()

	r, err := archive.File("shapes.txt")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestOpenArchiveCorrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.zip")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip"), 0644))

	_, err := OpenArchive(path)
	assert.Error(t, err)
}

func TestAgenciesDefaults(t *testing.T) {
	csv := strings.Join([]string{
		"agency_id,agency_name,agency_url,agency_timezone,agency_lang",
		"9,OSEL,https://osel.com.cy,Asia/Nicosia,el",
		"10,EMEL,https://example.com,,",
	}, "\n")

	agencies, err := Agencies(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, agencies, 2)

	assert.Equal(t, "OSEL", agencies[0].Name)
	assert.Equal(t, "Asia/Nicosia", agencies[1].Timezone)
	assert.Equal(t, "el", agencies[1].Lang)
}

func TestAgenciesBOM(t *testing.T) {
	csv := "\uFEFFagency_id,agency_name,agency_url,agency_timezone\n1,Agency,http://a.example,Asia/Nicosia"

	agencies, err := Agencies(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, agencies, 1)
	assert.Equal(t, "1", agencies[0].ID)
}

func TestStopsSkipsBadCoordinates(t *testing.T) {
	csv := strings.Join([]string{
		"stop_id,stop_name,stop_lat,stop_lon",
		"1,Good,34.707,33.022",
		"2,NoLat,,33.0",
		"3,BadLon,34.7,not-a-number",
	}, "\n")

	stops, skipped, err := Stops(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, stops, 1)
	assert.Equal(t, "1", stops[0].ID)
	assert.InDelta(t, 34.707, stops[0].Lat, 0.0001)
}

func TestRoutesDefaultsToBus(t *testing.T) {
	csv := strings.Join([]string{
		"route_id,route_short_name,route_long_name,route_type",
		"r1,30,Center to Port,",
		"r2,A,Airport,2",
	}, "\n")

	routes, err := Routes(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, model.RouteTypeBus, routes[0].Type)
	assert.Equal(t, model.RouteType(2), routes[1].Type)
}

func TestCalendarWeekdayBits(t *testing.T) {
	csv := strings.Join([]string{
		"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
		"wk,1,1,1,1,1,0,0,20240101,20241231",
		"sun,0,0,0,0,0,0,1,20240101,20241231",
	}, "\n")

	cals, err := Calendar(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, cals, 2)

	wk := cals[0]
	assert.NotZero(t, wk.Weekday&(1<<time.Monday))
	assert.NotZero(t, wk.Weekday&(1<<time.Friday))
	assert.Zero(t, wk.Weekday&(1<<time.Saturday))
	assert.Equal(t, 20240101, wk.StartDate)

	assert.Equal(t, int8(1<<time.Sunday), cals[1].Weekday)
}

func TestCalendarDatesSkipsEmptyServiceID(t *testing.T) {
	csv := strings.Join([]string{
		"service_id,date,exception_type",
		"hol,20240401,1",
		",20240402,2",
		"hol,20240403,",
	}, "\n")

	dates, err := CalendarDates(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, model.ServiceAdded, dates[0].ExceptionType)
	assert.Equal(t, 20240403, dates[1].Date)
	assert.Equal(t, model.ServiceAdded, dates[1].ExceptionType)
}

func TestStopTimesKeepsRolloverStrings(t *testing.T) {
	csv := strings.Join([]string{
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
		"t1,23:55:00,23:55:00,1,1",
		"t1,25:30:00,25:31:00,2,2",
		"t1,bad,times,3,not-a-number",
	}, "\n")

	stopTimes, skipped, err := StopTimes(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, stopTimes, 2)
	assert.Equal(t, "25:30:00", stopTimes[1].Arrival)
	assert.Equal(t, 2, stopTimes[1].StopSequence)
	assert.Equal(t, 1, stopTimes[0].Timepoint)
}

func TestShapesSkipsBadRows(t *testing.T) {
	csv := strings.Join([]string{
		"shape_id,shape_pt_lat,shape_pt_lon,shape_pt_sequence",
		"s1,34.7,33.0,1",
		"s1,nope,33.1,2",
		"s1,34.8,33.1,3",
	}, "\n")

	shapes, skipped, err := Shapes(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, shapes, 2)
	assert.Equal(t, 3, shapes[1].Sequence)
}

func TestTrips(t *testing.T) {
	csv := strings.Join([]string{
		"route_id,service_id,trip_id,trip_headsign,direction_id,shape_id",
		"r1,wk,t1,Limassol Port,0,s1",
	}, "\n")

	trips, err := Trips(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "Limassol Port", trips[0].Headsign)
	assert.Equal(t, "s1", trips[0].ShapeID)
}

func TestFares(t *testing.T) {
	attrCSV := strings.Join([]string{
		"fare_id,price,currency_type,payment_method,transfers",
		"adult,1.5,EUR,0,0",
	}, "\n")

	attrs, err := FareAttributes(strings.NewReader(attrCSV))
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.InDelta(t, 1.5, attrs[0].Price, 0.0001)
	assert.Equal(t, "EUR", attrs[0].CurrencyType)

	ruleCSV := strings.Join([]string{
		"fare_id,route_id",
		"adult,r1",
	}, "\n")

	rules, err := FareRules(strings.NewReader(ruleCSV))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "r1", rules[0].RouteID)
}
