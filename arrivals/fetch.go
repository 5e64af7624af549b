// Package arrivals scrapes live arrival predictions from the
// operator's per-stop pages and fuses them with static route
// metadata. Live data is best effort: every failure path degrades to
// an empty board, never to a user-visible error.
package arrivals

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cybus.dev/transit/gtfstime"
	"cybus.dev/transit/model"
)

const (
	DefaultBaseURL = "https://motionbuscard.org.cy/routes/stop"
	DefaultTimeout = 10 * time.Second

	// Markup hooks on the operator's stop page.
	itemSelector    = ".arrivalTimes__list__item"
	routeSelector   = ".line__item__text"
	arrivalSelector = ".arrivalTimes__list__item__link__text2"

	// The route label carries a Greek "route" suffix to strip.
	routeLabelSuffix = "Διαδρομή"

	// Marker for relative predictions ("5 Λεπτά" = 5 minutes).
	minutesMarker = "Λεπτά"

	// Shown when no live estimate exists, only the schedule.
	// Verbatim from the page, upstream typos included.
	schedulePlaceholder = "Προβλεπόενη ώρα σύμφων με το χρονοδιάγραμμα"
)

type Fetcher struct {
	// BaseURL has the stop id appended as a path segment.
	BaseURL string

	// Now is the clock, in the Cyprus offset. Overridable in
	// tests to pin midnight-rollover behavior.
	Now func() time.Time

	client *http.Client
	logger *slog.Logger
}

func NewFetcher(baseURL string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Fetcher{
		BaseURL: baseURL,
		Now:     gtfstime.Now,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Fetch scrapes live predictions for a stop. Timeouts, bad statuses
// and unparseable entries all degrade to fewer (or zero) results.
func (f *Fetcher) Fetch(ctx context.Context, stopID string) []model.LiveArrival {
	url := f.BaseURL + "/" + stopID

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		f.logger.Error("building live request", "stop_id", stopID, "error", err)
		return nil
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("live fetch failed", "stop_id", stopID, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Debug("live page returned non-OK", "stop_id", stopID, "status", resp.StatusCode)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		f.logger.Warn("parsing live page", "stop_id", stopID, "error", err)
		return nil
	}

	return f.scrape(doc)
}

func (f *Fetcher) scrape(doc *goquery.Document) []model.LiveArrival {
	live := []model.LiveArrival{}

	doc.Find(itemSelector).Each(func(i int, item *goquery.Selection) {
		routeSel := item.Find(routeSelector)
		arrivalSel := item.Find(arrivalSelector)
		if routeSel.Length() == 0 || arrivalSel.Length() == 0 {
			return
		}

		routeName := strings.TrimSpace(strings.Split(strings.TrimSpace(routeSel.Text()), routeLabelSuffix)[0])
		arrivalText := strings.TrimSpace(arrivalSel.Text())

		if routeName == "" || arrivalText == schedulePlaceholder {
			return
		}

		arrival, ok := f.parseArrival(arrivalText)
		if !ok {
			return
		}
		arrival.RouteName = routeName
		live = append(live, arrival)
	})

	return live
}

// parseArrival handles the two time shapes the page produces:
// "5 Λεπτά" (minutes from now) and "19:30" (absolute wall clock). An
// absolute time earlier than now belongs to tomorrow; negative
// minutes after that adjustment mean a skewed upstream clock and are
// discarded.
func (f *Fetcher) parseArrival(text string) (model.LiveArrival, bool) {
	now := f.Now()

	if strings.Contains(text, minutesMarker) {
		minutes, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(text, minutesMarker, "")))
		if err != nil || minutes < 0 {
			return model.LiveArrival{}, false
		}
		return model.LiveArrival{
			ArrivalTime: gtfstime.Format(now.Add(time.Duration(minutes) * time.Minute)),
			MinutesLeft: minutes,
		}, true
	}

	at, err := gtfstime.Parse(text+":00", now)
	if err != nil {
		f.logger.Debug("unparseable live arrival time", "text", text, "error", err)
		return model.LiveArrival{}, false
	}
	if at.Before(now) {
		at, _ = gtfstime.Parse(text+":00", now.AddDate(0, 0, 1))
	}

	minutes := int(math.Round(at.Sub(now).Minutes()))
	if minutes < 0 {
		return model.LiveArrival{}, false
	}

	return model.LiveArrival{
		ArrivalTime: text,
		MinutesLeft: minutes,
	}, true
}
