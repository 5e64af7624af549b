package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cybus.dev/transit/model"
)

// Display-content reads and writes. The CRUD surface managing these
// lives outside the core; these queries feed the arrival board.

func (s *SQLStore) insertReturningID(query string, args ...interface{}) (int64, error) {
	if s.numberedArgs {
		var id int64
		err := s.db.QueryRow(s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLStore) InsertAlert(alert *model.TransportAlert) error {
	if alert.Severity == "" {
		alert.Severity = model.SeverityInfo
	}
	id, err := s.insertReturningID(`
INSERT INTO transport_alerts (title, message, severity, affected_routes, affected_stops, is_active, created_at, updated_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.Title, alert.Message, string(alert.Severity),
		nullIfEmpty(alert.AffectedRoutes), nullIfEmpty(alert.AffectedStops),
		alert.IsActive, alert.CreatedAt, alert.UpdatedAt, nullableTime(alert.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	alert.ID = id
	return nil
}

// ActiveAlertsForStop returns unexpired active alerts naming the stop
// in affected_stops, or naming no stops at all (system-wide alerts).
// The comma-joined list is operator-entered text, so matching happens
// here rather than in SQL.
func (s *SQLStore) ActiveAlertsForStop(stopID string, now time.Time) ([]model.TransportAlert, error) {
	rows, err := s.db.Query(s.rebind(`
SELECT id, title, message, severity, affected_routes, affected_stops, is_active, created_at, updated_at, expires_at
FROM transport_alerts
WHERE is_active AND (expires_at IS NULL OR expires_at > ?)
ORDER BY created_at DESC`), now)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	alerts := []model.TransportAlert{}
	for rows.Next() {
		var a model.TransportAlert
		var severity string
		var affectedRoutes, affectedStops sql.NullString
		var expiresAt sql.NullTime
		err := rows.Scan(
			&a.ID, &a.Title, &a.Message, &severity, &affectedRoutes,
			&affectedStops, &a.IsActive, &a.CreatedAt, &a.UpdatedAt, &expiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		a.Severity = model.Severity(severity)
		a.AffectedRoutes = affectedRoutes.String
		a.AffectedStops = affectedStops.String
		if expiresAt.Valid {
			t := expiresAt.Time
			a.ExpiresAt = &t
		}

		if !alertCoversStop(a.AffectedStops, stopID) {
			continue
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

func alertCoversStop(affectedStops, stopID string) bool {
	if strings.TrimSpace(affectedStops) == "" {
		return true
	}
	for _, id := range strings.Split(affectedStops, ",") {
		if strings.TrimSpace(id) == stopID {
			return true
		}
	}
	return false
}

func (s *SQLStore) InsertAd(ad *model.Ad) error {
	id, err := s.insertReturningID(`
INSERT INTO ads (title, image_url, link_url, advertiser_name, is_active, display_order, duration_seconds, created_at, updated_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ad.Title, ad.ImageURL, nullIfEmpty(ad.LinkURL), nullIfEmpty(ad.AdvertiserName),
		ad.IsActive, ad.DisplayOrder, ad.DurationSeconds,
		ad.CreatedAt, ad.UpdatedAt, nullableTime(ad.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("inserting ad: %w", err)
	}
	ad.ID = id
	return nil
}

func (s *SQLStore) ActiveAds(now time.Time) ([]model.Ad, error) {
	rows, err := s.db.Query(s.rebind(`
SELECT id, title, image_url, link_url, advertiser_name, is_active, display_order, duration_seconds, created_at, updated_at, expires_at
FROM ads
WHERE is_active AND (expires_at IS NULL OR expires_at > ?)
ORDER BY display_order, id`), now)
	if err != nil {
		return nil, fmt.Errorf("querying ads: %w", err)
	}
	defer rows.Close()

	ads := []model.Ad{}
	for rows.Next() {
		var a model.Ad
		var linkURL, advertiser sql.NullString
		var expiresAt sql.NullTime
		err := rows.Scan(
			&a.ID, &a.Title, &a.ImageURL, &linkURL, &advertiser, &a.IsActive,
			&a.DisplayOrder, &a.DurationSeconds, &a.CreatedAt, &a.UpdatedAt, &expiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning ad: %w", err)
		}
		a.LinkURL = linkURL.String
		a.AdvertiserName = advertiser.String
		if expiresAt.Valid {
			t := expiresAt.Time
			a.ExpiresAt = &t
		}
		ads = append(ads, a)
	}

	return ads, rows.Err()
}

func (s *SQLStore) InsertNews(news *model.GovernmentNews) error {
	id, err := s.insertReturningID(`
INSERT INTO government_news (title_el, content_el, title_en, content_en, image_url, source, duration_seconds, is_active, display_order, created_at, updated_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		news.TitleEL, news.ContentEL, nullIfEmpty(news.TitleEN), nullIfEmpty(news.ContentEN),
		nullIfEmpty(news.ImageURL), nullIfEmpty(news.Source), news.DurationSeconds,
		news.IsActive, news.DisplayOrder, news.CreatedAt, news.UpdatedAt,
		nullableTime(news.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("inserting news: %w", err)
	}
	news.ID = id
	return nil
}

func (s *SQLStore) ActiveNews(now time.Time) ([]model.GovernmentNews, error) {
	rows, err := s.db.Query(s.rebind(`
SELECT id, title_el, content_el, title_en, content_en, image_url, source, duration_seconds, is_active, display_order, created_at, updated_at, expires_at
FROM government_news
WHERE is_active AND (expires_at IS NULL OR expires_at > ?)
ORDER BY display_order, id`), now)
	if err != nil {
		return nil, fmt.Errorf("querying news: %w", err)
	}
	defer rows.Close()

	items := []model.GovernmentNews{}
	for rows.Next() {
		var n model.GovernmentNews
		var titleEN, contentEN, imageURL, source sql.NullString
		var expiresAt sql.NullTime
		err := rows.Scan(
			&n.ID, &n.TitleEL, &n.ContentEL, &titleEN, &contentEN, &imageURL,
			&source, &n.DurationSeconds, &n.IsActive, &n.DisplayOrder,
			&n.CreatedAt, &n.UpdatedAt, &expiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning news: %w", err)
		}
		n.TitleEN = titleEN.String
		n.ContentEN = contentEN.String
		n.ImageURL = imageURL.String
		n.Source = source.String
		if expiresAt.Valid {
			t := expiresAt.Time
			n.ExpiresAt = &t
		}
		items = append(items, n)
	}

	return items, rows.Err()
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
