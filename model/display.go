package model

import "time"

// Display-content records shown on arrival boards. Managed by an
// external CRUD layer; the core only stores and reads them.

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type Ad struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	ImageURL        string     `json:"image_url"`
	LinkURL         string     `json:"link_url,omitempty"`
	AdvertiserName  string     `json:"advertiser_name,omitempty"`
	IsActive        bool       `json:"is_active"`
	DisplayOrder    int        `json:"display_order"`
	DurationSeconds int        `json:"duration_seconds"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

type GovernmentNews struct {
	ID              int64      `json:"id"`
	TitleEL         string     `json:"title_el"`
	ContentEL       string     `json:"content_el"`
	TitleEN         string     `json:"title_en,omitempty"`
	ContentEN       string     `json:"content_en,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	Source          string     `json:"source,omitempty"`
	DurationSeconds int        `json:"duration_seconds"`
	IsActive        bool       `json:"is_active"`
	DisplayOrder    int        `json:"display_order"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// AffectedRoutes and AffectedStops are comma-joined identifier lists,
// as entered by operators.
type TransportAlert struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Severity       Severity   `json:"severity"`
	AffectedRoutes string     `json:"affected_routes,omitempty"`
	AffectedStops  string     `json:"affected_stops,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}
