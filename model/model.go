package model

// Holds all external facing types and constants.

type LocationType int

const (
	LocationTypeStop LocationType = iota
	LocationTypeStation
	LocationTypeEntranceExit
	LocationTypeGenericNode
	LocationTypeBoardingArea
)

type RouteType int

const (
	RouteTypeTram       RouteType = 0
	RouteTypeSubway     RouteType = 1
	RouteTypeRail       RouteType = 2
	RouteTypeBus        RouteType = 3
	RouteTypeFerry      RouteType = 4
	RouteTypeCable      RouteType = 5
	RouteTypeAerial     RouteType = 6
	RouteTypeFunicular  RouteType = 7
	RouteTypeTrolleybus RouteType = 11
	RouteTypeMonorail   RouteType = 12
)

type Agency struct {
	ID       string
	Name     string
	URL      string
	Timezone string
	Lang     string
}

type Stop struct {
	ID                 string
	Code               string
	Name               string
	Desc               string
	Lat                float64
	Lon                float64
	ZoneID             string
	LocationType       LocationType
	ParentStation      string
	WheelchairBoarding int
}

type Route struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Desc      string
	Type      RouteType
	Color     string
	TextColor string
	SortOrder int
}

// Weekday is a bitfield of active days, bit (1 << time.Weekday).
// StartDate and EndDate are YYYYMMDD integers.
type Calendar struct {
	ServiceID string
	Weekday   int8
	StartDate int
	EndDate   int
}

type ExceptionType int8

const (
	ServiceAdded   ExceptionType = 1
	ServiceRemoved ExceptionType = 2
)

type CalendarDate struct {
	ServiceID     string
	Date          int
	ExceptionType ExceptionType
}

type Trip struct {
	ID                   string
	RouteID              string
	ServiceID            string
	Headsign             string
	ShortName            string
	DirectionID          int
	BlockID              string
	ShapeID              string
	WheelchairAccessible int
	BikesAllowed         int
}

// Arrival and Departure are raw GTFS clock strings (HH:MM:SS) and may
// exceed 24:00:00 on trips that run past midnight.
type StopTime struct {
	TripID       string
	StopID       string
	StopSequence int
	Arrival      string
	Departure    string
	Headsign     string
	PickupType   int
	DropOffType  int
	DistTraveled float64
	Timepoint    int
}

type Shape struct {
	ID           string
	Lat          float64
	Lon          float64
	Sequence     int
	DistTraveled float64
}

type FareAttribute struct {
	ID               string
	Price            float64
	CurrencyType     string
	PaymentMethod    int
	Transfers        int
	AgencyID         string
	TransferDuration int
}

type FareRule struct {
	FareID        string
	RouteID       string
	OriginID      string
	DestinationID string
}

// A live arrival prediction scraped from the operator's site. Never
// persisted; tied to a route label, not to a scheduled trip.
type LiveArrival struct {
	RouteName   string
	ArrivalTime string
	MinutesLeft int
}

// A LiveArrival joined with static route metadata, or with defaults
// when the route label matched nothing in the store.
type Arrival struct {
	RouteID        string `json:"route_id,omitempty"`
	RouteShortName string `json:"route_short_name"`
	ArrivalTime    string `json:"arrival_time"`
	MinutesLeft    int    `json:"minutes_left"`
	Headsign       string `json:"headsign"`
	Color          string `json:"color"`
	TextColor      string `json:"text_color"`
	Live           bool   `json:"live"`
}

type StopPosition string

const (
	StopPositionOrigin       StopPosition = "origin"
	StopPositionDestination  StopPosition = "destination"
	StopPositionIntermediate StopPosition = "intermediate"
)

// A route serving a particular stop, with the stop's place along the
// route's trips.
type RouteAtStop struct {
	RouteID   string       `json:"route_id"`
	ShortName string       `json:"short_name"`
	LongName  string       `json:"long_name"`
	Color     string       `json:"color"`
	TextColor string       `json:"text_color"`
	Headsign  string       `json:"headsign"`
	Position  StopPosition `json:"position"`
}
