package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCityNameLength is the longest city name the directory accepts, in characters.
const MaxCityNameLength = 50

// City is an entry of the city directory.
type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Validate checks the name constraints of a city.
func (c *City) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return Invalidf("city name must not be empty")
	}
	if utf8.RuneCountInString(name) > MaxCityNameLength {
		return Invalidf("city name must be at most %d characters", MaxCityNameLength)
	}
	c.Name = name
	return nil
}

// TransportOffer is a priced, directed connection between two cities.
// Segments reference offers by id, so one offer can back many segments.
type TransportOffer struct {
	ID                int64         `json:"id"`
	Mode              TransportMode `json:"type_transport"`
	Cost              int64         `json:"price"`
	Distance          int64         `json:"distance"`
	DepartureCityID   int64         `json:"departure_city"`
	DestinationCityID int64         `json:"arrival_city"`
}

// Validate checks field constraints and normalises the transport mode.
func (o *TransportOffer) Validate() error {
	mode, err := ParseTransportMode(string(o.Mode))
	if err != nil {
		return err
	}
	o.Mode = mode
	if o.Cost <= 0 {
		return Invalidf("price must be positive")
	}
	if o.Distance <= 0 {
		return Invalidf("distance must be positive")
	}
	if o.DepartureCityID == o.DestinationCityID {
		return Invalidf("departure and arrival city must differ")
	}
	return nil
}

// Connects reports whether the offer goes exactly from one city to another.
func (o *TransportOffer) Connects(from, to int64) bool {
	return o.DepartureCityID == from && o.DestinationCityID == to
}

// Touches reports whether the offer departs from or arrives at the city.
func (o *TransportOffer) Touches(cityID int64) bool {
	return o.DepartureCityID == cityID || o.DestinationCityID == cityID
}

// Segment is one leg of a travel itinerary ("route" in the public API).
type Segment struct {
	ID        int64           `json:"id"`
	TravelID  int64           `json:"travel_id"`
	OfferID   int64           `json:"d_route_id"`
	Offer     *TransportOffer `json:"transport,omitempty"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
}

// Validate checks the time window of a directly created segment.
func (s *Segment) Validate() error {
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return Invalidf("start_time and end_time are required")
	}
	if !s.StartTime.Before(s.EndTime) {
		return Invalidf("start_time must be before end_time")
	}
	return nil
}

// Travel is the aggregate root of a trip.
type Travel struct {
	ID          int64        `json:"id"`
	Status      TravelStatus `json:"status"`
	UserID      int64        `json:"user_id"`
	ActivityIDs []int64      `json:"entertainment_ids"`
	LodgingIDs  []int64      `json:"accommodation_ids"`
	Segments    []Segment    `json:"routes,omitempty"`
	Activities  []Activity   `json:"entertainments,omitempty"`
	Lodgings    []Lodging    `json:"accommodations,omitempty"`
}

// Validate normalises the status and checks the owner reference.
func (t *Travel) Validate() error {
	if t.Status == "" {
		t.Status = StatusInProgress
	}
	status, err := ParseTravelStatus(string(t.Status))
	if err != nil {
		return err
	}
	t.Status = status
	if t.UserID <= 0 {
		return Invalidf("user_id is required")
	}
	t.ActivityIDs = uniqueIDs(t.ActivityIDs)
	t.LodgingIDs = uniqueIDs(t.LodgingIDs)
	return nil
}

// Window returns the earliest segment start and the latest segment end.
// ok is false for a travel without segments.
func (t *Travel) Window() (start, end time.Time, ok bool) {
	for i, s := range t.Segments {
		if i == 0 || s.StartTime.Before(start) {
			start = s.StartTime
		}
		if i == 0 || s.EndTime.After(end) {
			end = s.EndTime
		}
	}
	return start, end, len(t.Segments) > 0
}

// ActivityKind classifies an activity.
type ActivityKind string

const (
	ActivityMuseum      ActivityKind = "museum"
	ActivityConcert     ActivityKind = "concert"
	ActivityExhibition  ActivityKind = "exhibition"
	ActivityFestival    ActivityKind = "festival"
	ActivitySightseeing ActivityKind = "sightseeing"
	ActivityWalk        ActivityKind = "walk"
)

var activityKinds = map[ActivityKind]bool{
	ActivityMuseum: true, ActivityConcert: true, ActivityExhibition: true,
	ActivityFestival: true, ActivitySightseeing: true, ActivityWalk: true,
}

// Activity is an entertainment event that can be attached to travels.
type Activity struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Kind          ActivityKind `json:"event_name"`
	Address       string       `json:"address"`
	DurationHours int          `json:"duration"`
	StartsAt      time.Time    `json:"event_time"`
}

func (a *Activity) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return Invalidf("activity name must not be empty")
	}
	if !activityKinds[ActivityKind(strings.ToLower(string(a.Kind)))] {
		return Invalidf("unknown activity kind %q", a.Kind)
	}
	a.Kind = ActivityKind(strings.ToLower(string(a.Kind)))
	if a.DurationHours <= 0 {
		return Invalidf("duration must be positive")
	}
	if strings.TrimSpace(a.Address) == "" {
		return Invalidf("address must not be empty")
	}
	return nil
}

// LodgingKind classifies a lodging.
type LodgingKind string

const (
	LodgingHotel      LodgingKind = "hotel"
	LodgingHostel     LodgingKind = "hostel"
	LodgingApartments LodgingKind = "apartments"
	LodgingFlat       LodgingKind = "flat"
)

var lodgingKinds = map[LodgingKind]bool{
	LodgingHotel: true, LodgingHostel: true, LodgingApartments: true, LodgingFlat: true,
}

// Lodging is a place to stay that can be attached to travels.
type Lodging struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Kind     LodgingKind `json:"type"`
	Address  string      `json:"address"`
	Cost     int64       `json:"price"`
	Rating   int         `json:"rating"`
	CheckIn  time.Time   `json:"check_in"`
	CheckOut time.Time   `json:"check_out"`
}

func (l *Lodging) Validate() error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return Invalidf("lodging name must not be empty")
	}
	l.Kind = LodgingKind(strings.ToLower(string(l.Kind)))
	if !lodgingKinds[l.Kind] {
		return Invalidf("unknown lodging type %q", l.Kind)
	}
	if l.Cost <= 0 {
		return Invalidf("price must be positive")
	}
	if l.Rating < 1 || l.Rating > 5 {
		return Invalidf("rating must be between 1 and 5")
	}
	if !l.CheckIn.Before(l.CheckOut) {
		return Invalidf("check_in must be before check_out")
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{}
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
