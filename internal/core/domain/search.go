package domain

import (
	"strings"
	"time"
)

// SearchFilters holds the optional criteria of an itinerary search. Nil
// fields are ignored; set fields are AND-ed.
type SearchFilters struct {
	StartTime         *time.Time `json:"start_time,omitempty"`
	EndTime           *time.Time `json:"end_time,omitempty"`
	DepartureCity     *int64     `json:"departure_city,omitempty"`
	ArrivalCity       *int64     `json:"arrival_city,omitempty"`
	EntertainmentName *string    `json:"entertainment_name,omitempty"`
}

// Empty reports whether no criterion is set.
func (f SearchFilters) Empty() bool {
	return f.StartTime == nil && f.EndTime == nil && f.DepartureCity == nil &&
		f.ArrivalCity == nil && f.EntertainmentName == nil
}

// Normalized returns a copy with the entertainment needle trimmed, the form
// both Matches and store pre-filters compare against.
func (f SearchFilters) Normalized() SearchFilters {
	if f.EntertainmentName != nil {
		needle := strings.TrimSpace(*f.EntertainmentName)
		f.EntertainmentName = &needle
	}
	return f
}

// Matches applies the filters to a hydrated travel. Completed travels never
// match. Time and city criteria need at least one segment.
func (f SearchFilters) Matches(t *Travel) bool {
	if t.Status == StatusCompleted {
		return false
	}
	if f.StartTime != nil || f.EndTime != nil {
		start, end, ok := t.Window()
		if !ok {
			return false
		}
		if f.StartTime != nil && start.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && end.After(*f.EndTime) {
			return false
		}
	}
	if f.DepartureCity != nil {
		if len(t.Segments) == 0 || t.Segments[0].Offer == nil ||
			t.Segments[0].Offer.DepartureCityID != *f.DepartureCity {
			return false
		}
	}
	if f.ArrivalCity != nil {
		n := len(t.Segments)
		if n == 0 || t.Segments[n-1].Offer == nil ||
			t.Segments[n-1].Offer.DestinationCityID != *f.ArrivalCity {
			return false
		}
	}
	if f.EntertainmentName != nil {
		needle := strings.ToLower(*f.Normalized().EntertainmentName)
		found := false
		for _, a := range t.Activities {
			if strings.Contains(strings.ToLower(a.Name), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
