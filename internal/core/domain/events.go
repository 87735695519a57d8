package domain

import "time"

// ItineraryEventType names what happened to one or more itineraries.
type ItineraryEventType string

const (
	EventCityInserted     ItineraryEventType = "city_inserted"
	EventCityRemoved      ItineraryEventType = "city_removed"
	EventTransportChanged ItineraryEventType = "transport_changed"
	EventTravelCompleted  ItineraryEventType = "travel_completed"
)

// ItineraryEvent is published after an itinerary edit commits.
type ItineraryEvent struct {
	Type       ItineraryEventType `json:"type"`
	TravelIDs  []int64            `json:"travel_ids"`
	CityID     int64              `json:"city_id,omitempty"`
	OfferID    int64              `json:"offer_id,omitempty"`
	OfferIDs   []int64            `json:"offer_ids,omitempty"` // offers removed with a city
	SegmentIDs []int64            `json:"segment_ids,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}
