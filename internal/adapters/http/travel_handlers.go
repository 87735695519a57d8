package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

// ListTravelsHandler returns every travel without its hydrated collections.
func ListTravelsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		travels, err := deps.Travels.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return paginate(c, travels)
	}
}

// GetTravelHandler returns a travel with routes, entertainments and
// accommodations.
func GetTravelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "travel id must be a positive integer")
		}
		t, err := deps.Travels.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(t)
	}
}

// CreateTravelHandler creates a travel. Status defaults to in_progress.
func CreateTravelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var t domain.Travel
		if err := c.BodyParser(&t); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		t.Segments, t.Activities, t.Lodgings = nil, nil, nil
		if err := deps.Travels.Create(c.UserContext(), &t); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// UpdateTravelHandler replaces status, owner and linked stays of a travel.
func UpdateTravelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "travel id must be a positive integer")
		}
		var t domain.Travel
		if err := c.BodyParser(&t); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		t.ID = id
		t.Segments, t.Activities, t.Lodgings = nil, nil, nil
		if err := deps.Travels.Update(c.UserContext(), &t); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(t)
	}
}

// DeleteTravelHandler removes a travel and its segments.
func DeleteTravelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "travel id must be a positive integer")
		}
		if err := deps.Travels.Delete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return deleted(c)
	}
}

// ItineraryHandler returns the ordered legs of a travel and whether they
// form a connected chain.
func ItineraryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "travel id must be a positive integer")
		}
		view, err := deps.Travels.Itinerary(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(view)
	}
}

// CompleteTravelHandler marks a travel as completed.
func CompleteTravelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "travel id must be a positive integer")
		}
		if err := deps.Travels.Complete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"status": "completed"})
	}
}

// ArchiveHandler lists completed travels.
func ArchiveHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		travels, err := deps.Travels.Archive(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return paginate(c, travels)
	}
}

// searchRequest carries timestamps as strings so that bare dates such as
// "2025-04-01" are accepted alongside RFC 3339.
type searchRequest struct {
	Search struct {
		StartTime         *string `json:"start_time"`
		EndTime           *string `json:"end_time"`
		DepartureCity     *int64  `json:"departure_city"`
		ArrivalCity       *int64  `json:"arrival_city"`
		EntertainmentName *string `json:"entertainment_name"`
	} `json:"search"`
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func isBareDate(s string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return err == nil
}

func (r searchRequest) filters() (domain.SearchFilters, error) {
	f := domain.SearchFilters{
		DepartureCity:     r.Search.DepartureCity,
		ArrivalCity:       r.Search.ArrivalCity,
		EntertainmentName: r.Search.EntertainmentName,
	}
	if r.Search.StartTime != nil {
		t, err := parseTimestamp(*r.Search.StartTime)
		if err != nil {
			return f, err
		}
		f.StartTime = &t
	}
	if r.Search.EndTime != nil {
		t, err := parseTimestamp(*r.Search.EndTime)
		if err != nil {
			return f, err
		}
		// a bare end date includes the whole day
		if isBareDate(*r.Search.EndTime) {
			t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		f.EndTime = &t
	}
	return f, nil
}

// SearchTravelsHandler returns the active travels matching every given
// filter. An empty filter set matches all active travels.
func SearchTravelsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req searchRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		f, err := req.filters()
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		travels, err := deps.Search.Search(c.UserContext(), f)
		if err != nil {
			return errFromDomain(c, err)
		}
		return paginate(c, travels)
	}
}
