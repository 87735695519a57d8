package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

// Segments are exposed as "routes" on the public API.

// ListRoutesHandler returns all segments, or one travel's ordered segments
// when travel_id is given.
func ListRoutesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			segs []domain.Segment
			err  error
		)
		if travelID := c.QueryInt("travel_id", 0); travelID > 0 {
			segs, err = deps.Segments.ListForTravel(c.UserContext(), int64(travelID))
		} else {
			segs, err = deps.Segments.List(c.UserContext())
		}
		if err != nil {
			return errFromDomain(c, err)
		}
		return paginate(c, segs)
	}
}

// GetRouteHandler returns one segment with its offer.
func GetRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "route id must be a positive integer")
		}
		seg, err := deps.Segments.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(seg)
	}
}

// CreateRouteHandler books an offer into a travel for a time window.
func CreateRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var seg domain.Segment
		if err := c.BodyParser(&seg); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Segments.Create(c.UserContext(), &seg); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(seg)
	}
}

// UpdateRouteHandler replaces a segment.
func UpdateRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "route id must be a positive integer")
		}
		var seg domain.Segment
		if err := c.BodyParser(&seg); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		seg.ID = id
		if err := deps.Segments.Update(c.UserContext(), &seg); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(seg)
	}
}

// DeleteRouteHandler removes a single segment.
func DeleteRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "route id must be a positive integer")
		}
		if err := deps.Segments.Delete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return deleted(c)
	}
}

type addCityRequest struct {
	TravelID   int64 `json:"travel_id"`
	NewCityID  int64 `json:"new_city_id"`
	FromCityID int64 `json:"from_city_id"`
	ToCityID   int64 `json:"to_city_id"`
}

// AddCityHandler splices a city into an existing leg of a travel.
func AddCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addCityRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.TravelID <= 0 || req.NewCityID <= 0 || req.FromCityID <= 0 || req.ToCityID <= 0 {
			return errBadRequest(c, "travel_id, new_city_id, from_city_id and to_city_id are required")
		}

		segs, err := deps.Editor.InsertCity(c.UserContext(), req.TravelID, req.NewCityID, req.FromCityID, req.ToCityID)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"status": "updated", "routes": segs})
	}
}

type deleteCityRequest struct {
	CityID int64 `json:"city_id"`
	ID     int64 `json:"id"` // legacy clients send the city as "id"
}

// DeleteCityFromRouteHandler purges a city from every itinerary and from
// the transport catalog.
func DeleteCityFromRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req deleteCityRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		cityID := req.CityID
		if cityID == 0 {
			cityID = req.ID
		}
		if cityID <= 0 {
			return errBadRequest(c, "city_id is required")
		}

		res, err := deps.Editor.DeleteCityFromRoute(c.UserContext(), cityID)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(res)
	}
}

type changeTransportRequest struct {
	RouteID      int64  `json:"route_id"`
	NewTransport string `json:"new_transport"`
	NewPrice     int64  `json:"new_price"`
}

// ChangeTransportHandler changes the mode and price of the offer behind a
// segment.
func ChangeTransportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req changeTransportRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.RouteID <= 0 {
			return errBadRequest(c, "route_id is required")
		}

		offer, err := deps.Editor.ChangeTransport(c.UserContext(), req.RouteID, req.NewTransport, req.NewPrice)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(fiber.Map{"status": "updated", "transport": offer})
	}
}
