package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

// paramID parses the :id route parameter as a positive integer.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func deleted(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "deleted"})
}

// ---- Cities ----

// ListCitiesHandler returns the city directory.
func ListCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cities, err := deps.Cities.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return paginate(c, cities)
	}
}

// GetCityHandler returns a single city by ID.
func GetCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "city id must be a positive integer")
		}
		city, err := deps.Cities.GetByID(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(city)
	}
}

// CreateCityHandler adds a city. An explicit id in the body is honoured.
func CreateCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var city domain.City
		if err := c.BodyParser(&city); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Cities.Create(c.UserContext(), &city); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(city)
	}
}

// UpdateCityHandler renames a city.
func UpdateCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "city id must be a positive integer")
		}
		var city domain.City
		if err := c.BodyParser(&city); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		city.ID = id
		if err := deps.Cities.Update(c.UserContext(), &city); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(city)
	}
}

// DeleteCityHandler removes a city that no offer references.
func DeleteCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "city id must be a positive integer")
		}
		if err := deps.Cities.Delete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return deleted(c)
	}
}

// ---- Transport offers ----

// ListOffersHandler returns all offers, or the offers of one city pair when
// both from and to are given.
func ListOffersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from := c.QueryInt("from", 0)
		to := c.QueryInt("to", 0)
		if (from == 0) != (to == 0) {
			return errBadRequest(c, "from and to must be given together")
		}

		var (
			offers []domain.TransportOffer
			err    error
		)
		if from != 0 {
			offers, err = deps.Catalog.ListByCityPair(c.UserContext(), int64(from), int64(to))
		} else {
			offers, err = deps.Catalog.List(c.UserContext())
		}
		if err != nil {
			return errFromDomain(c, err)
		}
		return paginate(c, offers)
	}
}

// GetOfferHandler returns a single offer by ID.
func GetOfferHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "offer id must be a positive integer")
		}
		offer, err := deps.Catalog.Get(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(offer)
	}
}

// CreateOfferHandler adds an offer to the catalog.
func CreateOfferHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var offer domain.TransportOffer
		if err := c.BodyParser(&offer); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Catalog.Add(c.UserContext(), &offer); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(offer)
	}
}

// UpdateOfferHandler replaces an offer.
func UpdateOfferHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "offer id must be a positive integer")
		}
		var offer domain.TransportOffer
		if err := c.BodyParser(&offer); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		offer.ID = id
		if err := deps.Catalog.Update(c.UserContext(), &offer); err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(offer)
	}
}

// DeleteOfferHandler removes an offer no segment uses.
func DeleteOfferHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "offer id must be a positive integer")
		}
		if err := deps.Catalog.Delete(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return deleted(c)
	}
}
