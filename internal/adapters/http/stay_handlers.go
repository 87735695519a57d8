package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/travelplan/internal/core/domain"
)

// Activities are "entertainments" and lodgings "accommodations" in the
// serialized travel.

func ListActivitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acts, err := deps.Stays.ListActivities(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return paginate(c, acts)
	}
}

func GetActivityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "activity id must be a positive integer")
		}
		a, err := deps.Stays.GetActivity(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(a)
	}
}

func CreateActivityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var a domain.Activity
		if err := c.BodyParser(&a); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Stays.CreateActivity(c.UserContext(), &a); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// DeleteActivityHandler removes an activity no travel links.
func DeleteActivityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "activity id must be a positive integer")
		}
		if err := deps.Stays.DeleteActivity(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return deleted(c)
	}
}

func ListLodgingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lodgings, err := deps.Stays.ListLodgings(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return paginate(c, lodgings)
	}
}

func GetLodgingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "lodging id must be a positive integer")
		}
		l, err := deps.Stays.GetLodging(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(l)
	}
}

func CreateLodgingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var l domain.Lodging
		if err := c.BodyParser(&l); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Stays.CreateLodging(c.UserContext(), &l); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(l)
	}
}

// DeleteLodgingHandler removes a lodging no travel links.
func DeleteLodgingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return errBadRequest(c, "lodging id must be a positive integer")
		}
		if err := deps.Stays.DeleteLodging(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		return deleted(c)
	}
}
