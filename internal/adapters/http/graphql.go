package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/travelplan/internal/core/domain"
)

// buildSchema creates the read-only GraphQL schema wired to our services.
// Object fields resolve through the json tags of the domain structs.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.Int},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	offerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TransportOffer",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.Int},
			"type_transport": &graphql.Field{Type: graphql.String},
			"price":          &graphql.Field{Type: graphql.Int},
			"distance":       &graphql.Field{Type: graphql.Int},
			"departure_city": &graphql.Field{Type: graphql.Int},
			"arrival_city":   &graphql.Field{Type: graphql.Int},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.Int},
			"travel_id":  &graphql.Field{Type: graphql.Int},
			"d_route_id": &graphql.Field{Type: graphql.Int},
			"transport":  &graphql.Field{Type: offerType},
			"start_time": &graphql.Field{Type: graphql.DateTime},
			"end_time":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	activityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Entertainment",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.Int},
			"name":       &graphql.Field{Type: graphql.String},
			"event_name": &graphql.Field{Type: graphql.String},
			"address":    &graphql.Field{Type: graphql.String},
			"duration":   &graphql.Field{Type: graphql.Int},
			"event_time": &graphql.Field{Type: graphql.DateTime},
		},
	})

	lodgingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Accommodation",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.Int},
			"name":      &graphql.Field{Type: graphql.String},
			"type":      &graphql.Field{Type: graphql.String},
			"address":   &graphql.Field{Type: graphql.String},
			"price":     &graphql.Field{Type: graphql.Int},
			"rating":    &graphql.Field{Type: graphql.Int},
			"check_in":  &graphql.Field{Type: graphql.DateTime},
			"check_out": &graphql.Field{Type: graphql.DateTime},
		},
	})

	travelType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Travel",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.Int},
			"status":         &graphql.Field{Type: graphql.String},
			"user_id":        &graphql.Field{Type: graphql.Int},
			"routes":         &graphql.Field{Type: graphql.NewList(routeType)},
			"entertainments": &graphql.Field{Type: graphql.NewList(activityType)},
			"accommodations": &graphql.Field{Type: graphql.NewList(lodgingType)},
		},
	})

	itineraryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Itinerary",
		Fields: graphql.Fields{
			"travel_id": &graphql.Field{Type: graphql.Int},
			"routes":    &graphql.Field{Type: graphql.NewList(routeType)},
			"connected": &graphql.Field{Type: graphql.Boolean},
			"problem":   &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"cities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "List the city directory",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.List(p.Context)
				},
			},
			"city": &graphql.Field{
				Type:        cityType,
				Description: "Get a city by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.GetByID(p.Context, int64(p.Args["id"].(int)))
				},
			},
			"offers": &graphql.Field{
				Type:        graphql.NewList(offerType),
				Description: "Transport offers, optionally for one city pair",
				Args: graphql.FieldConfigArgument{
					"from": &graphql.ArgumentConfig{Type: graphql.Int},
					"to":   &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from, hasFrom := p.Args["from"].(int)
					to, hasTo := p.Args["to"].(int)
					if hasFrom && hasTo {
						return deps.Catalog.ListByCityPair(p.Context, int64(from), int64(to))
					}
					return deps.Catalog.List(p.Context)
				},
			},
			"travel": &graphql.Field{
				Type:        travelType,
				Description: "Get a travel with routes, entertainments and accommodations",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Travels.GetByID(p.Context, int64(p.Args["id"].(int)))
				},
			},
			"itinerary": &graphql.Field{
				Type:        itineraryType,
				Description: "Ordered legs of a travel",
				Args: graphql.FieldConfigArgument{
					"travel_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Travels.Itinerary(p.Context, int64(p.Args["travel_id"].(int)))
				},
			},
			"searchTravels": &graphql.Field{
				Type:        graphql.NewList(travelType),
				Description: "Active travels matching every given filter",
				Args: graphql.FieldConfigArgument{
					"start_time":         &graphql.ArgumentConfig{Type: graphql.String},
					"end_time":           &graphql.ArgumentConfig{Type: graphql.String},
					"departure_city":     &graphql.ArgumentConfig{Type: graphql.Int},
					"arrival_city":       &graphql.ArgumentConfig{Type: graphql.Int},
					"entertainment_name": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f, err := filtersFromArgs(p.Args)
					if err != nil {
						return nil, err
					}
					return deps.Search.Search(p.Context, f)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func filtersFromArgs(args map[string]interface{}) (domain.SearchFilters, error) {
	var req searchRequest
	if v, ok := args["start_time"].(string); ok {
		req.Search.StartTime = &v
	}
	if v, ok := args["end_time"].(string); ok {
		req.Search.EndTime = &v
	}
	if v, ok := args["departure_city"].(int); ok {
		id := int64(v)
		req.Search.DepartureCity = &id
	}
	if v, ok := args["arrival_city"].(int); ok {
		id := int64(v)
		req.Search.ArrivalCity = &id
	}
	if v, ok := args["entertainment_name"].(string); ok {
		req.Search.EntertainmentName = &v
	}
	return req.filters()
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
