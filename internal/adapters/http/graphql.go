package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/query"
)

// argString returns a string argument or "" when absent.
func argString(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func argInt(p graphql.ResolveParams, name string) int {
	n, _ := p.Args[name].(int)
	return n
}

// specFromArgs mirrors listSpec for GraphQL arguments.
func specFromArgs(p graphql.ResolveParams, filters ...string) query.Spec {
	spec := query.Spec{
		FreeText:        argString(p, "q"),
		CategoryFilters: make(map[string]string),
		SortKey:         query.ParseSortKey(argString(p, "sortBy")),
	}
	for _, f := range filters {
		if v := argString(p, f); v != "" {
			spec.CategoryFilters[f] = v
		}
	}
	return spec
}

func listArgs(filters ...string) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"q":      &graphql.ArgumentConfig{Type: graphql.String},
		"sortBy": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(query.SortRecent)},
		"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
		"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
	}
	for _, f := range filters {
		args[f] = &graphql.ArgumentConfig{Type: graphql.String}
	}
	return args
}

func pageType(name string, item *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"items":  &graphql.Field{Type: graphql.NewList(item)},
			"total":  &graphql.Field{Type: graphql.Int},
			"offset": &graphql.Field{Type: graphql.Int},
			"limit":  &graphql.Field{Type: graphql.Int},
		},
	})
}

func pageResult(items any, page query.Page) map[string]interface{} {
	return map[string]interface{}{
		"items":  items,
		"total":  page.Total,
		"offset": page.Offset,
		"limit":  page.Limit,
	}
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	prefabType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Prefab",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"name":   &graphql.Field{Type: graphql.String},
			"sizeMB": &graphql.Field{Type: graphql.Float},
			"tags":   &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	bundleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bundle",
		Fields: graphql.Fields{
			"bundleId":  &graphql.Field{Type: graphql.String},
			"bundleUrl": &graphql.Field{Type: graphql.String},
			"name":      &graphql.Field{Type: graphql.String},
			"version":   &graphql.Field{Type: graphql.String},
			"usage":     &graphql.Field{Type: graphql.String},
			"os":        &graphql.Field{Type: graphql.String},
			"tags":      &graphql.Field{Type: graphql.NewList(graphql.String)},
			"prefabs":   &graphql.Field{Type: graphql.NewList(prefabType)},
			"status": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Bundle).EffectiveStatus(), nil
				},
			},
			"totalSizeMB": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Bundle).SizeMB(), nil
				},
			},
			"updatedAt": &graphql.Field{
				Type:        graphql.String,
				Description: "Last change, falling back to creation and layout timestamps",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					t := p.Source.(domain.Bundle).Timestamp()
					if t.IsZero() {
						return nil, nil
					}
					return t.Format("2006-01-02T15:04:05Z07:00"), nil
				},
			},
		},
	})

	complaintType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Complaint",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Complaint).ID.String(), nil
				},
			},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"status":      &graphql.Field{Type: graphql.String},
			"severity":    &graphql.Field{Type: graphql.String},
			"confidence":  &graphql.Field{Type: graphql.Float},
			"district":    &graphql.Field{Type: graphql.String},
			"tags":        &graphql.Field{Type: graphql.NewList(graphql.String)},
			"createdAt":   &graphql.Field{Type: graphql.String},
			"updatedAt":   &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{
				Type: geoPointType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if pt, ok := p.Source.(domain.Complaint).Location.Point(); ok {
						return pt, nil
					}
					return nil, nil
				},
			},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProjectedMarker",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"kind":  &graphql.Field{Type: graphql.String},
			"label": &graphql.Field{Type: graphql.String},
			"point": &graphql.Field{Type: geoPointType},
			"top":   &graphql.Field{Type: graphql.Float},
			"left":  &graphql.Field{Type: graphql.Float},
		},
	})

	projectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MarkerProjection",
		Fields: graphql.Fields{
			"kind":    &graphql.Field{Type: graphql.String},
			"markers": &graphql.Field{Type: graphql.NewList(markerType)},
			"missed":  &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"bundles": &graphql.Field{
				Type:        pageType("BundlePage", bundleType),
				Description: "Search, filter and sort VR asset bundles",
				Args:        listArgs("usage", "status", "os"),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					items, page, err := deps.Bundles.List(p.Context, specFromArgs(p, "usage", "status", "os"), argInt(p, "offset"), argInt(p, "limit"))
					if err != nil {
						return nil, err
					}
					return pageResult(items, page), nil
				},
			},
			"complaints": &graphql.Field{
				Type:        pageType("ComplaintPage", complaintType),
				Description: "Search, filter and sort complaints",
				Args:        listArgs("status", "severity"),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					items, page, err := deps.Complaints.List(p.Context, specFromArgs(p, "status", "severity"), argInt(p, "offset"), argInt(p, "limit"))
					if err != nil {
						return nil, err
					}
					return pageResult(items, page), nil
				},
			},
			"markers": &graphql.Field{
				Type:        projectionType,
				Description: "Project complaints or echoes onto the map for a container size",
				Args: graphql.FieldConfigArgument{
					"kind":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "complaints"},
					"width":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"height": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					size := domain.Size{Width: p.Args["width"].(float64), Height: p.Args["height"].(float64)}
					proj, err := deps.Markers.Project(p.Context, argString(p, "kind"), size)
					if err != nil {
						return nil, err
					}
					// Flatten the embedded marker for the default resolver
					markers := make([]map[string]interface{}, 0, len(proj.Markers))
					for _, m := range proj.Markers {
						markers = append(markers, map[string]interface{}{
							"id":    m.ID,
							"kind":  m.Kind,
							"label": m.Label,
							"point": m.Point,
							"top":   m.Position.Top,
							"left":  m.Position.Left,
						})
					}
					return map[string]interface{}{
						"kind":    proj.Kind,
						"markers": markers,
						"missed":  proj.Missed,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
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
