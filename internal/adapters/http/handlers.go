package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/geo"
	"github.com/samirrijal/echoadmin/internal/core/query"
	"github.com/samirrijal/echoadmin/internal/core/usecases"
)

// filterParams are the query parameters forwarded to the engine as category filters.
// Filters a collection does not declare are ignored there.
var filterParams = []string{"usage", "status", "os", "severity", "type"}

// listSpec reads q, sortBy and the category filters from the query string.
func listSpec(c *fiber.Ctx) (query.Spec, error) {
	q := strings.TrimSpace(c.Query("q"))
	if len(q) > 200 {
		return query.Spec{}, &domain.ValidationError{Field: "q", Message: "query too long (max 200 characters)"}
	}
	filters := make(map[string]string)
	for _, name := range filterParams {
		if v := c.Query(name); v != "" {
			filters[name] = v
		}
	}
	return query.Spec{
		FreeText:        q,
		CategoryFilters: filters,
		SortKey:         query.ParseSortKey(c.Query("sortBy")),
	}, nil
}

func pageParams(c *fiber.Ctx) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return offset, c.QueryInt("limit", 50)
}

func paginated(c *fiber.Ctx, data any, page query.Page) error {
	pg := Pagination{Offset: page.Offset, Limit: page.Limit, Total: page.Total}
	SetLinkHeaders(c, pg)
	return c.JSON(PaginatedResponse{Data: data, Pagination: pg})
}

// ---- Bundles & assets ----

// ListBundlesHandler searches, filters and sorts VR asset bundles.
func ListBundlesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		spec, err := listSpec(c)
		if err != nil {
			return errFrom(c, err)
		}
		offset, limit := pageParams(c)

		bundles, page, err := deps.Bundles.List(c.UserContext(), spec, offset, limit)
		if err != nil {
			return errFrom(c, err)
		}
		return paginated(c, bundles, page)
	}
}

// BundleStatsHandler returns library totals.
func BundleStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Bundles.Stats(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(stats)
	}
}

// ListAssetsHandler lists prefab rows across every bundle.
func ListAssetsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		spec, err := listSpec(c)
		if err != nil {
			return errFrom(c, err)
		}
		offset, limit := pageParams(c)

		assets, page, err := deps.Bundles.Assets(c.UserContext(), spec, offset, limit)
		if err != nil {
			return errFrom(c, err)
		}
		return paginated(c, assets, page)
	}
}

// ---- Complaints ----

// ListComplaintsHandler searches and filters complaints.
func ListComplaintsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		spec, err := listSpec(c)
		if err != nil {
			return errFrom(c, err)
		}
		offset, limit := pageParams(c)

		complaints, page, err := deps.Complaints.List(c.UserContext(), spec, offset, limit)
		if err != nil {
			return errFrom(c, err)
		}
		return paginated(c, complaints, page)
	}
}

// ComplaintStatsHandler counts complaints per status.
func ComplaintStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Complaints.Stats(c.UserContext())
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(stats)
	}
}

// GetComplaintHandler returns a single complaint.
func GetComplaintHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		complaint, err := deps.Complaints.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(complaint)
	}
}

// ResolveComplaintHandler marks a complaint resolved.
func ResolveComplaintHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		complaint, err := deps.Complaints.Resolve(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(complaint)
	}
}

// PresignImageHandler exchanges a stored image URL for a download URL.
func PresignImageHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			S3URL string `json:"S3_url"`
		}
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		url, err := deps.Complaints.PresignImage(c.UserContext(), body.S3URL)
		if err != nil {
			return errFrom(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(fiber.Map{"presignedUrl": url})
	}
}

// ---- Echoes ----

// ListEchoesHandler searches and filters AR echoes.
func ListEchoesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		spec, err := listSpec(c)
		if err != nil {
			return errFrom(c, err)
		}
		offset, limit := pageParams(c)

		echoes, page, err := deps.Echoes.List(c.UserContext(), spec, offset, limit)
		if err != nil {
			return errFrom(c, err)
		}
		return paginated(c, echoes, page)
	}
}

// GetEchoHandler returns a single echo.
func GetEchoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		echo, err := deps.Echoes.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(echo)
	}
}

// DeleteEchoHandler removes an echo.
func DeleteEchoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Echoes.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ---- Dashboard ----

// DashboardHandler serves one dashboard aggregate, selected by the :metric param.
func DashboardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		var (
			data any
			err  error
		)
		switch c.Params("metric") {
		case "summary":
			data, err = deps.Dashboard.Summary(ctx)
		case "ai-summary":
			data, err = deps.Dashboard.AiSummary(ctx)
		case "weekly-diagnoses":
			data, err = deps.Dashboard.WeeklyDiagnoses(ctx)
		case "tag-distribution":
			data, err = deps.Dashboard.TagDistribution(ctx)
		case "hourly-complaints", "hourly-complaint-distribution":
			data, err = deps.Dashboard.HourlyComplaints(ctx)
		default:
			return errNotFound(c, "unknown dashboard metric")
		}
		if err != nil {
			return errFrom(c, err)
		}
		c.Set("Cache-Control", "private, max-age=60")
		return c.JSON(data)
	}
}

// ---- Map ----

// MarkersHandler projects complaints or echoes onto the map raster for a container size.
func MarkersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind := c.Query("kind", usecases.KindComplaints)
		width := c.QueryFloat("width", 0)
		height := c.QueryFloat("height", 0)
		if width <= 0 || height <= 0 {
			return errBadRequest(c, "width and height must be positive")
		}

		proj, err := deps.Markers.Project(c.UserContext(), kind, domain.Size{Width: width, Height: height})
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(proj)
	}
}

// ProjectRequest is an ad-hoc projection. Rect wins over Container when both are set;
// Container needs Image to compute the fitted rect.
type ProjectRequest struct {
	Bounds    domain.GeoBounds      `json:"bounds"`
	Rect      *domain.ContainerRect `json:"rect,omitempty"`
	Container *domain.Size          `json:"container,omitempty"`
	Image     *domain.Size          `json:"image,omitempty"`
	Points    []domain.Marker       `json:"points"`
}

// ProjectHandler projects caller-supplied points without touching the upstream API.
func ProjectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ProjectRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if len(req.Points) > 10000 {
			return errBadRequest(c, "too many points (max 10000)")
		}

		bounds, err := geo.NewBounds(req.Bounds.North, req.Bounds.South, req.Bounds.West, req.Bounds.East)
		if err != nil {
			return errFrom(c, err)
		}

		var rect domain.ContainerRect
		switch {
		case req.Rect != nil:
			rect = *req.Rect
		case req.Container != nil && req.Image != nil:
			rect = geo.ComputeContainerRect(*req.Container, *req.Image)
		default:
			return errBadRequest(c, "rect, or container and image, is required")
		}

		projected := geo.ProjectAll(req.Points, bounds, rect)
		return c.JSON(usecases.MarkerProjection{
			Kind:    "adhoc",
			Bounds:  bounds,
			Rect:    rect,
			Markers: projected,
			Missed:  len(req.Points) - len(projected),
		})
	}
}
