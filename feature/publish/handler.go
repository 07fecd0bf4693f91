package publish

import (
	"bytes"
	"errors"

	"scene-publisher/core/logger"
	"scene-publisher/core/object"
	"scene-publisher/core/scene/manifest"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for imports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/imports", h.HandleImport)
	app.Get("/anchors", h.HandleListAnchors)
}

// HandleImport imports the manifest sent as request body.
// @Summary Import Scene
// @Description Imports a scene manifest (YAML or JSON) and publishes its assets and actors. Passes run one at a time.
// @Tags imports
// @Accept plain
// @Produce json
// @Param dest query string false "Destination namespace (e.g. '/Game/Room')"
// @Param mode query string false "Scene mode: new-world, current-world or assets-only"
// @Param world query string false "Target world in current-world mode"
// @Param policy query []string false "Conflict policy per kind (e.g. 'Material=overwrite')" collectionFormat(multi)
// @Param ignore_actor query []string false "Actor kind left out of this pass (e.g. 'PointLight')" collectionFormat(multi)
// @Param respawn_deleted query bool false "Respawn managed actors deleted by the user"
// @Success 200 {object} pipeline.Result "Pass Result"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /imports [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	m, err := manifest.Decode(bytes.NewReader(c.Body()))
	if err != nil {
		l.Warn("Rejected manifest", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	req := Request{
		Destination:    c.Query("dest"),
		SceneMode:      c.Query("mode"),
		World:          c.Query("world"),
		RespawnDeleted: c.QueryBool("respawn_deleted", false),
	}
	for _, p := range c.Context().QueryArgs().PeekMulti("policy") {
		req.Policies = append(req.Policies, string(p))
	}
	for _, k := range c.Context().QueryArgs().PeekMulti("ignore_actor") {
		req.IgnoreActors = append(req.IgnoreActors, string(k))
	}

	l.Info("Import requested", zap.String("scene", m.Name), zap.String("dest", req.Destination))
	res, err := h.service.Import(c.Context(), m, req)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, ErrInvalidRequest) {
			status = fiber.StatusBadRequest
		}
		l.Error("Import failed", zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

// HandleListAnchors lists scene anchors and their managed actors.
// @Summary List Anchors
// @Description Lists the scene anchors below a path prefix with the live actors each one manages.
// @Tags anchors
// @Produce json
// @Param prefix query string false "Path prefix (default '/')"
// @Success 200 {array} AnchorReport "Anchors"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /anchors [get]
func (h *Handler) HandleListAnchors(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	reports, err := h.service.Anchors(c.Context(), object.Path(c.Query("prefix", "/")))
	if err != nil {
		l.Error("Listing anchors failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(reports)
}
