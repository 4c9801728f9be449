package handlers

import (
	"github.com/danielkmetz/ActivityPal-sub004/internal/search"
	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	service *search.Service
}

func NewSearchHandler(service *search.Service) *SearchHandler {
	return &SearchHandler{service: service}
}

func SetupSearchRoutes(router fiber.Router, service *search.Service) {
	h := NewSearchHandler(service)

	router.Post("/search", h.Search)
}

// Search godoc
// @Summary Curated nearby-place search
// @Description Paginated, resumable nearby-venue search. Pass the returned
// @Description cursor to fetch further pages of the same session.
// @Tags places
// @Accept json
// @Produce json
// @Param body body search.Request true "Search query or continuation"
// @Success 200 {object} search.Page
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /places/search [post]
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	req, err := h.service.Normalizer().Parse(c.Body())
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	page, err := h.service.Search(c.UserContext(), req)
	if err != nil {
		return fail(c, search.HTTPStatus(err), err.Error())
	}

	return c.JSON(page)
}
