package handlers

import (
	"net/http"

	"transferportal/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// GET /api/public/city-images?country=
func (h *Handler) ListCityImages(c *gin.Context) {
	list, err := h.cityImages(c).List(c.Request.Context(), c.Query("country"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// POST /api/admin/city-images
func (h *Handler) CreateCityImage(c *gin.Context) {
	var req models.CityImagePayload
	if !BindJSONOrError(c, &req) {
		return
	}
	ci, err := h.cityImages(c).Create(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ci)
}

// PUT /api/admin/city-images/:id
func (h *Handler) UpdateCityImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.CityImagePayload
	if !BindJSONOrError(c, &req) {
		return
	}
	ci, err := h.cityImages(c).Update(c.Request.Context(), id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, ci)
}

// DELETE /api/admin/city-images/:id
func (h *Handler) DeleteCityImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.cityImages(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
