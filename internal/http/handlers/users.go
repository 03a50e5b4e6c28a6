package handlers

import (
	"net/http"

	"transferportal/internal/domain/models"
	"transferportal/internal/http/middleware"
	"transferportal/internal/services"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GET /api/admin/users?q=&role=&status=&page=&pageSize=
func (h *Handler) ListUsers(c *gin.Context) {
	f := models.UserFilter{Query: c.Query("q"), Role: c.Query("role"), Status: c.Query("status")}
	list, page, err := h.users(c).List(c.Request.Context(), f, pageFromQuery(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, list, page)
}

// GET /api/admin/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	u, err := h.users(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// POST /api/admin/accounts
func (h *Handler) CreateAccount(c *gin.Context) {
	var req services.CreateAccountInput
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.users(c).CreateAccount(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

// PUT /api/admin/users/:id/credentials
func (h *Handler) UpdateCredentials(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.CredentialsUpdate
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.users(c).UpdateCredentials(c.Request.Context(), id, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// PUT /api/admin/users/:id/status
func (h *Handler) SetUserStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	actor := middleware.GetRequestContext(c).UserID
	u, err := h.users(c).SetStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// DELETE /api/admin/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.users(c).Delete(c.Request.Context(), middleware.GetRequestContext(c).UserID, id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
