package handlers

import (
	"net/http"

	"transferportal/internal/domain/models"
	"transferportal/internal/http/middleware"
	"transferportal/internal/services"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.auth(c).Register(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.auth(c).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/me
func (h *Handler) Me(c *gin.Context) {
	u, err := h.auth(c).Me(c.Request.Context(), middleware.GetRequestContext(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// PATCH /api/me
func (h *Handler) UpdateMe(c *gin.Context) {
	var req models.ProfileUpdate
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.auth(c).UpdateProfile(c.Request.Context(), middleware.GetRequestContext(c).UserID, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// PUT /api/me/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.auth(c).ChangePassword(c.Request.Context(), middleware.GetRequestContext(c).UserID, req.OldPassword, req.NewPassword); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
