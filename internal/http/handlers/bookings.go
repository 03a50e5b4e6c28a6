package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"transferportal/internal/domain/models"
	"transferportal/internal/http/middleware"
	"transferportal/internal/utils"

	"github.com/gin-gonic/gin"
)

type paymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

// POST /api/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var req models.BookingInput
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookings(c).Create(c.Request.Context(), middleware.GetRequestContext(c).UserID, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /api/bookings?status=
func (h *Handler) ListMyBookings(c *gin.Context) {
	list, page, err := h.bookings(c).ListMine(c.Request.Context(), middleware.GetRequestContext(c).UserID, c.Query("status"), pageFromQuery(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, list, page)
}

// GET /api/bookings/:id
func (h *Handler) GetMyBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings(c).GetMine(c.Request.Context(), middleware.GetRequestContext(c).UserID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/bookings/:id/cancel
func (h *Handler) CancelMyBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings(c).CancelMine(c.Request.Context(), middleware.GetRequestContext(c).UserID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/bookings/:id/invoice (owner or admin)
func (h *Handler) BookingInvoice(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.invoices(c).Generate(c.Request.Context(), middleware.GetRequestContext(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	attachment(c, "application/pdf", filename, pdf, true)
}

// GET /api/admin/bookings?status=&payment_status=&user_id=&q=&from=&to=
func (h *Handler) ListBookings(c *gin.Context) {
	f := models.BookingFilter{
		Status:        strings.ToLower(c.Query("status")),
		PaymentStatus: strings.ToLower(c.Query("payment_status")),
		Query:         c.Query("q"),
	}
	if v := c.Query("user_id"); v != "" {
		uid, err := strconv.ParseInt(v, 10, 64)
		if err != nil || uid <= 0 {
			respondError(c, http.StatusBadRequest, "validation_error", "invalid user_id", nil)
			return
		}
		f.UserID = uid
	}
	if v := c.Query("from"); v != "" {
		from, err := utils.ParseDate(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "from must be YYYY-MM-DD", nil)
			return
		}
		f.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := utils.ParseDate(v)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "to must be YYYY-MM-DD", nil)
			return
		}
		// inclusive end date
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}
	list, page, err := h.bookings(c).List(c.Request.Context(), f, pageFromQuery(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondList(c, list, page)
}

// GET /api/admin/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/admin/bookings/:id/status
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookings(c).UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/admin/bookings/:id/payment
func (h *Handler) UpdateBookingPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookings(c).UpdatePayment(c.Request.Context(), id, req.PaymentStatus, req.PaymentMethod)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DELETE /api/admin/bookings/:id
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.bookings(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
