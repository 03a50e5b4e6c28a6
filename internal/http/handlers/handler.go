package handlers

import (
	"database/sql"

	"transferportal/internal/domain/models"
	"transferportal/internal/events"
	"transferportal/internal/http/middleware"
	"transferportal/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps are the shared collaborators of every handler. Nil stores fall back to the
// MySQL repositories on the global connection.
type Deps struct {
	DB         *sql.DB
	Users      services.UserStore
	Pricing    services.PricingStore
	Bookings   services.BookingStore
	CityImages services.CityImageStore
	Bus        events.Bus
	Tokens     services.TokenIssuer
	Catalog    models.Catalog
	HashCost   int
	Company    string
}

// Handler builds request-scoped services so every log line carries the request id.
type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	return &Handler{Deps: d}
}

func (h *Handler) auth(c *gin.Context) services.AuthService {
	return services.AuthService{Users: h.Users, Tokens: h.Tokens, HashCost: h.HashCost, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) users(c *gin.Context) services.UserService {
	return services.UserService{Users: h.Users, HashCost: h.HashCost, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) pricing(c *gin.Context) services.PricingService {
	return services.PricingService{Pricing: h.Pricing, Catalog: h.Deps.Catalog, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) bookings(c *gin.Context) services.BookingService {
	return services.BookingService{
		Bookings:  h.Bookings,
		Pricing:   h.pricing(c),
		Bus:       h.Bus,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) invoices(c *gin.Context) services.InvoiceService {
	return services.InvoiceService{Bookings: h.Bookings, Company: h.Company, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) cityImages(c *gin.Context) services.CityImageService {
	return services.CityImageService{Images: h.CityImages, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) summary() services.SummaryService {
	return services.SummaryService{Users: h.Users, Bookings: h.Bookings}
}
