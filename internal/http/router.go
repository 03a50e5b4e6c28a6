package api

import (
	"log"
	stdhttp "net/http"

	intconfig "transferportal/internal/config"
	"transferportal/internal/domain"
	h "transferportal/internal/http/handlers"
	"transferportal/internal/http/middleware"
	"transferportal/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(env intconfig.Env, deps h.Deps) *gin.Engine {
	hd := h.New(deps)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Metrics(), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var accounts middleware.AccountLookup = repositories.UserRepository{DB: deps.DB}
	if deps.Users != nil {
		accounts = deps.Users
	}
	authn := middleware.Auth(deps.Tokens, accounts)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/routes", h.Routes)

		// Marketing site and booking flow
		public := api.Group("/public")
		public.GET("/countries", hd.Countries)
		public.GET("/locations/:country", hd.Locations)
		public.GET("/catalog", hd.PublicCatalog)
		public.POST("/quote", hd.Quote)
		public.GET("/city-images", hd.ListCityImages)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", hd.Register)
		auth.POST("/login", hd.Login)

		// Live feed; browsers cannot set headers on websockets, so Auth also reads ?token=
		api.GET("/ws/bookings", authn, hd.BookingFeed)

		// User dashboard
		me := api.Group("/me", authn)
		me.GET("", hd.Me)
		me.PATCH("", hd.UpdateMe)
		me.PUT("/password", hd.ChangePassword)

		bookings := api.Group("/bookings", authn)
		bookings.POST("", hd.CreateBooking)
		bookings.GET("", hd.ListMyBookings)
		bookings.GET("/:id", hd.GetMyBooking)
		bookings.POST("/:id/cancel", hd.CancelMyBooking)
		bookings.GET("/:id/invoice", hd.BookingInvoice)

		// Admin back-office
		admin := api.Group("/admin", authn, adminOnly)
		admin.GET("/summary", hd.AdminSummary)

		admin.POST("/accounts", hd.CreateAccount)
		users := admin.Group("/users")
		users.GET("", hd.ListUsers)
		users.GET("/:id", hd.GetUser)
		users.PUT("/:id/credentials", hd.UpdateCredentials)
		users.PUT("/:id/status", hd.SetUserStatus)
		users.DELETE("/:id", hd.DeleteUser)

		adminBookings := admin.Group("/bookings")
		adminBookings.GET("", hd.ListBookings)
		adminBookings.GET("/:id", hd.GetBooking)
		adminBookings.PUT("/:id/status", hd.UpdateBookingStatus)
		adminBookings.PUT("/:id/payment", hd.UpdateBookingPayment)
		adminBookings.DELETE("/:id", hd.DeleteBooking)
		adminBookings.GET("/:id/invoice", hd.BookingInvoice)

		pricing := admin.Group("/pricing")
		pricing.GET("/countries", hd.Countries)
		pricing.GET("/countries/:country", hd.GetPricing)
		pricing.PUT("/countries/:country", hd.PutPricing)
		pricing.DELETE("/countries/:country", hd.DeletePricing)
		pricing.PUT("/countries/:country/rates", hd.UpsertRate)
		pricing.DELETE("/countries/:country/rates", hd.DeleteRate)
		pricing.PUT("/bulk", hd.BulkPricing)
		pricing.POST("/import", hd.ImportPricing)
		pricing.GET("/export", hd.ExportPricing)

		images := admin.Group("/city-images")
		images.GET("", hd.ListCityImages)
		images.POST("", hd.CreateCityImage)
		images.PUT("/:id", hd.UpdateCityImage)
		images.DELETE("/:id", hd.DeleteCityImage)
	}

	h.SetRouter(r)
	return r
}
