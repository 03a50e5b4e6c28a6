package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "transferportal/internal/config"
	"transferportal/internal/db"
	"transferportal/internal/events"
	router "transferportal/internal/http"
	"transferportal/internal/http/handlers"
	"transferportal/internal/metrics"
	"transferportal/internal/repositories"
	"transferportal/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	conn, err := intconfig.ConnectDB(env)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer intconfig.CloseDB()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	if err := db.EnsureSchema(startCtx, conn); err != nil {
		log.Fatalf("failed to prepare schema: %v", err)
	}

	catalog, err := intconfig.LoadCatalog(env.CatalogFile)
	if err != nil {
		log.Fatalf("failed to load catalog %s: %v", env.CatalogFile, err)
	}

	var bus events.Bus
	if env.RedisAddr != "" {
		client, err := events.NewRedisClient(startCtx, events.RedisOptions{
			Addr:     env.RedisAddr,
			Password: env.RedisPassword,
			DB:       env.RedisDB,
		})
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		bus = events.NewRedisBus(client)
		log.Printf("booking feed via redis %s", env.RedisAddr)
	} else {
		bus = events.NewMemoryBus(0)
		log.Println("booking feed in-process (REDIS_ADDR not set)")
	}
	defer bus.Close()

	metrics.Register()

	users := repositories.UserRepository{DB: conn}
	if created, err := (services.UserService{Users: users, HashCost: bcrypt.DefaultCost}).
		EnsureAdmin(startCtx, env.AdminEmail, env.AdminPassword); err != nil {
		log.Fatalf("failed to create admin account: %v", err)
	} else if created {
		log.Printf("admin account %s created", env.AdminEmail)
	}

	r := router.NewRouter(env, handlers.Deps{
		DB:         conn,
		Users:      users,
		Pricing:    repositories.PricingRepository{DB: conn},
		Bookings:   repositories.BookingRepository{DB: conn},
		CityImages: repositories.CityImageRepository{DB: conn},
		Bus:        bus,
		Tokens:     services.TokenIssuer{Secret: []byte(env.JWTSecret), TTL: env.JWTTTL},
		Catalog:    catalog,
		HashCost:   bcrypt.DefaultCost,
		Company:    env.CompanyName,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped cleanly")
}
