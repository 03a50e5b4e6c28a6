package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBDSN  string
	DBUser string
	DBPass string
	DBHost string
	DBName string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CatalogFile string

	AdminEmail    string
	AdminPassword string
	CompanyName   string
}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// LoadEnv reads .env (when present) and then the process environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: failed to load .env: %v", err)
	}

	env := Env{
		AppAddr:       getenv("APP_ADDR", ":8080"),
		GinMode:       getenv("GIN_MODE", ""),
		DBDSN:         getenv("DB_DSN", ""),
		DBUser:        getenv("DB_USER", "root"),
		DBPass:        getenv("DB_PASS", ""),
		DBHost:        getenv("DB_HOST", "127.0.0.1:3306"),
		DBName:        getenv("DB_NAME", "transfer_portal"),
		JWTSecret:     getenv("JWT_SECRET", "change-me-in-production"),
		JWTTTL:        time.Duration(getenvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		CORSOrigins:   defaultCORSOrigins,
		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),
		CatalogFile:   getenv("CATALOG_FILE", "catalog.yaml"),
		AdminEmail:    getenv("ADMIN_EMAIL", ""),
		AdminPassword: getenv("ADMIN_PASSWORD", ""),
		CompanyName:   getenv("COMPANY_NAME", "Airport Transfers"),
	}

	if raw := getenv("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		env.CORSOrigins = nil
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSOrigins = append(env.CORSOrigins, o)
			}
		}
	}

	return env
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("warning: %s=%q is not a number, using %d", key, v, def)
		return def
	}
	return n
}
