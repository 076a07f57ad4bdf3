package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                  string
	MongoURI              string
	MongoDatabase         string
	PingCollection        string
	RestaurantCollection  string
	ReviewCollection      string
	ReservationCollection string
	BiomeCollection       string
	Timeout               time.Duration
	Timezone              string
	ServerLog             *log.Logger
	JWTConfigs            []JWTConfig
	JWTAudience           string
	AllowedOrigins        []string
	RedisAddr             string
	RedisPassword         string
	SlotStepMinutes       int
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	timeout := 10 * time.Second
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		}
	}

	allowedOrigins := parseList("API_ALLOWED_ORIGINS", []string{"*"})

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_ADMIN_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_ADMIN_JWT_ISSUER", "biome-bistro-auth"),
			Secret: []byte(secret),
		})
	}
	if secret := strings.TrimSpace(os.Getenv("AUTH_PARTNER_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_PARTNER_JWT_ISSUER", "biome-bistro-partner"),
			Secret: []byte(secret),
		})
	}
	if len(jwtConfigs) == 0 {
		log.Fatal("JWT secrets not configured. Set AUTH_ADMIN_JWT_SECRET or AUTH_PARTNER_JWT_SECRET.")
	}

	jwtAudience := strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE"))

	slotStep := 30
	if raw := strings.TrimSpace(os.Getenv("BOOKING_SLOT_STEP_MINUTES")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			slotStep = parsed
		}
	}

	cfg := Config{
		Addr:                  envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:              envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:         envOrDefault("MONGO_DB", "biome-bistro"),
		PingCollection:        envOrDefault("PING_COLLECTION", "pings"),
		RestaurantCollection:  envOrDefault("RESTAURANT_COLLECTION", "restaurants"),
		ReviewCollection:      envOrDefault("REVIEW_COLLECTION", "reviews"),
		ReservationCollection: envOrDefault("RESERVATION_COLLECTION", "reservations"),
		BiomeCollection:       envOrDefault("BIOME_COLLECTION", "biomes"),
		Timeout:               timeout,
		Timezone:              envOrDefault("TIMEZONE", "Europe/Paris"),
		ServerLog:             log.New(os.Stdout, "[biome-bistro-api] ", log.LstdFlags|log.Lshortfile),
		JWTConfigs:            jwtConfigs,
		JWTAudience:           jwtAudience,
		AllowedOrigins:        allowedOrigins,
		RedisAddr:             strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		SlotStepMinutes:       slotStep,
	}

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
