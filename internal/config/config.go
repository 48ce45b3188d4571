// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache, sessions, rate limiting)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Gemini — copy generation (vision + JSON mode) and primary image synthesis.
	GeminiKey        string
	GeminiModel      string
	GeminiImageModel string
	GeminiBaseURL    string

	// OpenAI — fallback image synthesis (DALL-E) and prompt moderation.
	OpenAIKey        string
	OpenAIImageModel string
	OpenAIBaseURL    string

	// S3-compatible object storage for generated article images.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// Public site base URL used when building CTA links.
	SiteBaseURL string
}

// Load reads configuration from the environment, after loading a local
// .env file if one exists (development convenience — ignored in production
// images where variables come from the orchestrator). Returns an error if
// critical values are missing in production mode.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "adverpress"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "adverpress"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		GeminiKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      envOrDefault("GEMINI_MODEL", "gemini-3.1-pro-preview"),
		GeminiImageModel: envOrDefault("GEMINI_MODEL_IMAGE", "gemini-2.5-flash-image"),
		GeminiBaseURL:    os.Getenv("GEMINI_BASE_URL"),

		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIImageModel: envOrDefault("OPENAI_MODEL_IMAGE", "dall-e-3"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "eu-central"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "adverpress-media"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		SiteBaseURL: envOrDefault("SITE_BASE_URL", "http://localhost:8080"),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
