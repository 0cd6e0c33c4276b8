package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	LLMURL        string
	LLMModel      string
	AdminUsername string
	AdminPassword string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LLMURL:        os.Getenv("LLM_URL"),
		LLMModel:      os.Getenv("LLM_MODEL"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.DBDSN == "" {
		slog.Error("DB_DSN is not set")
		os.Exit(1)
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionSecret == "" {
		slog.Error("SESSION_SECRET is not set")
		os.Exit(1)
	}
	if cfg.LLMURL == "" {
		cfg.LLMURL = "http://localhost:11434"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gemma3:4b"
	}

	return cfg
}
