package database

import (
	"log/slog"
	"os"
	"time"

	"threatdeck/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn, adminUsername, adminPassword string) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		slog.Info("connecting to database", "attempt", i, "max", maxAttempts)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			slog.Info("connected to database")
			break
		}

		slog.Warn("database connection failed", "err", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		slog.Error("could not connect to database", "attempts", maxAttempts, "err", err)
		os.Exit(1)
	}

	if err := Migrate(DB); err != nil {
		slog.Error("migration failed", "err", err)
		os.Exit(1)
	}

	createDefaultAdmin(adminUsername, adminPassword)
}

// Migrate applies the schema. Split out from Init so tests can run it
// against their own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Asset{},
		&models.Threat{},
		&models.Briefing{},
	)
}

// admin account comes from config only, never from the API
func createDefaultAdmin(username, password string) {
	if username == "" {
		username = "admin@threatdeck.local"
	}
	if password == "" {
		password = "Admin123!"
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		slog.Warn("could not check admin user", "err", err)
		return
	}
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Warn("could not hash admin password", "err", err)
		return
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := DB.Create(&admin).Error; err != nil {
		slog.Warn("could not create default admin", "err", err)
		return
	}

	slog.Info("created default admin user", "username", username)
}
