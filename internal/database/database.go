package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tienda/internal/config"
	"tienda/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         NewGormLogger(200 * time.Millisecond),
	}
}

// Open connects to the configured database.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		// sqlite allows one writer; a single connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// OpenMemory opens a private in-memory sqlite database, migrated and seeded with roles.
func OpenMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(config.DBConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := SeedRoles(context.Background(), db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// SeedRoles ensures the two fixed roles exist with their well-known ids.
func SeedRoles(ctx context.Context, db *gorm.DB) error {
	roles := []models.Role{
		{ID: models.RoleAdministratorID, Name: models.RoleAdministrator},
		{ID: models.RoleClientID, Name: models.RoleClient},
	}
	for _, role := range roles {
		var existing models.Role
		err := db.WithContext(ctx).First(&existing, role.ID).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up role %s: %w", role.Name, err)
		}
		if err := db.WithContext(ctx).Create(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
		log.Info().Str("role", role.Name).Msg("seeded role")
	}
	return nil
}

// SeedAdmin creates the configured administrator account if it does not exist yet.
func SeedAdmin(ctx context.Context, db *gorm.DB, admin config.AdminConfig) error {
	if admin.Email == "" {
		return nil
	}
	if admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", admin.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	user := models.User{
		Name:         "Admin",
		Surname:      "Tienda",
		Email:        admin.Email,
		PasswordHash: string(hash),
		RoleID:       models.RoleAdministratorID,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	log.Info().Str("email", admin.Email).Msg("seeded administrator account")
	return nil
}
