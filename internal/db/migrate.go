package db

import (
	"errors"
	"fmt"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/tap-menu/internal/config"
	"github.com/diewo77/tap-menu/internal/models"
)

// ConnectAndMigrate opens the database and brings the schema up to date.
// With cfg.RunSQLMigrations it runs the SQL files in ./migrations via
// golang-migrate; otherwise it falls back to AutoMigrate (dev convenience).
func ConnectAndMigrate(cfg config.Config) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DatabaseDSN)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if cfg.Env == "development" {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}
	var conn *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), gormCfg)
		if err == nil {
			break
		}
		log.Warn().Err(err).Msg("retrying db connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	log.Info().Str("dsn", MaskDSN(dsn)).Msg("database connected")

	if cfg.RunSQLMigrations {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range models.All() {
			if migErr := conn.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"tables", "menu_items", "orders", "order_items"} {
		if !conn.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if cfg.Seed {
		Seed(conn)
	}
	return conn, nil
}

// Seed inserts a demo menu and a few tables so a fresh environment is
// browsable. Each record is created only when missing.
func Seed(conn *gorm.DB) {
	categories := []models.MenuCategory{
		{Name: "Starters", Description: "Small plates to share"},
		{Name: "Mains", Description: "Kitchen classics"},
		{Name: "Drinks"},
		{Name: "Desserts"},
	}
	byName := map[string]uint{}
	for _, c := range categories {
		var existing models.MenuCategory
		if err := conn.Where("name = ?", c.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if createErr := conn.Create(&c).Error; createErr != nil {
				log.Warn().Err(createErr).Str("category", c.Name).Msg("seed: category insert failed")
			}
			byName[c.Name] = c.ID
		} else {
			byName[c.Name] = existing.ID
		}
	}
	items := []models.MenuItem{
		{Name: "Bruschetta", Price: 650, CategoryID: ptr(byName["Starters"])},
		{Name: "Margherita", Price: 1200, CategoryID: ptr(byName["Mains"])},
		{Name: "Carbonara", Price: 1450, CategoryID: ptr(byName["Mains"])},
		{Name: "Sparkling water", Price: 300, CategoryID: ptr(byName["Drinks"])},
		{Name: "Tiramisu", Price: 700, CategoryID: ptr(byName["Desserts"])},
	}
	for _, it := range items {
		it.IsAvailable = true
		var existing models.MenuItem
		if err := conn.Where("name = ?", it.Name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if createErr := conn.Create(&it).Error; createErr != nil {
				log.Warn().Err(createErr).Str("item", it.Name).Msg("seed: menu item insert failed")
			}
		}
	}
	for _, number := range []string{"1", "2", "3", "4"} {
		var existing models.Table
		if err := conn.Where("number = ?", number).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			table := models.Table{Number: number, TrackingCode: models.NewTrackingCode("table")}
			if createErr := conn.Create(&table).Error; createErr != nil {
				log.Warn().Err(createErr).Str("table", number).Msg("seed: table insert failed")
			}
		}
	}
}

func ptr(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

// runSQLMigrations executes migrations in ./migrations using the golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
