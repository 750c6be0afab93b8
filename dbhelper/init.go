package dbhelper

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wardrobeapi/config"
	"wardrobeapi/models"
)

func SetupDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(cfg), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == "sqlite" {
		// single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(300)
		sqlDB.SetConnMaxLifetime(time.Minute * 5)
	}
	return db, nil
}

func dialector(cfg *config.Config) gorm.Dialector {
	if cfg.DBDriver == "sqlite" {
		return sqlite.Open(cfg.SQLitePath)
	}
	return postgres.Open(
		fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			cfg.DBUsername,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		),
	)
}

// MigrateAll creates or updates every table the service owns.
func MigrateAll(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.UserAccount{},
		&models.UserPushToken{},
		&models.ClothingItem{},
		&models.Outfit{},
		&models.TryOnGeneration{},
	} {
		if err := Migrate(db, model); err != nil {
			return err
		}
	}
	return nil
}

var testDBCounter atomic.Int64

// SetupTestDB opens a private in-memory sqlite database with the full schema.
func SetupTestDB() *gorm.DB {
	os.Setenv("JWT_SECRET", "test-secret")
	cfg := config.DefaultConfig()
	cfg.DBDriver = "sqlite"
	cfg.SQLitePath = fmt.Sprintf("file:wardrobe_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := SetupDB(cfg)
	if err != nil {
		panic(err)
	}
	if err := MigrateAll(db); err != nil {
		panic(err)
	}
	return db
}
