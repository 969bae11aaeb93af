package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = NewID()
	}
	return nil
}

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string
	DSN    string
	// Silent disables gorm's SQL logging.
	Silent bool
}

// InitDB opens the record store and migrates every collection the tracker uses.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case DriverMySQL, "":
		dialector = mysql.Open(config.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(config.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	gormConfig := &gorm.Config{}
	if config.Silent {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("while opening %s database: %w", config.Driver, err)
	}

	if config.Driver == DriverSQLite {
		// SQLite allows a single writer; one connection keeps in-memory databases
		// visible to every query and avoids SQLITE_BUSY under the job workers.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("while getting sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Subscription{},
		&Medication{},
		&ScheduleEntry{},
		&AdherenceLog{},
		&Interaction{},
		&Symptom{},
		&Vital{},
	)
	if err != nil {
		return nil, fmt.Errorf("while migrating database: %w", err)
	}

	return db, nil
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.New().String()
}
