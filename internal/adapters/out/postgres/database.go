package postgres

import (
	"fmt"
	"strings"
	"time"

	"shipping/internal/adapters/out/postgres/carrierrepo"
	"shipping/internal/adapters/out/postgres/quotesessionrepo"
	"shipping/internal/adapters/out/postgres/shipmentrepo"

	_ "github.com/lib/pq" // database/sql driver "postgres"
	"gorm.io/driver/mysql"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// PoolSettings bounds the connection pool of the opened database.
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the document store. Postgres connections use the lib/pq
// driver so that constraint violations surface as *pq.Error; MySQL ones are
// translated by gorm into gorm.ErrDuplicatedKey.
func Open(driver, dsn string, pool PoolSettings) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", DriverPostgres:
		dialector = gorm_postgres.New(gorm_postgres.Config{DriverName: "postgres", DSN: dsn})
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return db, nil
}

// Migrate creates or updates every table owned by the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&shipmentrepo.ShipmentDTO{},
		&shipmentrepo.ActivityDTO{},
		&carrierrepo.CarrierConfigDTO{},
		&quotesessionrepo.QuoteSessionDTO{},
	)
}
