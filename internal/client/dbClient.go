package client

import (
	"fmt"
	"time"

	"hosting-storefront/internal/config"
	"hosting-storefront/internal/model"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

func InitDatabase(cfg config.Database, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.URL)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	stdLog, err := zap.NewStdLogAt(log.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return nil, fmt.Errorf("create gorm logger: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// Missing rows are expected on lookups and surface as 404s instead.
		Logger: logger.New(stdLog, logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	// Connection pool (important for webhooks)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.User{},
		&model.Order{},
		&model.Payment{},
		&model.Invoice{},
		&model.InvoiceSequence{},
		&model.WebhookEvent{},
		&model.ContactMessage{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
