package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"heyo-service/config"
	"heyo-service/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens a gorm handle for the given driver ("postgres" or "sqlite").
func Connect(driver string, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: queryLogger(log.New(os.Stdout, "\r\n", log.LstdFlags)),
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// An in-memory database lives only as long as its connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// queryLogger reports slow queries and failures. A missing row is an
// expected outcome of lookups and is not logged.
func queryLogger(writer logger.Writer) logger.Interface {
	return logger.New(writer, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Friendship{},
		&model.ChatMessage{},
		&model.Notification{},
	)
}

func DatabaseConnect() {
	driver := config.Config("DB_DRIVER")
	if driver == "" {
		driver = "postgres"
	}

	dsn := config.Config("DB_DSN")
	if driver == "postgres" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			config.Config("POSTGRES_HOST"),
			config.Config("POSTGRES_PORT"),
			config.Config("POSTGRES_USER"),
			config.Config("POSTGRES_PASSWORD"),
			config.Config("POSTGRES_DB"),
		)
	}

	var err error
	DB, err = Connect(driver, dsn)
	if err != nil {
		panic(fmt.Sprintf("failed to connect %s: %v", driver, err))
	}
	log.Printf("Connection opened to %s", driver)

	if err := Migrate(DB); err != nil {
		panic(fmt.Sprintf("failed to migrate %s: %v", driver, err))
	}
	log.Printf("Database migrated")
}
