package services

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteService backs local development, the seed tool and tests.
type SqliteService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const SQLITE_SVC = DATABASE_SVC

// Id returns Service ID
func (ds SqliteService) Id() string {
	return SQLITE_SVC
}

// Db Access to raw SqliteService db
func (ds SqliteService) Db() *gorm.DB {
	return ds.db
}

// Configure the service
func (ds *SqliteService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("SQLITE_PATH")
	if ds.database == "" {
		ds.database = "learnhub.db"
	}

	return ds.DefaultService.Configure(ctx)
}

// Start the service and open connection to the database
// Migrate any tables that have changed since last runtime
func (ds *SqliteService) Start() (err error) {
	ds.db, err = OpenSqlite(ds.database)
	if err != nil {
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

// OpenSqlite opens and migrates a sqlite database. A single connection keeps
// writers serialized, which sqlite needs for the conditional updates to be atomic.
func OpenSqlite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Error),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return nil, err
	}
	return db, nil
}

func (ds *SqliteService) Shutdown() {
	if ds.db == nil {
		return
	}
	if sqlDB, err := ds.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (ds *SqliteService) HandleError(err error) error {
	return handleDBError(err, func(msg string) (int, string, bool) {
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return http.StatusConflict, "UNIQUE_CONSTRAINT", true
		case strings.Contains(msg, "no such table"):
			return http.StatusInternalServerError, "SCHEMA_ERROR", true
		case strings.Contains(msg, "database is locked"):
			return http.StatusServiceUnavailable, "DATABASE_LOCKED", true
		}
		return 0, "", false
	})
}
