package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DATABASE_SVC is shared by the postgres and sqlite services; main registers exactly one.
const DATABASE_SVC = "database_svc"

// Database is the persistence handle every domain service depends on.
type Database interface {
	Db() *gorm.DB
	HandleError(err error) error
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

// classifyDBError maps an error to status and type. driverSpecific handles
// messages that only one driver produces and returns ok=false otherwise.
func classifyDBError(err error, driverSpecific func(msg string) (int, string, bool)) (int, string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return http.StatusBadRequest, "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		return http.StatusInternalServerError, "TRANSACTION_ERROR"
	}
	if status, errorType, ok := driverSpecific(err.Error()); ok {
		return status, errorType
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// handleDBError logs the classified error and wraps it as an AppError.
// AppErrors raised inside a transaction pass through untouched.
func handleDBError(err error, driverSpecific func(msg string) (int, string, bool)) error {
	if err == nil {
		return nil
	}
	if _, ok := shared.GetAppError(err); ok {
		return err
	}

	statusCode, errorType := classifyDBError(err, driverSpecific)

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	wrapped := fmt.Errorf("%s: %w", errorType, err)
	switch statusCode {
	case http.StatusNotFound:
		return shared.NewNotFoundError(wrapped, "Resource not found")
	case http.StatusConflict:
		return shared.NewConflictError(wrapped, "Resource already exists")
	case http.StatusBadRequest:
		return shared.NewBadRequestError(wrapped, "Invalid reference")
	case http.StatusServiceUnavailable:
		return shared.NewServiceUnavailableError(wrapped, "Database unavailable")
	default:
		return shared.NewInternalError(wrapped, "Internal Server Error")
	}
}
