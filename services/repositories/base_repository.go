package repositories

import (
	"gorm.io/gorm"
)

// BaseRepository wraps a handle that is either the pool or an open transaction.
type BaseRepository struct {
	db *gorm.DB
}

func NewBaseRepository(db *gorm.DB) BaseRepository {
	return BaseRepository{db: db}
}

// DB returns the underlying database connection
func (r *BaseRepository) DB() *gorm.DB {
	return r.db
}

// isPostgres gates row locks; sqlite serializes writers on its own.
func (r *BaseRepository) isPostgres() bool {
	return r.db.Dialector != nil && r.db.Dialector.Name() == "postgres"
}
