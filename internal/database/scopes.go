package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/taskflow/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NewestFirst orders rows of table by creation time, newest first. The id
// breaks ties between rows created within the same clock tick.
func NewestFirst(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(fmt.Sprintf("%s.created_at DESC", table)).Order(fmt.Sprintf("%s.id DESC", table))
	}
}

// OldestFirst is the reverse of NewestFirst.
func OldestFirst(table string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(fmt.Sprintf("%s.created_at ASC", table)).Order(fmt.Sprintf("%s.id ASC", table))
	}
}

// DefaultTaskOrder is the order tasks take when a user has not arranged them.
func DefaultTaskOrder(db *gorm.DB) *gorm.DB {
	return db.Order("tasks.sort_order ASC").Order("tasks.id ASC")
}
