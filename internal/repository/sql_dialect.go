package repository

import (
	"strings"

	"gorm.io/gorm"
)

// dbDialectName resolves the dialect name, defaulting to sqlite.
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// likeOperator returns the case-insensitive LIKE operator for the dialect.
func likeOperator(db *gorm.DB) string {
	switch dbDialectName(db) {
	case "postgres", "postgresql":
		return "ILIKE"
	default:
		return "LIKE"
	}
}
