package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Dialect identifiers supported by the database layer.
const (
	// DialectPostgres is the PostgreSQL dialect name.
	DialectPostgres = "postgres"
	// DialectSQLite is the SQLite dialect name.
	DialectSQLite = "sqlite"
)

// DialectName returns the active database dialect name.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// IsSQLite reports whether the connection uses SQLite.
func IsSQLite(conn *gorm.DB) bool {
	return DialectName(conn) == DialectSQLite
}

// CaseInsensitiveLikeExpr returns a SQL expression for case-insensitive LIKE.
// Postgres has ILIKE; other dialects fall back to lowercased comparison.
func CaseInsensitiveLikeExpr(conn *gorm.DB, column string) string {
	if DialectName(conn) == DialectPostgres {
		return fmt.Sprintf("%s ILIKE ?", column)
	}
	return fmt.Sprintf("LOWER(%s) LIKE ?", column)
}

// NormalizeLikePattern normalizes a LIKE pattern for the current dialect.
func NormalizeLikePattern(conn *gorm.DB, pattern string) string {
	if DialectName(conn) == DialectPostgres {
		return pattern
	}
	return strings.ToLower(pattern)
}
