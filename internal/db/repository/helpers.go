// Package repository implements the domain repository ports using SQLite.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"lakeauth/internal/domain"
)

// mapDBError translates driver-level errors into domain errors.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &domain.ConflictError{Message: "resource already exists"}
	}
	if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
		return &domain.NotFoundError{Message: "referenced resource not found"}
	}
	return err
}

// prefixPattern builds a LIKE pattern for id-prefix filtering, escaping the
// LIKE metacharacters in the user-supplied prefix.
func prefixPattern(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
