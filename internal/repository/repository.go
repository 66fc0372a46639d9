package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rookgm/streetmart/internal/models"
	"github.com/rookgm/streetmart/internal/repository/postgres"
)

const (
	pgErrUniqueViolationCode     = "23505"
	pgErrForeignKeyViolationCode = "23503"
	pgErrCheckViolationCode      = "23514"
	// malformed uuid literal, the row can not exist
	pgErrInvalidTextRepresentationCode = "22P02"
)

// translate maps driver errors to model errors
func translate(db *postgres.DB, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrDataNotFound
	}
	switch db.ErrorCode(err) {
	case pgErrUniqueViolationCode:
		return models.ErrConflictData
	case pgErrForeignKeyViolationCode, pgErrInvalidTextRepresentationCode:
		return models.ErrDataNotFound
	case pgErrCheckViolationCode:
		return models.NewValidationError("", err.Error())
	}
	return models.NewStoreError(op, err)
}

func limitOrDefault(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
