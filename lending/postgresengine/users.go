package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/hellobooks/lending-api/lending"
	"github.com/hellobooks/lending-api/lending/postgresengine/internal/adapters"
)

var userColumns = []any{colID, colUsername, colEmail, colPasswordHash, colIsAdmin, colCreatedAt, colUpdatedAt}

// CreateUser inserts a new account. The guarded insert makes the
// username/email uniqueness check and the insert one statement; zero
// affected rows means the account already exists.
func (s *Store) CreateUser(ctx context.Context, username string, email string, passwordHash string, isAdmin bool) (lending.User, error) {
	builder := goqu.Dialect(dialectPostgres)

	duplicateCheck := builder.
		From(s.usersTable).
		Select(goqu.L("1")).
		Where(goqu.Or(
			goqu.Ex{colUsername: username},
			goqu.Ex{colEmail: email},
		))

	insertStmt := builder.
		Insert(s.usersTable).
		Cols(colUsername, colEmail, colPasswordHash, colIsAdmin).
		FromQuery(
			builder.
				Select(goqu.V(username), goqu.V(email), goqu.V(passwordHash), goqu.V(isAdmin)).
				Where(goqu.L("NOT EXISTS ?", duplicateCheck)),
		).
		Returning(userColumns...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return lending.User{}, errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.executeQuery(ctx, s.db, sqlQuery)
	if queryErr != nil {
		return lending.User{}, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return lending.User{}, lending.ErrUserExists
	}

	return s.scanUserRow(rows)
}

// GetUserByID loads an account by id.
func (s *Store) GetUserByID(ctx context.Context, userID int64) (lending.User, error) {
	return s.getUser(ctx, goqu.Ex{colID: userID})
}

// GetUserByUsername loads an account by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (lending.User, error) {
	return s.getUser(ctx, goqu.Ex{colUsername: username})
}

func (s *Store) getUser(ctx context.Context, where goqu.Ex) (lending.User, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.usersTable).
		Select(userColumns...).
		Where(where)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return lending.User{}, errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := s.executeQuery(ctx, s.db, sqlQuery)
	if queryErr != nil {
		return lending.User{}, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return lending.User{}, lending.ErrUserNotFound
	}

	return s.scanUserRow(rows)
}

func (s *Store) scanUserRow(rows adapters.DBRows) (lending.User, error) {
	var user lending.User

	scanErr := rows.Scan(
		&user.ID, &user.Username, &user.Email,
		&user.PasswordHash, &user.IsAdmin,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if scanErr != nil {
		s.logError(logMsgScanRowFailed, scanErr, "")
		return lending.User{}, errors.Join(lending.ErrScanningRowFailed, scanErr)
	}

	return user, nil
}
