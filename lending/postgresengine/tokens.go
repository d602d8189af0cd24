package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/hellobooks/lending-api/lending"
)

// RevokeToken blacklists a token by its jti. Revoking the same token
// twice is a no-op.
func (s *Store) RevokeToken(ctx context.Context, jti uuid.UUID, revokedAt time.Time) error {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.tokensTable).
		Cols(colJTI, colRevokedAt).
		Vals(goqu.Vals{jti.String(), revokedAt}).
		OnConflict(goqu.DoNothing())

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		s.logError(logMsgBuildQueryFailed, toSQLErr, "")
		return errors.Join(lending.ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := s.executeStatement(ctx, s.db, sqlQuery); execErr != nil {
		return execErr
	}

	return nil
}

// IsTokenRevoked reports whether a token's jti is on the blacklist.
func (s *Store) IsTokenRevoked(ctx context.Context, jti uuid.UUID) (bool, error) {
	total, err := s.countRows(ctx, s.db, s.tokensTable, goqu.Ex{colJTI: jti.String()})
	if err != nil {
		return false, err
	}

	return total > 0, nil
}
