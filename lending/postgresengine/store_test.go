package postgresengine_test

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // driver import
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellobooks/lending-api/lending"
	"github.com/hellobooks/lending-api/lending/postgresengine"
)

func Test_NewStoreFromPGXPool_NilConnection_Fails(t *testing.T) {
	// arrange
	var db *pgxpool.Pool

	// act
	store, err := postgresengine.NewStoreFromPGXPool(db)

	// assert
	assert.ErrorIs(t, err, lending.ErrNilDatabaseConnection)
	assert.Nil(t, store)
}

func Test_NewStoreFromSQLDB_NilConnection_Fails(t *testing.T) {
	// arrange
	var db *sql.DB

	// act
	store, err := postgresengine.NewStoreFromSQLDB(db)

	// assert
	assert.ErrorIs(t, err, lending.ErrNilDatabaseConnection)
	assert.Nil(t, store)
}

func Test_NewStoreFromSQLX_NilConnection_Fails(t *testing.T) {
	// arrange
	var db *sqlx.DB

	// act
	store, err := postgresengine.NewStoreFromSQLX(db)

	// assert
	assert.ErrorIs(t, err, lending.ErrNilDatabaseConnection)
	assert.Nil(t, store)
}

func Test_NewStore_EmptyTablePrefix_Fails(t *testing.T) {
	// arrange: sql.Open validates nothing, so no live database is needed
	db, openErr := sql.Open("postgres", "postgres://localhost:5432/ignored")
	require.NoError(t, openErr)

	// act
	store, err := postgresengine.NewStoreFromSQLDB(db, postgresengine.WithTablePrefix(""))

	// assert
	assert.ErrorIs(t, err, lending.ErrEmptyTableName)
	assert.Nil(t, store)
}

func Test_NewStore_WithTablePrefix_Succeeds(t *testing.T) {
	// arrange
	db, openErr := sql.Open("postgres", "postgres://localhost:5432/ignored")
	require.NoError(t, openErr)

	// act
	store, err := postgresengine.NewStoreFromSQLDB(db, postgresengine.WithTablePrefix("hellobooks_"))

	// assert
	require.NoError(t, err)
	assert.NotNil(t, store)
}
