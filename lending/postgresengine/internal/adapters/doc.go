// Package adapters wraps the supported database client libraries
// (pgxpool, database/sql, sqlx) behind one small interface so the store
// can build SQL once and run it against any of them, inside or outside
// a transaction.
package adapters
