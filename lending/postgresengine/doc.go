// Package postgresengine implements the catalog store, the loan ledger,
// the user store, and the token blacklist on top of Postgres.
//
// SQL is built once with goqu and executed through a small adapter
// interface, so the same store runs on a pgxpool.Pool, a sql.DB
// (lib/pq), or a sqlx.DB. Borrow and return mutations run inside one
// transaction obtained through the unit-of-work surface; the partial
// unique index on open loans is the storage-level backstop for the
// at-most-one-open-loan-per-book invariant.
package postgresengine
