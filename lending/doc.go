// Package lending holds the domain types and the error taxonomy of the
// library-lending system: catalog books, loans with their open/closed
// lifecycle, authenticated principals, and the page-window arithmetic
// used by the loan listings.
//
// The package is intentionally free of storage and transport concerns.
// The unit-of-work port defined here is implemented by the Postgres
// engine and consumed by the borrowing service.
package lending
