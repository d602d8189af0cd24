// Package borrow implements the borrowing state machine. A book cycles
// between exactly two states, Available and Borrowed; borrow and return
// are the only transitions. The pure transition checks live in decide.go,
// the service runs them together with the ledger and flag writes inside
// one unit of work.
package borrow
