// Package loanquery produces windowed views of open loans and the closed
// loan history of a user. It enforces the admin gate for cross-user
// queries; the page-window arithmetic lives in the lending package.
package loanquery
