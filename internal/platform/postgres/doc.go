// Package postgres provides the PostgreSQL implementation of the user
// account store defined in internal/store, together with the embedded goose
// migrations that create its schema. Driver errors are translated into the
// store package's sentinel errors so callers never inspect pgconn codes.
package postgres
