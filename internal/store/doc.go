// Package store declares the persistence contract for user accounts and the
// error values every implementation must return. Services depend on these
// interfaces only; concrete database code lives under internal/platform.
package store
