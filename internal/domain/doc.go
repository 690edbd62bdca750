// Package domain holds the user account entity, its lifecycle statuses and
// the validation rules that apply to it regardless of storage or transport.
package domain
