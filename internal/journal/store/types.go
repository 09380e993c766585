package store

import "scopeidx/internal/model"

// Store persists build and query runs.
type Store interface {
	Close() error
	Backend() string

	Append(run model.Run) error

	// Last returns the most recent run with the given op.
	Last(op string) (model.Run, bool, error)

	// List and Search return runs newest first.
	List(limit int) ([]model.Run, error)
	Search(text string, limit int) ([]model.Run, error)
}

const DefaultLimit = 50

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}
