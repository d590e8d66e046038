package graph

import "github.com/google/uuid"

// newGUID mints a per-object diagnostic identifier. It carries no semantic
// meaning beyond uniqueness; callers must not parse it.
func newGUID() string {
	return uuid.NewString()
}
