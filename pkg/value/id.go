package value

import "github.com/google/uuid"

// NewID mints a fresh UUIDv4 text form, used as the identity of every
// Node, Edge, and Vector created during execution (spec.md §3).
func NewID() string {
	return uuid.New().String()
}

// ValidID reports whether s parses as a UUID, used to validate ids supplied
// at runtime (e.g. N<T>(x) start steps, AddE endpoints).
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
