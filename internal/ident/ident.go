// Package ident issues the opaque record identifiers used across all
// persisted documents.
package ident

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Issuer produces collision-resistant string identifiers. Ids carry a time
// component for rough ordering, but uniqueness rests on the random part:
// many ids issued within the same millisecond must still be distinct.
type Issuer interface {
	NewID() string
}

// UUID issues UUIDv7 identifiers (millisecond timestamp + 74 random bits).
type UUID struct{}

// NewUUID returns the production issuer.
func NewUUID() UUID {
	return UUID{}
}

func (UUID) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to the
		// purely random variant rather than returning an empty id.
		return uuid.NewString()
	}
	return id.String()
}

// Sequential issues deterministic ids for tests.
type Sequential struct {
	prefix string
	n      atomic.Int64
}

// NewSequential returns an issuer producing "<prefix>-1", "<prefix>-2", ...
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

func (s *Sequential) NewID() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.n.Add(1))
}
