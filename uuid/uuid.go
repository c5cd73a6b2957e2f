// Package uuid provides the 128-bit identifier used throughout the master
// for segments and clients, represented as a pair of 64-bit integers so it
// can be pushed through lock-free queues and compared without allocation.
package uuid

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// UUID is a 128-bit identifier split into two 64-bit halves.
type UUID struct {
	Hi uint64
	Lo uint64
}

// Nil is the zero-value UUID, never issued by New.
var Nil = UUID{}

// New generates a fresh random UUID.
func New() UUID {
	return FromGoogle(uuid.New())
}

// FromGoogle converts a github.com/google/uuid value into the Hi/Lo pair.
func FromGoogle(id uuid.UUID) UUID {
	return UUID{
		Hi: binary.BigEndian.Uint64(id[0:8]),
		Lo: binary.BigEndian.Uint64(id[8:16]),
	}
}

// Google converts back into a github.com/google/uuid value, mainly for
// pretty-printing and wire encoding.
func (u UUID) Google() uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[0:8], u.Hi)
	binary.BigEndian.PutUint64(id[8:16], u.Lo)
	return id
}

func (u UUID) IsNil() bool {
	return u.Hi == 0 && u.Lo == 0
}

func (u UUID) String() string {
	return u.Google().String()
}

func Parse(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("parse uuid %q: %w", s, err)
	}
	return FromGoogle(id), nil
}
