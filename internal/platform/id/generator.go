package id

import (
	"github.com/google/uuid"

	"github.com/cockroachdb/errors"
)

// Generator creates opaque IDs for request correlation and snapshots.
type Generator interface {
	NewID() (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(err, "generate uuid")
	}
	return v.String(), nil
}

// Func adapts fn to a generator that cannot fail, e.g. for request ID interceptors.
func Func(g Generator) func() string {
	return func() string {
		v, err := g.NewID()
		if err != nil {
			return uuid.NewString()
		}
		return v
	}
}
