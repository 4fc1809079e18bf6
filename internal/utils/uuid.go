package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered (v7) UUID strings used as note ids,
// trace ids and notifier endpoint names.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
