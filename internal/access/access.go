// Package access carries the caller identity into every business operation
// and holds the material capability check.
package access

import (
	"github.com/myr2601/mintyapp/internal/model"

	"github.com/google/uuid"
)

const (
	RoleAdmin = model.RoleAdmin
	RoleUser  = model.RoleUser
)

// Scope is the authenticated caller. Every service call that reads or writes
// office data takes one explicitly.
type Scope struct {
	UserID     uuid.UUID
	Username   string
	Role       string
	OfficeID   uuid.UUID
	OfficeName string
}

func (s Scope) IsAdmin() bool { return s.Role == RoleAdmin }

// Valid is false for the zero Scope.
func (s Scope) Valid() bool { return s.UserID != uuid.Nil && s.OfficeID != uuid.Nil }

// MaterialSet is the set of material ids a user is permitted to transact on.
type MaterialSet map[uuid.UUID]struct{}

func NewMaterialSet(ids ...uuid.UUID) MaterialSet {
	set := make(MaterialSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s MaterialSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// Can decides whether a caller with role and permitted set may put the given
// material in a transaction. Office membership is checked by the caller;
// admins are allowed any material of their office.
func Can(role string, permitted MaterialSet, materialID uuid.UUID) bool {
	if role == RoleAdmin {
		return true
	}
	if role != RoleUser {
		return false
	}
	return permitted.Has(materialID)
}
