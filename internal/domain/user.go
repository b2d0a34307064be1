package domain

import (
	"errors"
	"slices"
)

// SystemActorID identifies transitions performed by the service itself.
const SystemActorID = "system"

// Roles carried in actor tokens.
const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Actor is the identity performing an operation.
type Actor struct {
	ID    string
	OrgID string
	Roles []string
}

// SystemActor returns the actor used for automatic transitions.
func SystemActor() Actor {
	return Actor{ID: SystemActorID}
}

// IsSystem reports whether a is the service itself.
func (a Actor) IsSystem() bool {
	return a.ID == SystemActorID
}

// HasRole reports whether the actor carries role.
func (a Actor) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
