package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/healthgrid/hospital-api/internal/domain"
)

var ErrForbidden = errors.New("forbidden: insufficient permissions")

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Actor identifies who is performing an operation. Permission decisions
// beyond record ownership live in the HTTP middleware, not here.
type Actor struct {
	UserID   uuid.UUID
	Role     domain.Role
	DoctorID *uuid.UUID
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

func (a Actor) IsPatient() bool {
	return a.Role == domain.RolePatient
}
