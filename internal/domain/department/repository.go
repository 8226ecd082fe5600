package department

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create returns ErrDepartmentExists on a duplicate name.
	Create(ctx context.Context, d *Department) error

	// GetByID returns ErrDepartmentNotFound if the row is absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)

	Update(ctx context.Context, id uuid.UUID, cmd *UpdateDepartmentCommand) (*Department, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListAll(ctx context.Context) ([]*Department, error)
	Search(ctx context.Context, keyword string) ([]*Department, error)
}
