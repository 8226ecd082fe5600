package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// GetByID returns ErrDoctorNotFound if the row is absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)

	Create(ctx context.Context, d *Doctor) error
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateDoctorCommand) (*Doctor, error)

	// SetActive flips the accepting-patients flag.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	ListAll(ctx context.Context) ([]*Doctor, error)
	ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*Doctor, error)
	Search(ctx context.Context, keyword string) ([]*Doctor, error)

	CountByDepartment(ctx context.Context, departmentID uuid.UUID) (int64, error)
}
