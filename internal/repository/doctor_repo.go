package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/healthgrid/hospital-api/internal/domain/doctor"
)

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("loading doctor: %w", err)
	}
	return &d, nil
}

func (r *DoctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*doctor.Doctor, error) {
	var d doctor.Doctor
	err := r.db.WithContext(ctx).First(&d, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("loading doctor by user: %w", err)
	}
	return &d, nil
}

func (r *DoctorRepository) Create(ctx context.Context, d *doctor.Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("inserting doctor: %w", err)
	}
	return nil
}

func (r *DoctorRepository) Update(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateDoctorCommand) (*doctor.Doctor, error) {
	updates := map[string]any{}
	if cmd.DepartmentID != nil {
		updates["department_id"] = *cmd.DepartmentID
	}
	if cmd.Name != nil {
		updates["name"] = *cmd.Name
	}
	if cmd.Title != nil {
		updates["title"] = *cmd.Title
	}
	if cmd.Specialty != nil {
		updates["specialty"] = *cmd.Specialty
	}
	if cmd.Introduction != nil {
		updates["introduction"] = *cmd.Introduction
	}
	if cmd.Experience != nil {
		updates["experience_years"] = *cmd.Experience
	}
	if cmd.ConsultationFee != nil {
		updates["consultation_fee"] = *cmd.ConsultationFee
	}
	if cmd.DailyQuota != nil {
		updates["daily_quota"] = *cmd.DailyQuota
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&doctor.Doctor{}).
			Where("id = ?", id).
			Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("updating doctor: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, doctor.ErrDoctorNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *DoctorRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&doctor.Doctor{}).
		Where("id = ?", id).
		Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("updating doctor status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return doctor.ErrDoctorNotFound
	}
	return nil
}

func (r *DoctorRepository) ListAll(ctx context.Context) ([]*doctor.Doctor, error) {
	var out []*doctor.Doctor
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}
	return out, nil
}

func (r *DoctorRepository) ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*doctor.Doctor, error) {
	var out []*doctor.Doctor
	err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing doctors by department: %w", err)
	}
	return out, nil
}

func (r *DoctorRepository) Search(ctx context.Context, keyword string) ([]*doctor.Doctor, error) {
	pattern := "%" + keyword + "%"
	var out []*doctor.Doctor
	err := r.db.WithContext(ctx).
		Where("name LIKE ? OR specialty LIKE ? OR title LIKE ?", pattern, pattern, pattern).
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("searching doctors: %w", err)
	}
	return out, nil
}

func (r *DoctorRepository) CountByDepartment(ctx context.Context, departmentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&doctor.Doctor{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting doctors: %w", err)
	}
	return count, nil
}
