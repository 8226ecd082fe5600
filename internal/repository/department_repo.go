package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/healthgrid/hospital-api/internal/domain/department"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(ctx context.Context, d *department.Department) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return department.ErrDepartmentExists
		}
		return fmt.Errorf("inserting department: %w", err)
	}
	return nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*department.Department, error) {
	var d department.Department
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, department.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("loading department: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepository) Update(ctx context.Context, id uuid.UUID, cmd *department.UpdateDepartmentCommand) (*department.Department, error) {
	updates := map[string]any{}
	if cmd.Name != nil {
		updates["name"] = *cmd.Name
	}
	if cmd.Description != nil {
		updates["description"] = *cmd.Description
	}
	if cmd.Location != nil {
		updates["location"] = *cmd.Location
	}
	if cmd.Phone != nil {
		updates["phone"] = *cmd.Phone
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&department.Department{}).
			Where("id = ?", id).
			Updates(updates)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, department.ErrDepartmentExists
			}
			return nil, fmt.Errorf("updating department: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, department.ErrDepartmentNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *DepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&department.Department{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting department: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

func (r *DepartmentRepository) ListAll(ctx context.Context) ([]*department.Department, error) {
	var out []*department.Department
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	return out, nil
}

func (r *DepartmentRepository) Search(ctx context.Context, keyword string) ([]*department.Department, error) {
	pattern := "%" + keyword + "%"
	var out []*department.Department
	err := r.db.WithContext(ctx).
		Where("name LIKE ? OR description LIKE ?", pattern, pattern).
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("searching departments: %w", err)
	}
	return out, nil
}
