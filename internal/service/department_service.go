package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthgrid/hospital-api/internal/domain"
	"github.com/healthgrid/hospital-api/internal/domain/department"
	"github.com/healthgrid/hospital-api/internal/domain/doctor"
)

type DepartmentService struct {
	repo       department.Repository
	doctorRepo doctor.Repository
	auditSvc   *AuditService
	log        *zap.Logger
}

func NewDepartmentService(repo department.Repository, doctorRepo doctor.Repository, auditSvc *AuditService, log *zap.Logger) *DepartmentService {
	return &DepartmentService{repo: repo, doctorRepo: doctorRepo, auditSvc: auditSvc, log: log}
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, d *department.Department, actor Actor, ip string) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Fields: []string{"name is required"}}
	}
	d.Name = strings.TrimSpace(d.Name)

	if err := s.repo.Create(ctx, d); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCreate,
		ResourceType: "department",
		ResourceID:   d.ID.String(),
		IPAddress:    ip,
	})
	return nil
}

func (s *DepartmentService) GetDepartment(ctx context.Context, id uuid.UUID) (*department.Department, error) {
	return s.repo.GetByID(ctx, id)
}

// GetDetail returns the department together with its doctor headcount.
func (s *DepartmentService) GetDetail(ctx context.Context, id uuid.UUID) (*department.Detail, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.doctorRepo.CountByDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	return &department.Detail{Department: d, DoctorCount: count}, nil
}

func (s *DepartmentService) ListDepartments(ctx context.Context) ([]*department.Department, error) {
	return s.repo.ListAll(ctx)
}

func (s *DepartmentService) SearchDepartments(ctx context.Context, keyword string) ([]*department.Department, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.repo.ListAll(ctx)
	}
	return s.repo.Search(ctx, keyword)
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uuid.UUID, cmd *department.UpdateDepartmentCommand, actor Actor, ip string) (*department.Department, error) {
	d, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "department",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})
	return d, nil
}

// DeleteDepartment refuses to remove a department that still has doctors
// assigned.
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id uuid.UUID, actor Actor, ip string) error {
	count, err := s.doctorRepo.CountByDepartment(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return department.ErrDepartmentNotEmpty
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("department deleted", zap.String("department_id", id.String()))
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "department",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      `{"deleted":true}`,
	})
	return nil
}
