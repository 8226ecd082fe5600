package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthgrid/hospital-api/internal/domain"
	"github.com/healthgrid/hospital-api/internal/domain/appointment"
	"github.com/healthgrid/hospital-api/internal/domain/doctor"
)

type DoctorService struct {
	repo            doctor.Repository
	appointmentRepo appointment.Repository
	auditSvc        *AuditService
	log             *zap.Logger
}

func NewDoctorService(repo doctor.Repository, appointmentRepo appointment.Repository, auditSvc *AuditService, log *zap.Logger) *DoctorService {
	return &DoctorService{repo: repo, appointmentRepo: appointmentRepo, auditSvc: auditSvc, log: log}
}

func (s *DoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) GetByUserID(ctx context.Context, userID uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *DoctorService) ListDoctors(ctx context.Context) ([]*doctor.Doctor, error) {
	return s.repo.ListAll(ctx)
}

func (s *DoctorService) ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*doctor.Doctor, error) {
	return s.repo.ListByDepartment(ctx, departmentID)
}

func (s *DoctorService) SearchDoctors(ctx context.Context, keyword string) ([]*doctor.Doctor, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.repo.ListAll(ctx)
	}
	return s.repo.Search(ctx, keyword)
}

func (s *DoctorService) UpdateDoctor(ctx context.Context, id uuid.UUID, cmd *doctor.UpdateDoctorCommand, actor Actor, ip string) (*doctor.Doctor, error) {
	if cmd.DailyQuota != nil && *cmd.DailyQuota < 0 {
		return nil, doctor.ErrInvalidQuota
	}

	d, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "doctor",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return d, nil
}

// SetAvailability marks a doctor as accepting or not accepting new
// bookings. Existing appointments are untouched.
func (s *DoctorService) SetAvailability(ctx context.Context, id uuid.UUID, active bool, actor Actor, ip string) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}

	s.log.Info("doctor availability changed",
		zap.String("doctor_id", id.String()),
		zap.Bool("active", active),
	)
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "doctor",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"active":%t}`, active),
	})

	return nil
}

// AppointmentCountForDate returns the doctor's active booking count for a
// day, the consumed portion of the daily quota.
func (s *DoctorService) AppointmentCountForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (int64, error) {
	if _, err := s.repo.GetByID(ctx, doctorID); err != nil {
		return 0, err
	}
	return s.appointmentRepo.CountActive(ctx, doctorID, appointment.DateOnly(date))
}
