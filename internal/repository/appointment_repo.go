package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/healthgrid/hospital-api/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		// The partial unique indexes reject a racing writer that slipped in
		// between the admission check and this insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return appointment.ErrSlotTaken
		}
		return fmt.Errorf("inserting appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("loading appointment: %w", err)
	}
	return &a, nil
}

// UpdateStatus is a compare-and-swap on the row's status: the update only
// lands if the row is still in the state the caller loaded it in.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment, from appointment.Status) error {
	res := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ? AND status = ?", a.ID, from).
		Updates(map[string]any{
			"status":        a.Status,
			"diagnosis":     a.Diagnosis,
			"cancel_reason": a.CancelReason,
			"cancelled_by":  a.CancelledBy,
		})
	if res.Error != nil {
		return fmt.Errorf("updating appointment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the row vanished or a concurrent writer moved it first.
		var count int64
		if err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
			Where("id = ?", a.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("checking appointment existence: %w", err)
		}
		if count == 0 {
			return appointment.ErrAppointmentNotFound
		}
		return appointment.ErrInvalidStatusTransition
	}
	return nil
}

func (r *AppointmentRepository) CountActive(ctx context.Context, doctorID uuid.UUID, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND status <> ?", doctorID, date, appointment.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting active appointments: %w", err)
	}
	return count, nil
}

func (r *AppointmentRepository) SlotOccupied(ctx context.Context, doctorID uuid.UUID, date time.Time, slot appointment.TimeSlot) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND time_slot = ? AND status <> ?",
			doctorID, date, slot, appointment.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking slot occupancy: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentRepository) HasPatientBooking(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("patient_id = ? AND doctor_id = ? AND appointment_date = ? AND status <> ?",
			patientID, doctorID, date, appointment.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking patient booking: %w", err)
	}
	return count > 0, nil
}

func (r *AppointmentRepository) ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time, slot *appointment.TimeSlot) ([]*appointment.Appointment, error) {
	tx := r.db.WithContext(ctx).
		Where("doctor_id = ? AND appointment_date = ?", doctorID, date)
	if slot != nil {
		tx = tx.Where("time_slot = ?", *slot)
	}

	var out []*appointment.Appointment
	if err := tx.Order("time_slot ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing doctor schedule: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("appointment_date DESC, time_slot ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing patient appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("appointment_date DESC, time_slot ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing doctor appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	tx := r.db.WithContext(ctx).Model(&appointment.Appointment{})

	if q.PatientName != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM auth.users u WHERE u.id = patient_id AND u.name LIKE ?)",
			"%"+q.PatientName+"%")
	}
	if q.DoctorName != "" {
		tx = tx.Where("EXISTS (SELECT 1 FROM directory.doctors d WHERE d.id = doctor_id AND d.name LIKE ?)",
			"%"+q.DoctorName+"%")
	}
	if q.DepartmentID != nil {
		tx = tx.Where("EXISTS (SELECT 1 FROM directory.doctors d WHERE d.id = doctor_id AND d.department_id = ?)",
			*q.DepartmentID)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}

	var rows []*appointment.Appointment
	err := tx.Order("created_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	totalPages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return &appointment.PagedAppointments{
		Appointments: rows,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   totalPages,
	}, nil
}

func (r *AppointmentRepository) Recent(ctx context.Context, limit int) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing recent appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) CountByStatus(ctx context.Context) (*appointment.Stats, error) {
	type row struct {
		Status appointment.Status
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating appointment stats: %w", err)
	}

	stats := &appointment.Stats{}
	for _, r := range rows {
		stats.Total += r.Count
		switch r.Status {
		case appointment.StatusPending:
			stats.Pending = r.Count
		case appointment.StatusConfirmed:
			stats.Confirmed = r.Count
		case appointment.StatusCompleted:
			stats.Completed = r.Count
		case appointment.StatusCancelled:
			stats.Cancelled = r.Count
		}
	}
	return stats, nil
}
