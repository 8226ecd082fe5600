package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthgrid/hospital-api/internal/domain"
	"github.com/healthgrid/hospital-api/internal/domain/appointment"
	"github.com/healthgrid/hospital-api/internal/domain/doctor"
	"github.com/healthgrid/hospital-api/internal/scheduling"
	"github.com/healthgrid/hospital-api/pkg/metrics"
)

type AppointmentService struct {
	repo       appointment.Repository
	doctorRepo doctor.Repository
	checker    *scheduling.Checker
	capacity   *scheduling.Capacity
	admission  *scheduling.KeyedLock
	auditSvc   *AuditService
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	doctorRepo doctor.Repository,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:       repo,
		doctorRepo: doctorRepo,
		checker:    scheduling.NewChecker(repo, doctorRepo),
		capacity:   scheduling.NewCapacity(repo, doctorRepo),
		admission:  scheduling.NewKeyedLock(),
		auditSvc:   auditSvc,
		metrics:    collector,
		log:        log,
	}
}

// Create books an appointment. The admission decision and the insert run
// under the (doctor, day) lock so concurrent requests for the same doctor
// and day cannot both observe a free slot; requests for other doctor-days
// proceed in parallel.
func (s *AppointmentService) Create(ctx context.Context, cmd *appointment.CreateAppointmentCommand, actor Actor, ip string) (*appointment.Appointment, error) {
	if err := validateCreateAppointment(cmd); err != nil {
		return nil, err
	}

	date := appointment.DateOnly(cmd.Date)
	key := scheduling.DoctorDayKey(cmd.DoctorID, date)
	s.admission.Lock(key)
	defer s.admission.Unlock(key)

	req := &scheduling.AdmissionRequest{
		PatientID: cmd.PatientID,
		DoctorID:  cmd.DoctorID,
		Date:      date,
		Slot:      cmd.Slot,
	}
	if err := s.checker.Admit(ctx, req); err != nil {
		if reason := rejectionReason(err); reason != "" {
			s.metrics.AdmissionsRejected.WithLabelValues(reason).Inc()
			s.log.Warn("booking rejected",
				zap.String("doctor_id", cmd.DoctorID.String()),
				zap.String("patient_id", cmd.PatientID.String()),
				zap.Time("date", date),
				zap.Int("slot", int(cmd.Slot)),
				zap.String("reason", reason),
			)
		}
		return nil, err
	}

	a := &appointment.Appointment{
		PatientID:       cmd.PatientID,
		DoctorID:        cmd.DoctorID,
		AppointmentDate: date,
		TimeSlot:        cmd.Slot,
		Status:          appointment.StatusPending,
		Symptoms:        cmd.Symptoms,
		CreatedBy:       cmd.CreatedBy,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		// A unique-index violation here means another process won the slot
		// between our check and the insert.
		if errors.Is(err, appointment.ErrSlotTaken) {
			s.metrics.AdmissionsRejected.WithLabelValues("slot_taken").Inc()
			return nil, err
		}
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.metrics.AppointmentsTotal.WithLabelValues(string(appointment.StatusPending)).Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCreate,
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})

	s.log.Info("appointment created",
		zap.String("appointment_id", a.ID.String()),
		zap.String("doctor_id", a.DoctorID.String()),
		zap.Time("date", a.AppointmentDate),
		zap.Int("slot", int(a.TimeSlot)),
	)

	return a, nil
}

// Cancel handles both self-service and administrative cancellation. A
// patient may only cancel their own pending appointment; an administrator
// cancels any pending appointment with an attached reason.
func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID, actor Actor, reason string, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsPatient():
		if a.PatientID != actor.UserID {
			return nil, ErrForbidden
		}
		if reason == "" {
			reason = "cancelled by patient"
		}
	case actor.IsAdmin():
		// Administrative cancellation keeps the operator-supplied reason.
	default:
		return nil, ErrForbidden
	}

	from := a.Status
	if err := a.Cancel(reason, actor.UserID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, a, from); err != nil {
		return nil, fmt.Errorf("cancelling appointment: %w", err)
	}

	s.metrics.AppointmentsTotal.WithLabelValues(string(appointment.StatusCancelled)).Inc()
	s.metrics.CancellationsTotal.WithLabelValues(string(actor.Role)).Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCancel,
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":"cancelled","reason":%q}`, reason),
	})

	return a, nil
}

// UpdateStatus applies one transition from the booking state machine. A
// non-empty diagnosis is recorded alongside a transition to completed.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id uuid.UUID, target appointment.Status, diagnosis string, actor Actor, ip string) (*appointment.Appointment, error) {
	if actor.IsPatient() {
		return nil, ErrForbidden
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := a.Status
	if err := a.Transition(target); err != nil {
		return nil, err
	}
	if target == appointment.StatusCompleted && diagnosis != "" {
		a.Diagnosis = diagnosis
	}

	if err := s.repo.UpdateStatus(ctx, a, from); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.metrics.AppointmentsTotal.WithLabelValues(string(target)).Inc()
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "appointment",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":%q,"from":%q}`, target, from),
	})

	return a, nil
}

func (s *AppointmentService) GetByID(ctx context.Context, id uuid.UUID, actor Actor) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsPatient() && a.PatientID != actor.UserID {
		return nil, ErrForbidden
	}
	return a, nil
}

// Schedule is the read-only calendar query for a doctor's day.
func (s *AppointmentService) Schedule(ctx context.Context, doctorID uuid.UUID, date time.Time, slot *appointment.TimeSlot) ([]*appointment.Appointment, error) {
	if slot != nil && !slot.IsValid() {
		return nil, appointment.ErrInvalidTimeSlot
	}
	return s.repo.ListByDoctorDate(ctx, doctorID, appointment.DateOnly(date), slot)
}

// CheckAvailability reports whether (doctor, date, slot) is still free and
// how much of the doctor's daily quota remains.
func (s *AppointmentService) CheckAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time, slot appointment.TimeSlot) (bool, int, error) {
	if !slot.IsValid() {
		return false, 0, appointment.ErrInvalidTimeSlot
	}

	s.metrics.SlotOccupancyChecks.Inc()

	occupied, err := s.capacity.IsSlotOccupied(ctx, doctorID, date, slot)
	if err != nil {
		return false, 0, err
	}
	remaining, err := s.capacity.RemainingQuota(ctx, doctorID, date)
	if err != nil {
		return false, 0, err
	}
	if remaining < 0 {
		remaining = 0
	}

	return !occupied && remaining > 0, remaining, nil
}

func (s *AppointmentService) ListByPatient(ctx context.Context, patientID uuid.UUID, actor Actor) ([]*appointment.Appointment, error) {
	if actor.IsPatient() && patientID != actor.UserID {
		return nil, ErrForbidden
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *AppointmentService) ListByDoctor(ctx context.Context, doctorID uuid.UUID, actor Actor) ([]*appointment.Appointment, error) {
	if actor.Role == domain.RoleDoctor && (actor.DoctorID == nil || *actor.DoctorID != doctorID) {
		return nil, ErrForbidden
	}
	if actor.IsPatient() {
		return nil, ErrForbidden
	}
	return s.repo.ListByDoctor(ctx, doctorID)
}

func (s *AppointmentService) List(ctx context.Context, q *appointment.ListAppointmentsQuery) (*appointment.PagedAppointments, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func (s *AppointmentService) Stats(ctx context.Context) (*appointment.Stats, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *AppointmentService) RecentAppointments(ctx context.Context, limit int) ([]*appointment.Appointment, error) {
	if limit < 1 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}
	return s.repo.Recent(ctx, limit)
}

func validateCreateAppointment(cmd *appointment.CreateAppointmentCommand) error {
	var fields []string
	if cmd.PatientID == uuid.Nil {
		fields = append(fields, "patient_id is required")
	}
	if cmd.DoctorID == uuid.Nil {
		fields = append(fields, "doctor_id is required")
	}
	if cmd.Date.IsZero() {
		fields = append(fields, "date is required")
	}
	if !cmd.Slot.IsValid() {
		fields = append(fields, "time_slot must be between 1 and 6")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, appointment.ErrDoctorUnavailable):
		return "doctor_unavailable"
	case errors.Is(err, appointment.ErrPastDate):
		return "past_date"
	case errors.Is(err, appointment.ErrQuotaExhausted):
		return "quota_exhausted"
	case errors.Is(err, appointment.ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, appointment.ErrDuplicateBooking):
		return "duplicate_booking"
	}
	return ""
}
