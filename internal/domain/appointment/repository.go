package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new appointment. The storage layer carries partial
	// unique indexes on (doctor, date, slot) and (patient, doctor, date)
	// scoped to non-cancelled rows; a violation is returned as ErrSlotTaken
	// so that a racing writer from another process is still rejected.
	Create(ctx context.Context, a *Appointment) error

	// GetByID returns ErrAppointmentNotFound if the row is absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// UpdateStatus persists the status fields of a single row, guarded by a
	// compare-and-swap on the status the caller loaded: if a concurrent
	// writer moved the row away from `from` first, the update touches
	// nothing and ErrInvalidStatusTransition is returned.
	UpdateStatus(ctx context.Context, a *Appointment, from Status) error

	// CountActive counts non-cancelled appointments for a doctor on a day.
	CountActive(ctx context.Context, doctorID uuid.UUID, date time.Time) (int64, error)

	// SlotOccupied reports whether a non-cancelled appointment holds the
	// exact (doctor, date, slot) key.
	SlotOccupied(ctx context.Context, doctorID uuid.UUID, date time.Time, slot TimeSlot) (bool, error)

	// HasPatientBooking reports whether the patient already holds a
	// non-cancelled appointment with the doctor on the given day.
	HasPatientBooking(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time) (bool, error)

	// ListByDoctorDate returns a doctor's appointments for a day, optionally
	// narrowed to one slot. Used for the schedule calendar, not booking.
	ListByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time, slot *TimeSlot) ([]*Appointment, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)

	List(ctx context.Context, q *ListAppointmentsQuery) (*PagedAppointments, error)

	// Recent returns the most recently created appointments.
	Recent(ctx context.Context, limit int) ([]*Appointment, error)

	CountByStatus(ctx context.Context) (*Stats, error)
}
