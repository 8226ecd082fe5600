package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/healthgrid/hospital-api/internal/domain/appointment"
	"github.com/healthgrid/hospital-api/internal/domain/doctor"
)

// AdmissionRequest is one booking attempt awaiting an admit/reject decision.
type AdmissionRequest struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      time.Time
	Slot      appointment.TimeSlot
}

// Checker decides whether a booking request may proceed. The caller must
// hold the (doctor, day) admission lock for the whole admit-then-insert
// window so that every check observes a consistent snapshot.
type Checker struct {
	appointments appointment.Repository
	doctors      doctor.Repository
	capacity     *Capacity
}

func NewChecker(appointments appointment.Repository, doctors doctor.Repository) *Checker {
	return &Checker{
		appointments: appointments,
		doctors:      doctors,
		capacity:     NewCapacity(appointments, doctors),
	}
}

// Admit runs the admission checks in order, short-circuiting on the first
// failure. The ordering puts the cheapest and most authoritative checks
// first; the patient-scoped duplicate lookup runs last.
func (c *Checker) Admit(ctx context.Context, req *AdmissionRequest) error {
	d, err := c.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctor.ErrDoctorNotFound) {
			return appointment.ErrDoctorUnavailable
		}
		return err
	}
	if !d.Active {
		return appointment.ErrDoctorUnavailable
	}

	date := appointment.DateOnly(req.Date)
	if date.Before(appointment.DateOnly(time.Now())) {
		return appointment.ErrPastDate
	}

	remaining, err := c.capacity.RemainingQuota(ctx, req.DoctorID, date)
	if err != nil {
		return err
	}
	if remaining <= 0 {
		return appointment.ErrQuotaExhausted
	}

	occupied, err := c.capacity.IsSlotOccupied(ctx, req.DoctorID, date, req.Slot)
	if err != nil {
		return err
	}
	if occupied {
		return appointment.ErrSlotTaken
	}

	booked, err := c.appointments.HasPatientBooking(ctx, req.PatientID, req.DoctorID, date)
	if err != nil {
		return err
	}
	if booked {
		return appointment.ErrDuplicateBooking
	}

	return nil
}
