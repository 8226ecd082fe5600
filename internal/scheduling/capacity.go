package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthgrid/hospital-api/internal/domain/appointment"
	"github.com/healthgrid/hospital-api/internal/domain/doctor"
)

// Capacity answers availability questions for a doctor's day: how much of
// the daily quota is left and whether a specific slot is taken. Pure reads;
// it never writes.
type Capacity struct {
	appointments appointment.Repository
	doctors      doctor.Repository
}

func NewCapacity(appointments appointment.Repository, doctors doctor.Repository) *Capacity {
	return &Capacity{appointments: appointments, doctors: doctors}
}

// RemainingQuota is dailyQuota(doctor) minus the doctor's non-cancelled
// appointments on date. Zero or less means the day is fully booked.
func (c *Capacity) RemainingQuota(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	d, err := c.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return 0, err
	}

	count, err := c.appointments.CountActive(ctx, doctorID, appointment.DateOnly(date))
	if err != nil {
		return 0, fmt.Errorf("counting active appointments: %w", err)
	}

	return d.DailyQuota - int(count), nil
}

// IsSlotOccupied reports whether a non-cancelled appointment already holds
// the exact (doctor, date, slot) key.
func (c *Capacity) IsSlotOccupied(ctx context.Context, doctorID uuid.UUID, date time.Time, slot appointment.TimeSlot) (bool, error) {
	return c.appointments.SlotOccupied(ctx, doctorID, appointment.DateOnly(date), slot)
}
