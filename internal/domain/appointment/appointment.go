package appointment

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is one of the six fixed consultation windows a doctor can be
// booked into on any given day. The set is closed: availability and
// conflict checks are plain equality tests, never interval arithmetic.
type TimeSlot int

const (
	SlotMorning1   TimeSlot = iota + 1 // 08:00-09:00
	SlotMorning2                       // 09:00-10:00
	SlotMorning3                       // 10:00-11:00
	SlotAfternoon1                     // 14:00-15:00
	SlotAfternoon2                     // 15:00-16:00
	SlotAfternoon3                     // 16:00-17:00
)

// slotLabels is static display data; it is never mutated at runtime.
var slotLabels = map[TimeSlot]string{
	SlotMorning1:   "morning 08:00-09:00",
	SlotMorning2:   "morning 09:00-10:00",
	SlotMorning3:   "morning 10:00-11:00",
	SlotAfternoon1: "afternoon 14:00-15:00",
	SlotAfternoon2: "afternoon 15:00-16:00",
	SlotAfternoon3: "afternoon 16:00-17:00",
}

func (s TimeSlot) IsValid() bool {
	return s >= SlotMorning1 && s <= SlotAfternoon3
}

func (s TimeSlot) IsMorning() bool {
	return s >= SlotMorning1 && s <= SlotMorning3
}

func (s TimeSlot) Label() string {
	if l, ok := slotLabels[s]; ok {
		return l
	}
	return "unknown slot"
}

// AllSlots returns the slot domain in display order.
func AllSlots() []TimeSlot {
	return []TimeSlot{
		SlotMorning1, SlotMorning2, SlotMorning3,
		SlotAfternoon1, SlotAfternoon2, SlotAfternoon3,
	}
}

// Status transition possibilities:
//
//	pending → confirmed → completed
//	pending → cancelled
//
// completed and cancelled are terminal. A confirmed appointment cannot be
// cancelled: the patient has already checked in.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	AppointmentDate time.Time `gorm:"column:appointment_date;type:date;not null;index"`
	TimeSlot        TimeSlot  `gorm:"column:time_slot;not null"`
	Status          Status    `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`

	Symptoms  string `gorm:"column:symptoms;type:text"`
	Diagnosis string `gorm:"column:diagnosis;type:text"`

	CancelReason string     `gorm:"column:cancel_reason;type:text"`
	CancelledBy  *uuid.UUID `gorm:"column:cancelled_by;type:uuid"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Appointment) TableName() string {
	return "scheduling.appointments"
}

// IsActive reports whether the appointment still holds its slot. Cancelled
// appointments release capacity; every other status occupies it.
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

func (a *Appointment) CanTransitionTo(target Status) bool {
	allowed := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	for _, s := range allowed[a.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// Transition moves the appointment to target or fails with
// ErrInvalidStatusTransition, leaving the record untouched.
func (a *Appointment) Transition(target Status) error {
	if !target.IsValid() {
		return ErrInvalidStatus
	}
	if !a.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	a.Status = target
	return nil
}

// Cancel is the dedicated cancellation entry point. Beyond the transition
// table it requires the current status to still be pending; a checked-in
// or finished visit cannot be cancelled by anyone.
func (a *Appointment) Cancel(reason string, cancelledBy uuid.UUID) error {
	if a.Status != StatusPending {
		return ErrCannotCancel
	}
	a.Status = StatusCancelled
	a.CancelReason = reason
	a.CancelledBy = &cancelledBy
	return nil
}

// DateOnly strips the time-of-day component. Appointment dates are calendar
// days; every comparison and storage key goes through this normalization.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type CreateAppointmentCommand struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      time.Time
	Slot      TimeSlot
	Symptoms  string
	CreatedBy uuid.UUID
}

type CancelAppointmentCommand struct {
	Reason      string
	CancelledBy uuid.UUID
}

// ListAppointmentsQuery drives the admin listing screen: paginated, with
// the filter set the reception desk actually uses.
type ListAppointmentsQuery struct {
	PatientName  string
	DoctorName   string
	DepartmentID *uuid.UUID
	Status       *Status
	Page         int
	PageSize     int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}

// Stats aggregates appointment counts for the admin dashboard.
type Stats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}
