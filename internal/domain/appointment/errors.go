package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrInvalidStatus           = errors.New("unknown appointment status")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrCannotCancel            = errors.New("only pending appointments can be cancelled")
	ErrInvalidTimeSlot         = errors.New("invalid time slot")
	ErrPastDate                = errors.New("cannot book an appointment for a past date")

	// Admission rejections. All three map to HTTP 409: the caller must
	// resubmit with a different slot or day.
	ErrDoctorUnavailable = errors.New("doctor does not exist or is not accepting appointments")
	ErrQuotaExhausted    = errors.New("the doctor's daily appointment quota is exhausted")
	ErrSlotTaken         = errors.New("this time slot is already booked")
	ErrDuplicateBooking  = errors.New("patient already has an appointment with this doctor on this day")
)
