package doctor

import "errors"

var (
	ErrDoctorNotFound = errors.New("doctor not found")
	ErrInvalidQuota   = errors.New("daily quota must not be negative")
)
