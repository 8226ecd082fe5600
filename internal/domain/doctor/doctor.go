package doctor

import (
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	DepartmentID uuid.UUID `gorm:"column:department_id;type:uuid;not null;index"`

	Name         string `gorm:"column:name;type:varchar(100);not null;index"`
	Title        string `gorm:"column:title;type:varchar(50)"`
	Specialty    string `gorm:"column:specialty;type:varchar(200)"`
	Introduction string `gorm:"column:introduction;type:text"`
	Experience   int    `gorm:"column:experience_years"`

	ConsultationFee float64 `gorm:"column:consultation_fee;type:numeric(10,2)"`

	// DailyQuota caps non-cancelled appointments per calendar day.
	DailyQuota int  `gorm:"column:daily_quota;not null;default:20"`
	Active     bool `gorm:"column:active;not null;default:true;index"`
}

func (Doctor) TableName() string {
	return "directory.doctors"
}

// AcceptsBookings reports whether new appointments may be made with this
// doctor at all. Quota is checked separately, per day.
func (d *Doctor) AcceptsBookings() bool {
	return d.Active && d.DailyQuota > 0
}

type UpdateDoctorCommand struct {
	DepartmentID    *uuid.UUID
	Name            *string
	Title           *string
	Specialty       *string
	Introduction    *string
	Experience      *int
	ConsultationFee *float64
	DailyQuota      *int
}
