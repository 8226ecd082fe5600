package department

import (
	"time"

	"github.com/google/uuid"
)

type Department struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name        string `gorm:"column:name;type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"column:description;type:text"`
	Location    string `gorm:"column:location;type:varchar(200)"`
	Phone       string `gorm:"column:phone;type:varchar(20)"`
}

func (Department) TableName() string {
	return "directory.departments"
}

type UpdateDepartmentCommand struct {
	Name        *string
	Description *string
	Location    *string
	Phone       *string
}

// Detail pairs a department with its headcount for the directory screen.
type Detail struct {
	Department  *Department `json:"department"`
	DoctorCount int64       `json:"doctor_count"`
}
