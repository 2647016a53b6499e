package models

import "time"

// CampStatus is the lifecycle of a blood camp. Cancellation is a soft
// transition so the camp and its registrations stay on record.
type CampStatus string

const (
	CampUpcoming  CampStatus = "upcoming"
	CampOngoing   CampStatus = "ongoing"
	CampCompleted CampStatus = "completed"
	CampCancelled CampStatus = "cancelled"
)

func (s CampStatus) Valid() bool {
	switch s {
	case CampUpcoming, CampOngoing, CampCompleted, CampCancelled:
		return true
	}
	return false
}

// AttendanceStatus is the per-donor sub-state inside a camp. The owning
// hospital may move a donor between any two values.
type AttendanceStatus string

const (
	AttendanceRegistered AttendanceStatus = "registered"
	AttendanceAttended   AttendanceStatus = "attended"
	AttendanceNoShow     AttendanceStatus = "no-show"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceRegistered, AttendanceAttended, AttendanceNoShow:
		return true
	}
	return false
}

type BloodCamp struct {
	CampID          uint            `json:"camp_id" gorm:"primaryKey"`
	HospitalID      uint            `json:"hospital_id" gorm:"not null;index"`
	Title           string          `json:"title" gorm:"not null"`
	Description     string          `json:"description" gorm:"not null"`
	Location        string          `json:"location" gorm:"not null"`
	Date            time.Time       `json:"date" gorm:"not null;index"`
	Time            string          `json:"time" gorm:"not null"`
	ContactInfo     string          `json:"contact_info" gorm:"not null"`
	Status          CampStatus      `json:"status" gorm:"not null;default:upcoming"`
	InterestEntries []InterestEntry `json:"interested_donors" gorm:"foreignKey:CampID"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// InterestEntry records a donor's registration against a camp. The
// composite unique index is what makes interest registration
// insert-if-absent rather than check-then-act.
type InterestEntry struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	CampID       uint             `json:"camp_id" gorm:"not null;uniqueIndex:idx_camp_donor"`
	DonorID      uint             `json:"donor_id" gorm:"not null;uniqueIndex:idx_camp_donor"`
	Status       AttendanceStatus `json:"status" gorm:"not null;default:registered"`
	RegisteredAt time.Time        `json:"registered_at" gorm:"autoCreateTime"`
	Donor        *Donor           `json:"donor,omitempty" gorm:"foreignKey:DonorID"`
}
