package models

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestCompleted RequestStatus = "completed"
	RequestCancelled RequestStatus = "cancelled"
)

type BloodRequest struct {
	RequestID      uint            `json:"request_id" gorm:"primaryKey"`
	HospitalID     uint            `json:"hospital_id" gorm:"not null;index"`
	BloodType      string          `json:"blood_type" gorm:"not null"`
	ContactPerson  string          `json:"contact_person" gorm:"not null"`
	ContactNumber  string          `json:"contact_number" gorm:"not null"`
	Urgent         bool            `json:"urgent" gorm:"default:false"`
	Status         RequestStatus   `json:"status" gorm:"not null;default:pending"`
	AcceptedBy     *uint           `json:"accepted_by"`
	Notifications  []RequestNotification `json:"notified_donors" gorm:"foreignKey:RequestID"`
	DonorResponses []DonorResponse `json:"donor_responses" gorm:"foreignKey:RequestID"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// RequestNotification marks a donor as having been notified of a request;
// only notified donors may respond to it.
type RequestNotification struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	RequestID uint `json:"request_id" gorm:"not null;uniqueIndex:idx_request_donor_notify"`
	DonorID   uint `json:"donor_id" gorm:"not null;uniqueIndex:idx_request_donor_notify"`
}

type DonorResponse struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RequestID   uint      `json:"request_id" gorm:"not null;uniqueIndex:idx_request_donor_resp"`
	DonorID     uint      `json:"donor_id" gorm:"not null;uniqueIndex:idx_request_donor_resp"`
	Response    string    `json:"response" gorm:"not null"`
	RespondedAt time.Time `json:"responded_at" gorm:"autoCreateTime"`
}
