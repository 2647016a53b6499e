package controllers

import (
	"errors"
	"time"

	"github.com/dussaanushka1605/bloodsetu/configuration"
	"github.com/dussaanushka1605/bloodsetu/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SweepHorizon is how far past its scheduled date an upcoming camp must be
// before the sweep marks it completed.
const SweepHorizon = 24 * time.Hour

var (
	ErrCampNotFound        = errors.New("blood camp not found")
	ErrCampClosed          = errors.New("blood camp is no longer open for registration")
	ErrAlreadyRegistered   = errors.New("you are already registered for this blood camp")
	ErrNotRegistered       = errors.New("you are not registered for this blood camp")
	ErrHospitalNotVerified = errors.New("hospital not verified")
	ErrNotCampOwner        = errors.New("not authorized to manage this blood camp")
	ErrInvalidAttendance   = errors.New("invalid attendance status value")
)

// CreateCamp inserts a new camp for a verified hospital. Status always
// starts at upcoming regardless of what the caller sent.
func CreateCamp(db *gorm.DB, hospitalID uint, camp *models.BloodCamp) error {
	var hospital models.Hospital
	if err := db.First(&hospital, hospitalID).Error; err != nil {
		return err
	}
	if !hospital.IsVerified {
		return ErrHospitalNotVerified
	}

	camp.HospitalID = hospitalID
	camp.Status = models.CampUpcoming
	camp.InterestEntries = nil
	return db.Create(camp).Error
}

// RegisterInterest adds a donor to a camp's interest list at most once.
// The insert is conditional on the composite unique index, so two racing
// requests cannot both succeed. Returns the updated interest count.
func RegisterInterest(db *gorm.DB, campID, donorID uint) (int64, error) {
	var camp models.BloodCamp
	if err := db.First(&camp, campID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCampNotFound
		}
		return 0, err
	}
	if camp.Status != models.CampUpcoming && camp.Status != models.CampOngoing {
		return 0, ErrCampClosed
	}

	entry := models.InterestEntry{
		CampID:       campID,
		DonorID:      donorID,
		Status:       models.AttendanceRegistered,
		RegisteredAt: time.Now(),
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrAlreadyRegistered
	}

	var count int64
	if err := db.Model(&models.InterestEntry{}).Where("camp_id = ?", campID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CancelInterest removes a donor's registration. Any attendance signal tied
// to the entry goes with it.
func CancelInterest(db *gorm.DB, campID, donorID uint) (int64, error) {
	var camp models.BloodCamp
	if err := db.First(&camp, campID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCampNotFound
		}
		return 0, err
	}

	res := db.Where("camp_id = ? AND donor_id = ?", campID, donorID).Delete(&models.InterestEntry{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotRegistered
	}

	var count int64
	if err := db.Model(&models.InterestEntry{}).Where("camp_id = ?", campID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SetAttendance moves a registered donor to status. The owning hospital may
// move a donor between any two values; every transition is audit-logged.
// Returns the previous status so callers can react to the change.
func SetAttendance(db *gorm.DB, campID, hospitalID, donorID uint, status models.AttendanceStatus) (models.AttendanceStatus, error) {
	if !status.Valid() {
		return "", ErrInvalidAttendance
	}

	var camp models.BloodCamp
	if err := db.First(&camp, campID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrCampNotFound
		}
		return "", err
	}
	if camp.HospitalID != hospitalID {
		return "", ErrNotCampOwner
	}

	var entry models.InterestEntry
	if err := db.Where("camp_id = ? AND donor_id = ?", campID, donorID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotRegistered
		}
		return "", err
	}

	previous := entry.Status
	if err := db.Model(&entry).Update("status", status).Error; err != nil {
		return "", err
	}

	if configuration.Logger != nil {
		configuration.Logger.Info("attendance status changed",
			zap.Uint("camp_id", campID),
			zap.Uint("donor_id", donorID),
			zap.String("from", string(previous)),
			zap.String("to", string(status)))
	}
	return previous, nil
}

// campUpdateColumns is the set of fields a hospital may edit after
// creation. Status and ownership are deliberately absent.
var campUpdateColumns = map[string]bool{
	"title":        true,
	"description":  true,
	"location":     true,
	"date":         true,
	"time":         true,
	"contact_info": true,
}

// UpdateCampFields applies the provided field changes to an owned camp.
func UpdateCampFields(db *gorm.DB, campID, hospitalID uint, updates map[string]interface{}) (*models.BloodCamp, error) {
	var camp models.BloodCamp
	if err := db.First(&camp, campID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampNotFound
		}
		return nil, err
	}
	if camp.HospitalID != hospitalID {
		return nil, ErrNotCampOwner
	}

	filtered := make(map[string]interface{}, len(updates))
	for col, val := range updates {
		if campUpdateColumns[col] {
			filtered[col] = val
		}
	}
	if len(filtered) == 0 {
		return &camp, nil
	}

	if err := db.Model(&camp).Updates(filtered).Error; err != nil {
		return nil, err
	}
	return &camp, nil
}

// CancelCamp soft-cancels an owned camp so registrations stay on record.
func CancelCamp(db *gorm.DB, campID, hospitalID uint) error {
	var camp models.BloodCamp
	if err := db.First(&camp, campID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampNotFound
		}
		return err
	}
	if camp.HospitalID != hospitalID {
		return ErrNotCampOwner
	}

	return db.Model(&camp).Update("status", models.CampCancelled).Error
}

// SweepCamps advances every upcoming camp scheduled more than SweepHorizon
// before now to completed and returns how many it touched. Re-running
// immediately finds nothing to do. Ongoing, completed, and cancelled camps
// are never touched.
func SweepCamps(db *gorm.DB, now time.Time) (int64, error) {
	cutoff := now.Add(-SweepHorizon)
	res := db.Model(&models.BloodCamp{}).
		Where("status = ? AND date < ?", models.CampUpcoming, cutoff).
		Update("status", models.CampCompleted)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		configuration.CampsSweptTotal.Add(float64(res.RowsAffected))
	}
	return res.RowsAffected, nil
}
