package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dussaanushka1605/bloodsetu/authentication"
	"github.com/dussaanushka1605/bloodsetu/configuration"
	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type campRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Location    string `json:"location" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	ContactInfo string `json:"contactInfo" binding:"required"`
}

// CreateBloodCamp creates a camp for the authenticated (verified) hospital.
func CreateBloodCamp(c *gin.Context) {
	hospitalID, _ := authentication.CurrentUser(c)

	var req campRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "detail": err.Error()})
		return
	}

	date, err := parseCampDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	camp := models.BloodCamp{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Date:        date,
		Time:        req.Time,
		ContactInfo: req.ContactInfo,
	}

	if err := CreateCamp(configuration.DB, hospitalID, &camp); err != nil {
		if errors.Is(err, ErrHospitalNotVerified) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Hospital not verified"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create blood camp", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, camp)
}

// GetPublicCamps lists all camps, optionally filtered by location.
func GetPublicCamps(c *gin.Context) {
	query := configuration.DB.Order("date asc")
	if location := c.Query("location"); location != "" {
		query = query.Where("location ILIKE ?", "%"+location+"%")
	}

	var camps []models.BloodCamp
	if err := query.Find(&camps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching blood camps"})
		return
	}

	c.JSON(http.StatusOK, attachHospitalInfo(camps))
}

// GetHospitalCamps lists the authenticated hospital's camps with their
// interest entries.
func GetHospitalCamps(c *gin.Context) {
	hospitalID, _ := authentication.CurrentUser(c)

	query := configuration.DB.
		Preload("InterestEntries").
		Preload("InterestEntries.Donor").
		Where("hospital_id = ?", hospitalID).
		Order("date desc")

	switch c.Query("status") {
	case "upcoming":
		query = query.Where("status IN ?", []models.CampStatus{models.CampUpcoming})
	case "completed":
		query = query.Where("status IN ?", []models.CampStatus{models.CampCompleted, models.CampCancelled})
	}

	var camps []models.BloodCamp
	if err := query.Find(&camps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching hospital blood camps"})
		return
	}
	scrubEntryDonors(camps)

	c.JSON(http.StatusOK, camps)
}

// GetAdminCamps lists every camp for the admin dashboard.
func GetAdminCamps(c *gin.Context) {
	var camps []models.BloodCamp
	if err := configuration.DB.
		Preload("InterestEntries").
		Preload("InterestEntries.Donor").
		Order("date desc").
		Find(&camps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch blood camps", "detail": err.Error()})
		return
	}
	scrubEntryDonors(camps)

	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
	c.JSON(http.StatusOK, attachHospitalInfo(camps))
}

// GetDonorCamps lists open camps for the authenticated donor, flagging the
// ones they registered for. interested=true narrows to those alone.
func GetDonorCamps(c *gin.Context) {
	donorID, _ := authentication.CurrentUser(c)

	query := configuration.DB.
		Preload("InterestEntries").
		Where("status IN ?", []models.CampStatus{models.CampUpcoming, models.CampOngoing}).
		Order("date asc")

	if c.Query("interested") == "true" {
		query = query.Joins("JOIN interest_entries ON interest_entries.camp_id = blood_camps.camp_id AND interest_entries.donor_id = ?", donorID)
	}

	var camps []models.BloodCamp
	if err := query.Find(&camps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching donor blood camps"})
		return
	}

	hospitals := hospitalsByID(camps)
	formatted := make([]gin.H, 0, len(camps))
	for _, camp := range camps {
		isInterested := false
		for _, entry := range camp.InterestEntries {
			if entry.DonorID == donorID {
				isInterested = true
				break
			}
		}
		item := gin.H{
			"camp_id":                camp.CampID,
			"title":                  camp.Title,
			"description":            camp.Description,
			"location":               camp.Location,
			"date":                   camp.Date,
			"time":                   camp.Time,
			"contact_info":           camp.ContactInfo,
			"status":                 camp.Status,
			"is_interested":          isInterested,
			"interested_donors_count": len(camp.InterestEntries),
			"created_at":             camp.CreatedAt,
			"updated_at":             camp.UpdatedAt,
		}
		if h, ok := hospitals[camp.HospitalID]; ok {
			item["hospital"] = gin.H{"hospital_id": h.HospitalID, "name": h.Name, "city": h.City, "state": h.State}
		}
		formatted = append(formatted, item)
	}

	c.JSON(http.StatusOK, formatted)
}

// GetCampByID returns one camp with its interest entries.
func GetCampByID(c *gin.Context) {
	campID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var camp models.BloodCamp
	if err := configuration.DB.
		Preload("InterestEntries").
		Preload("InterestEntries.Donor").
		First(&camp, campID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blood camp not found"})
		return
	}
	scrubEntryDonors([]models.BloodCamp{camp})

	c.JSON(http.StatusOK, camp)
}

// UpdateBloodCamp edits the mutable fields of an owned camp.
func UpdateBloodCamp(c *gin.Context) {
	hospitalID, _ := authentication.CurrentUser(c)
	campID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Location    *string `json:"location"`
		Date        *string `json:"date"`
		Time        *string `json:"time"`
		ContactInfo *string `json:"contactInfo"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if body.Title != nil {
		updates["title"] = *body.Title
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.Location != nil {
		updates["location"] = *body.Location
	}
	if body.Date != nil {
		date, err := parseCampDate(*body.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
			return
		}
		updates["date"] = date
	}
	if body.Time != nil {
		updates["time"] = *body.Time
	}
	if body.ContactInfo != nil {
		updates["contact_info"] = *body.ContactInfo
	}

	camp, err := UpdateCampFields(configuration.DB, campID, hospitalID, updates)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Blood camp updated successfully", "bloodCamp": camp})
}

// DeleteBloodCamp cancels an owned camp. The record and its registrations
// are kept with status cancelled.
func DeleteBloodCamp(c *gin.Context) {
	hospitalID, _ := authentication.CurrentUser(c)
	campID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := CancelCamp(configuration.DB, campID, hospitalID); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Blood camp cancelled successfully"})
}

// RegisterCampInterest registers the authenticated donor for a camp.
func RegisterCampInterest(c *gin.Context) {
	donorID, _ := authentication.CurrentUser(c)
	campID, ok := paramID(c, "id")
	if !ok {
		return
	}

	count, err := RegisterInterest(configuration.DB, campID, donorID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	recordHistory(donorID, models.RoleDonor, "register_blood_camp", gin.H{"camp_id": campID})
	c.JSON(http.StatusOK, gin.H{
		"message":                 "Successfully registered interest in blood camp",
		"camp_id":                 campID,
		"interested_donors_count": count,
	})
}

// CancelCampInterest removes the authenticated donor's registration.
func CancelCampInterest(c *gin.Context) {
	donorID, _ := authentication.CurrentUser(c)
	campID, ok := paramID(c, "id")
	if !ok {
		return
	}

	count, err := CancelInterest(configuration.DB, campID, donorID)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	recordHistory(donorID, models.RoleDonor, "cancel_blood_camp_registration", gin.H{"camp_id": campID})
	c.JSON(http.StatusOK, gin.H{
		"message":                 "Successfully cancelled interest in blood camp",
		"camp_id":                 campID,
		"interested_donors_count": count,
	})
}

// UpdateAttendance sets a registered donor's attendance status. Moving a
// donor to attended counts the donation and mails them a certificate.
func UpdateAttendance(c *gin.Context) {
	hospitalID, _ := authentication.CurrentUser(c)
	campID, ok := paramID(c, "id")
	if !ok {
		return
	}
	donorID, ok := paramID(c, "donorId")
	if !ok {
		return
	}

	var body struct {
		Status models.AttendanceStatus `json:"status" binding:"required"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	previous, err := SetAttendance(configuration.DB, campID, hospitalID, donorID, body.Status)
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	recordHistory(donorID, models.RoleDonor, "attendance_updated", gin.H{
		"camp_id": campID, "from": previous, "to": body.Status,
	})

	if body.Status == models.AttendanceAttended && previous != models.AttendanceAttended {
		creditDonation(campID, donorID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Donor attendance status updated successfully",
		"donor_id": donorID,
		"status":   body.Status,
	})
}

// TriggerCampSweep lets the admin run the status sweep on demand.
func TriggerCampSweep(c *gin.Context) {
	updated, err := SweepCamps(configuration.DB, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating blood camp status", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Blood camp status update triggered successfully",
		"updatedCount": updated,
	})
}

// creditDonation bumps the donor's donation count, stamps the donation
// date, and mails a certificate. Certificate failures are logged, not
// surfaced: the attendance change already happened.
func creditDonation(campID, donorID uint) {
	var camp models.BloodCamp
	if err := configuration.DB.First(&camp, campID).Error; err != nil {
		return
	}
	var donor models.Donor
	if err := configuration.DB.First(&donor, donorID).Error; err != nil {
		return
	}
	var hospital models.Hospital
	if err := configuration.DB.First(&hospital, camp.HospitalID).Error; err != nil {
		return
	}

	donationDate := camp.Date
	if err := configuration.DB.Model(&donor).Updates(map[string]interface{}{
		"donations":     donor.Donations + 1,
		"last_donation": donationDate,
	}).Error; err != nil {
		configuration.Logger.Warn("failed to credit donation",
			zap.Uint("donor_id", donorID), zap.Error(err))
		return
	}

	pdf, serial, err := GenerateDonationCertificate(donor, hospital, camp)
	if err != nil {
		configuration.Logger.Warn("failed to generate certificate",
			zap.Uint("donor_id", donorID), zap.Error(err))
		return
	}
	msg := "Thank you for donating blood at " + camp.Title + ". Your certificate is attached."
	if err := SendEmail(msg, "BloodSetu - Donation Certificate", donor.Email, "certificate.pdf", pdf); err != nil {
		configuration.Logger.Warn("failed to send certificate email",
			zap.Uint("donor_id", donorID), zap.String("serial", serial), zap.Error(err))
	}
}

func parseCampDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCampNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotRegistered), errors.Is(err, ErrCampClosed), errors.Is(err, ErrInvalidAttendance):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotCampOwner), errors.Is(err, ErrHospitalNotVerified):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// hospitalsByID loads the owning hospitals for a camp list in one query.
func hospitalsByID(camps []models.BloodCamp) map[uint]models.Hospital {
	ids := make([]uint, 0, len(camps))
	seen := make(map[uint]bool)
	for _, camp := range camps {
		if !seen[camp.HospitalID] {
			seen[camp.HospitalID] = true
			ids = append(ids, camp.HospitalID)
		}
	}
	result := make(map[uint]models.Hospital, len(ids))
	if len(ids) == 0 {
		return result
	}
	var hospitals []models.Hospital
	if err := configuration.DB.Where("hospital_id IN ?", ids).Find(&hospitals).Error; err != nil {
		return result
	}
	for _, h := range hospitals {
		result[h.HospitalID] = h
	}
	return result
}

func attachHospitalInfo(camps []models.BloodCamp) []gin.H {
	hospitals := hospitalsByID(camps)
	out := make([]gin.H, 0, len(camps))
	for _, camp := range camps {
		item := gin.H{
			"camp_id":      camp.CampID,
			"title":        camp.Title,
			"description":  camp.Description,
			"location":     camp.Location,
			"date":         camp.Date,
			"time":         camp.Time,
			"contact_info": camp.ContactInfo,
			"status":       camp.Status,
			"created_at":   camp.CreatedAt,
		}
		if h, ok := hospitals[camp.HospitalID]; ok {
			item["hospital"] = gin.H{
				"hospital_id": h.HospitalID,
				"name":        h.Name,
				"city":        h.City,
				"state":       h.State,
				"email":       h.Email,
				"phone":       h.Phone,
			}
		}
		out = append(out, item)
	}
	return out
}

// scrubEntryDonors blanks credential hashes on preloaded donor records.
func scrubEntryDonors(camps []models.BloodCamp) {
	for i := range camps {
		for j := range camps[i].InterestEntries {
			if camps[i].InterestEntries[j].Donor != nil {
				camps[i].InterestEntries[j].Donor.Password = ""
			}
		}
	}
}
