package controllers

import (
	"fmt"
	"net/http"

	"github.com/dussaanushka1605/bloodsetu/authentication"
	"github.com/dussaanushka1605/bloodsetu/configuration"
	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetHospitalProfile
func GetHospitalProfile(c *gin.Context) {
	hospitalID, _ := authentication.CurrentUser(c)

	var hospital models.Hospital
	if err := configuration.DB.First(&hospital, hospitalID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hospital not found"})
		return
	}
	hospital.Password = ""

	c.JSON(http.StatusOK, hospital)
}

// UpdateHospitalProfile applies only the fields present in the request.
// License number, email, and verification state are not editable here.
func UpdateHospitalProfile(c *gin.Context) {
	hospitalID, _ := authentication.CurrentUser(c)

	var body struct {
		Name          *string `json:"name"`
		ContactPerson *string `json:"contact_person"`
		Phone         *string `json:"phone"`
		City          *string `json:"city"`
		State         *string `json:"state"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.ContactPerson != nil {
		updates["contact_person"] = *body.ContactPerson
	}
	if body.Phone != nil {
		updates["phone"] = *body.Phone
	}
	if body.City != nil {
		updates["city"] = *body.City
	}
	if body.State != nil {
		updates["state"] = *body.State
	}

	var hospital models.Hospital
	if err := configuration.DB.First(&hospital, hospitalID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hospital not found"})
		return
	}

	if len(updates) > 0 {
		if err := configuration.DB.Model(&hospital).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating profile", "detail": err.Error()})
			return
		}
		recordHistory(hospitalID, models.RoleHospital, "update_profile", nil)
	}

	hospital.Password = ""
	c.JSON(http.StatusOK, hospital)
}

// CreateBloodRequest opens a blood request and notifies every available
// donor with a matching blood group. Urgent requests also go out by SMS.
func CreateBloodRequest(c *gin.Context) {
	hospitalID, _ := authentication.CurrentUser(c)

	var hospital models.Hospital
	if err := configuration.DB.First(&hospital, hospitalID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hospital not found"})
		return
	}
	if !hospital.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Hospital not verified"})
		return
	}

	var body struct {
		BloodType     string `json:"blood_type" binding:"required"`
		ContactPerson string `json:"contact_person" binding:"required"`
		ContactNumber string `json:"contact_number" binding:"required"`
		Urgent        bool   `json:"urgent"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidBloodGroup(body.BloodType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood group"})
		return
	}

	request := models.BloodRequest{
		HospitalID:    hospitalID,
		BloodType:     body.BloodType,
		ContactPerson: body.ContactPerson,
		ContactNumber: body.ContactNumber,
		Urgent:        body.Urgent,
		Status:        models.RequestPending,
	}
	if err := configuration.DB.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create blood request", "detail": err.Error()})
		return
	}

	var donors []models.Donor
	if err := configuration.DB.Where("blood_group = ? AND is_available = ?", body.BloodType, true).Find(&donors).Error; err != nil {
		configuration.Logger.Warn("failed to find matching donors", zap.Uint("request_id", request.RequestID), zap.Error(err))
	}
	notifyDonors(request, hospital, donors)

	configuration.DB.Model(&hospital).Update("requests_made", hospital.RequestsMade+1)

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Blood request created successfully",
		"request":        request,
		"notified_count": len(donors),
	})
}

// notifyDonors records notifications and fans the alert out. Delivery
// failures are logged and skipped; the request itself already exists.
func notifyDonors(request models.BloodRequest, hospital models.Hospital, donors []models.Donor) {
	message := fmt.Sprintf("%s needs %s blood urgently. Contact %s (%s).",
		hospital.Name, request.BloodType, request.ContactPerson, request.ContactNumber)

	for _, donor := range donors {
		notification := models.RequestNotification{RequestID: request.RequestID, DonorID: donor.DonorID}
		if err := configuration.DB.Create(&notification).Error; err != nil {
			configuration.Logger.Warn("failed to record notification",
				zap.Uint("request_id", request.RequestID),
				zap.Uint("donor_id", donor.DonorID),
				zap.Error(err))
			continue
		}

		if request.Urgent {
			if err := SendSMS(donor.Phone, message); err != nil {
				configuration.Logger.Warn("failed to send SMS",
					zap.Uint("donor_id", donor.DonorID), zap.Error(err))
			}
		} else {
			if err := SendEmail(message, "BloodSetu - Blood Requirement", donor.Email, "", nil); err != nil {
				configuration.Logger.Warn("failed to send notification email",
					zap.Uint("donor_id", donor.DonorID), zap.Error(err))
			}
		}
	}
}

// GetHospitalBloodRequests lists the hospital's own requests.
func GetHospitalBloodRequests(c *gin.Context) {
	hospitalID, _ := authentication.CurrentUser(c)

	var requests []models.BloodRequest
	if err := configuration.DB.
		Preload("DonorResponses").
		Preload("Notifications").
		Where("hospital_id = ?", hospitalID).
		Order("created_at desc").
		Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching blood requests"})
		return
	}

	c.JSON(http.StatusOK, requests)
}

// CompleteBloodRequest closes out an accepted request.
func CompleteBloodRequest(c *gin.Context) {
	hospitalID, _ := authentication.CurrentUser(c)
	requestID, ok := paramID(c, "requestId")
	if !ok {
		return
	}

	var request models.BloodRequest
	if err := configuration.DB.First(&request, requestID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blood request not found"})
		return
	}
	if request.HospitalID != hospitalID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update this blood request"})
		return
	}
	if request.Status != models.RequestAccepted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only accepted requests can be completed"})
		return
	}

	if err := configuration.DB.Model(&request).Update("status", models.RequestCompleted).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete blood request"})
		return
	}

	var hospital models.Hospital
	if err := configuration.DB.First(&hospital, hospitalID).Error; err == nil {
		configuration.DB.Model(&hospital).Update("requests_completed", hospital.RequestsCompleted+1)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Blood request completed successfully", "request_id": requestID})
}
