package controllers

import (
	"net/http"

	"github.com/dussaanushka1605/bloodsetu/configuration"
	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ViewHospitals lists hospitals for the admin, optionally filtered by
// verification state.
func ViewHospitals(c *gin.Context) {
	query := configuration.DB.Order("created_at desc")
	switch c.Query("verified") {
	case "true":
		query = query.Where("is_verified = ?", true)
	case "false":
		query = query.Where("is_verified = ?", false)
	}

	var hospitals []models.Hospital
	if err := query.Find(&hospitals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error while fetching hospitals"})
		return
	}
	for i := range hospitals {
		hospitals[i].Password = ""
	}

	c.JSON(http.StatusOK, hospitals)
}

// SearchHospital fetches one hospital by id.
func SearchHospital(c *gin.Context) {
	hospitalID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var hospital models.Hospital
	if err := configuration.DB.First(&hospital, hospitalID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hospital not found"})
		return
	}
	hospital.Password = ""

	c.JSON(http.StatusOK, hospital)
}

// VerifyHospital sets a hospital's verification flag. Verification is
// what unlocks camp creation and donor-facing visibility.
func VerifyHospital(c *gin.Context) {
	hospitalID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var body struct {
		IsVerified *bool `json:"is_verified" binding:"required"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var hospital models.Hospital
	if err := configuration.DB.First(&hospital, hospitalID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Hospital not found"})
		return
	}

	if err := configuration.DB.Model(&hospital).Update("is_verified", *body.IsVerified).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update hospital"})
		return
	}
	hospital.IsVerified = *body.IsVerified
	hospital.Password = ""

	configuration.Logger.Info("hospital verification changed",
		zap.Uint("hospital_id", hospitalID),
		zap.Bool("is_verified", *body.IsVerified))

	c.JSON(http.StatusOK, gin.H{"message": "Hospital verification updated successfully", "hospital": hospital})
}

// AdminStats returns the dashboard counters.
func AdminStats(c *gin.Context) {
	var donorCount, hospitalCount, pendingHospitals int64
	var pendingFeedback, totalRequests int64
	configuration.DB.Model(&models.Donor{}).Count(&donorCount)
	configuration.DB.Model(&models.Hospital{}).Count(&hospitalCount)
	configuration.DB.Model(&models.Hospital{}).Where("is_verified = ?", false).Count(&pendingHospitals)
	configuration.DB.Model(&models.Feedback{}).Where("status = ?", models.FeedbackPending).Count(&pendingFeedback)
	configuration.DB.Model(&models.BloodRequest{}).Count(&totalRequests)

	campCounts := map[string]int64{}
	for _, status := range []models.CampStatus{models.CampUpcoming, models.CampOngoing, models.CampCompleted, models.CampCancelled} {
		var n int64
		configuration.DB.Model(&models.BloodCamp{}).Where("status = ?", status).Count(&n)
		campCounts[string(status)] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"donors":            donorCount,
		"hospitals":         hospitalCount,
		"pending_hospitals": pendingHospitals,
		"pending_feedback":  pendingFeedback,
		"blood_requests":    totalRequests,
		"camps":             campCounts,
	})
}
