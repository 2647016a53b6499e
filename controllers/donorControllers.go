package controllers

import (
	"net/http"
	"time"

	"github.com/dussaanushka1605/bloodsetu/authentication"
	"github.com/dussaanushka1605/bloodsetu/configuration"
	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/gin-gonic/gin"
)

// GetAllDonors lists donors, optionally narrowed by blood group, city, or
// availability. Used by hospitals looking for donors and by the admin.
func GetAllDonors(c *gin.Context) {
	query := configuration.DB.Order("name asc")
	if bg := c.Query("bloodGroup"); bg != "" {
		query = query.Where("blood_group = ?", bg)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city ILIKE ?", city)
	}
	if c.Query("available") == "true" {
		query = query.Where("is_available = ?", true)
	}

	var donors []models.Donor
	if err := query.Find(&donors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error getting donors"})
		return
	}
	for i := range donors {
		donors[i].Password = ""
	}

	c.JSON(http.StatusOK, donors)
}

// GetDonorProfile
func GetDonorProfile(c *gin.Context) {
	donorID, _ := authentication.CurrentUser(c)

	var donor models.Donor
	if err := configuration.DB.First(&donor, donorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Donor not found"})
		return
	}
	donor.Password = ""

	c.JSON(http.StatusOK, donor)
}

// UpdateDonorProfile applies only the fields present in the request.
func UpdateDonorProfile(c *gin.Context) {
	donorID, _ := authentication.CurrentUser(c)

	var body struct {
		Name        *string `json:"name"`
		BloodGroup  *string `json:"blood_group"`
		Age         *int    `json:"age"`
		Gender      *string `json:"gender"`
		City        *string `json:"city"`
		State       *string `json:"state"`
		Phone       *string `json:"phone"`
		IsAvailable *bool   `json:"is_available"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.BloodGroup != nil {
		if !models.ValidBloodGroup(*body.BloodGroup) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood group"})
			return
		}
		updates["blood_group"] = *body.BloodGroup
	}
	if body.Age != nil {
		if *body.Age < 18 || *body.Age > 65 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Age must be between 18 and 65 years"})
			return
		}
		updates["age"] = *body.Age
	}
	if body.Gender != nil {
		if !models.ValidGender(*body.Gender) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gender value"})
			return
		}
		updates["gender"] = *body.Gender
	}
	if body.City != nil {
		updates["city"] = *body.City
	}
	if body.State != nil {
		updates["state"] = *body.State
	}
	if body.Phone != nil {
		updates["phone"] = *body.Phone
	}
	if body.IsAvailable != nil {
		updates["is_available"] = *body.IsAvailable
	}

	var donor models.Donor
	if err := configuration.DB.First(&donor, donorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Donor not found"})
		return
	}

	if len(updates) > 0 {
		if err := configuration.DB.Model(&donor).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating profile", "detail": err.Error()})
			return
		}
		fields := make([]string, 0, len(updates))
		for k := range updates {
			fields = append(fields, k)
		}
		recordHistory(donorID, models.RoleDonor, "update_profile", gin.H{"updatedFields": fields})
	}

	donor.Password = ""
	c.JSON(http.StatusOK, donor)
}

// UpdateAvailability flips the donor's availability flag.
func UpdateAvailability(c *gin.Context) {
	donorID, _ := authentication.CurrentUser(c)

	var body struct {
		IsAvailable *bool `json:"is_available" binding:"required"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var donor models.Donor
	if err := configuration.DB.First(&donor, donorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Donor not found"})
		return
	}

	if err := configuration.DB.Model(&donor).Update("is_available", *body.IsAvailable).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	donor.IsAvailable = *body.IsAvailable
	donor.Password = ""

	c.JSON(http.StatusOK, gin.H{"message": "Availability updated successfully", "donor": donor})
}

// UpdateLastDonation sets the donor's last donation date.
func UpdateLastDonation(c *gin.Context) {
	donorID, _ := authentication.CurrentUser(c)

	var body struct {
		LastDonation string `json:"last_donation" binding:"required"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseCampDate(body.LastDonation)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	var donor models.Donor
	if err := configuration.DB.First(&donor, donorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Donor not found"})
		return
	}

	if err := configuration.DB.Model(&donor).Update("last_donation", date).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	donor.LastDonation = &date
	donor.Password = ""

	c.JSON(http.StatusOK, gin.H{"message": "Last donation date updated successfully", "donor": donor})
}

// GetVerifiedHospitals lists the hospitals a donor can see.
func GetVerifiedHospitals(c *gin.Context) {
	var hospitals []models.Hospital
	if err := configuration.DB.Where("is_verified = ?", true).Order("name asc").Find(&hospitals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching hospitals"})
		return
	}

	formatted := make([]gin.H, 0, len(hospitals))
	for _, h := range hospitals {
		formatted = append(formatted, gin.H{
			"hospital_id":        h.HospitalID,
			"name":               h.Name,
			"email":              h.Email,
			"license_number":     h.LicenseNumber,
			"location":           h.City + ", " + h.State,
			"city":               h.City,
			"state":              h.State,
			"contact_person":     h.ContactPerson,
			"created_at":         h.CreatedAt,
			"requests_made":      h.RequestsMade,
			"requests_completed": h.RequestsCompleted,
		})
	}

	c.JSON(http.StatusOK, formatted)
}

// GetDonorBloodRequests lists the blood requests this donor was notified of.
func GetDonorBloodRequests(c *gin.Context) {
	donorID, _ := authentication.CurrentUser(c)

	var donor models.Donor
	if err := configuration.DB.First(&donor, donorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Donor not found"})
		return
	}

	var requests []models.BloodRequest
	if err := configuration.DB.
		Preload("DonorResponses").
		Preload("Notifications").
		Joins("JOIN request_notifications ON request_notifications.request_id = blood_requests.request_id AND request_notifications.donor_id = ?", donorID).
		Where("blood_requests.blood_type = ?", donor.BloodGroup).
		Order("blood_requests.created_at desc").
		Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching blood requests"})
		return
	}

	hospitalIDs := make([]uint, 0, len(requests))
	for _, r := range requests {
		hospitalIDs = append(hospitalIDs, r.HospitalID)
	}
	hospitals := map[uint]models.Hospital{}
	if len(hospitalIDs) > 0 {
		var hs []models.Hospital
		configuration.DB.Where("hospital_id IN ?", hospitalIDs).Find(&hs)
		for _, h := range hs {
			hospitals[h.HospitalID] = h
		}
	}

	formatted := make([]gin.H, 0, len(requests))
	for _, r := range requests {
		var donorResponse gin.H
		for _, resp := range r.DonorResponses {
			if resp.DonorID == donorID {
				donorResponse = gin.H{"response": resp.Response, "responded_at": resp.RespondedAt}
				break
			}
		}
		item := gin.H{
			"request_id":     r.RequestID,
			"blood_type":     r.BloodType,
			"contact_person": r.ContactPerson,
			"contact_number": r.ContactNumber,
			"urgent":         r.Urgent,
			"status":         r.Status,
			"accepted_by":    r.AcceptedBy,
			"donor_response": donorResponse,
			"created_at":     r.CreatedAt,
			"updated_at":     r.UpdatedAt,
		}
		if h, ok := hospitals[r.HospitalID]; ok {
			item["hospital_id"] = h.HospitalID
			item["hospital_name"] = h.Name
			item["hospital_email"] = h.Email
			item["hospital_phone"] = h.Phone
			item["hospital_location"] = h.City + ", " + h.State
		}
		formatted = append(formatted, item)
	}

	c.JSON(http.StatusOK, formatted)
}

// RespondToBloodRequest records the donor's accept/reject answer, at most
// once per request. Accepting a pending request claims it.
func RespondToBloodRequest(c *gin.Context) {
	donorID, _ := authentication.CurrentUser(c)
	requestID, ok := paramID(c, "requestId")
	if !ok {
		return
	}

	var body struct {
		Response string `json:"response" binding:"required"`
	}
	if err := c.BindJSON(&body); err != nil || (body.Response != "accepted" && body.Response != "rejected") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid response type"})
		return
	}

	var request models.BloodRequest
	if err := configuration.DB.Preload("Notifications").Preload("DonorResponses").First(&request, requestID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Blood request not found"})
		return
	}

	notified := false
	for _, n := range request.Notifications {
		if n.DonorID == donorID {
			notified = true
			break
		}
	}
	if !notified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to respond to this request"})
		return
	}
	if request.Status != models.RequestPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This request is no longer pending"})
		return
	}
	for _, resp := range request.DonorResponses {
		if resp.DonorID == donorID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have already responded to this request"})
			return
		}
	}

	response := models.DonorResponse{
		RequestID:   requestID,
		DonorID:     donorID,
		Response:    body.Response,
		RespondedAt: time.Now(),
	}
	if err := configuration.DB.Create(&response).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error responding to blood request"})
		return
	}

	if body.Response == "accepted" {
		if err := configuration.DB.Model(&request).Updates(map[string]interface{}{
			"status":      models.RequestAccepted,
			"accepted_by": donorID,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error responding to blood request"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Request accepted successfully", "request_id": requestID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Response recorded successfully"})
}
