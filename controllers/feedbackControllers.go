package controllers

import (
	"net/http"
	"time"

	"github.com/dussaanushka1605/bloodsetu/authentication"
	"github.com/dussaanushka1605/bloodsetu/configuration"
	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmitFeedback files a feedback entry for the authenticated donor or
// hospital.
func SubmitFeedback(c *gin.Context) {
	userID, role := authentication.CurrentUser(c)

	var body struct {
		Description string `json:"description" binding:"required"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feedback := models.Feedback{
		UserID:      userID,
		UserType:    role,
		Description: body.Description,
		Status:      models.FeedbackPending,
	}
	if err := configuration.DB.Create(&feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error while submitting feedback"})
		return
	}

	recordHistory(userID, role, "feedback_submitted", gin.H{"feedback_id": feedback.FeedbackID})
	c.JSON(http.StatusCreated, gin.H{"message": "Feedback submitted successfully", "feedback": feedback})
}

// FeedbackHistory lists the caller's own feedback entries, newest first.
func FeedbackHistory(c *gin.Context) {
	userID, role := authentication.CurrentUser(c)

	var feedbacks []models.Feedback
	if err := configuration.DB.
		Where("user_id = ? AND user_type = ?", userID, role).
		Order("created_at desc").
		Find(&feedbacks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error while fetching feedback"})
		return
	}

	c.JSON(http.StatusOK, feedbacks)
}

// FeedbackResponses lists only the caller's feedback that has been
// answered by an admin.
func FeedbackResponses(c *gin.Context) {
	userID, role := authentication.CurrentUser(c)

	var feedbacks []models.Feedback
	if err := configuration.DB.
		Where("user_id = ? AND user_type = ? AND status = ?", userID, role, models.FeedbackResponded).
		Order("responded_at desc").
		Find(&feedbacks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error while fetching responses"})
		return
	}

	c.JSON(http.StatusOK, feedbacks)
}

// AdminListFeedback lists feedback for the admin panel, filtered by
// status, with the submitter's name and email attached.
func AdminListFeedback(c *gin.Context) {
	status := models.FeedbackStatus(c.DefaultQuery("status", string(models.FeedbackPending)))
	if status != models.FeedbackPending && status != models.FeedbackResponded {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	var feedbacks []models.Feedback
	if err := configuration.DB.
		Where("status = ?", status).
		Order("created_at desc").
		Find(&feedbacks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error while fetching feedback"})
		return
	}

	out := make([]gin.H, 0, len(feedbacks))
	for _, f := range feedbacks {
		name, email := feedbackUserInfo(f)
		out = append(out, gin.H{
			"feedback":   f,
			"user_name":  name,
			"user_email": email,
		})
	}

	c.JSON(http.StatusOK, out)
}

// AdminRespondFeedback records an admin's response on a pending entry.
func AdminRespondFeedback(c *gin.Context) {
	adminID, _ := authentication.CurrentUser(c)
	feedbackID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Response string `json:"response" binding:"required"`
	}
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var feedback models.Feedback
	if err := configuration.DB.First(&feedback, feedbackID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feedback not found"})
		return
	}
	if feedback.Status == models.FeedbackResponded {
		c.JSON(http.StatusConflict, gin.H{"error": "Feedback already responded"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        models.FeedbackResponded,
		"response_text": body.Response,
		"admin_id":      adminID,
		"responded_at":  now,
	}
	if err := configuration.DB.Model(&feedback).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record response"})
		return
	}
	feedback.Status = models.FeedbackResponded
	feedback.ResponseText = body.Response
	feedback.AdminID = &adminID
	feedback.RespondedAt = &now

	configuration.Logger.Info("feedback responded",
		zap.Uint("feedback_id", feedback.FeedbackID),
		zap.Uint("admin_id", adminID))

	c.JSON(http.StatusOK, gin.H{"message": "Response recorded successfully", "feedback": feedback})
}

func feedbackUserInfo(f models.Feedback) (string, string) {
	switch f.UserType {
	case models.RoleDonor:
		var donor models.Donor
		if err := configuration.DB.First(&donor, f.UserID).Error; err == nil {
			return donor.Name, donor.Email
		}
	case models.RoleHospital:
		var hospital models.Hospital
		if err := configuration.DB.First(&hospital, f.UserID).Error; err == nil {
			return hospital.Name, hospital.Email
		}
	}
	return "", ""
}
