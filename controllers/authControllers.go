package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dussaanushka1605/bloodsetu/authentication"
	"github.com/dussaanushka1605/bloodsetu/configuration"
	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

// Broker gates registration and password reset; wired up in main.
var Broker *authentication.OTPBroker

// CheckDuplicateIdentity is the broker's duplicate lookup against the
// identity store.
func CheckDuplicateIdentity(role models.Role, email, licenseNumber string) error {
	email = strings.ToLower(email)
	switch role {
	case models.RoleDonor:
		var existing models.Donor
		if err := configuration.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			return authentication.ErrDuplicateEmail
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	case models.RoleHospital:
		var existing models.Hospital
		if err := configuration.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			return authentication.ErrDuplicateEmail
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if licenseNumber != "" {
			if err := configuration.DB.Where("license_number = ?", licenseNumber).First(&existing).Error; err == nil {
				return authentication.ErrDuplicateLicense
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
	}
	return nil
}

// RequestOTP starts an OTP-gated registration for a donor or hospital.
func RequestOTP(c *gin.Context) {
	var req struct {
		Email    string          `json:"email" binding:"required,email"`
		Role     models.Role     `json:"role" binding:"required"`
		UserData json.RawMessage `json:"userData" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Email = strings.ToLower(req.Email)

	// Validate the pending payload before a single mail goes out
	switch req.Role {
	case models.RoleDonor:
		var donor models.Donor
		if err := json.Unmarshal(req.UserData, &donor); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donor data"})
			return
		}
		if err := validate.Struct(donor); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill all the mandatory fields", "detail": err.Error()})
			return
		}
		if !models.ValidBloodGroup(donor.BloodGroup) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood group"})
			return
		}
		if !models.ValidGender(donor.Gender) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gender value"})
			return
		}
	case models.RoleHospital:
		var hospital models.Hospital
		if err := json.Unmarshal(req.UserData, &hospital); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid hospital data"})
			return
		}
		if err := validate.Struct(hospital); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill all the mandatory fields", "detail": err.Error()})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role for OTP registration"})
		return
	}

	err := Broker.RequestCode(c.Request.Context(), req.Email, authentication.PurposeRegistration, req.Role, req.UserData)
	switch {
	case errors.Is(err, authentication.ErrTooManyRequests):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	case errors.Is(err, authentication.ErrDuplicateEmail), errors.Is(err, authentication.ErrDuplicateLicense):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, authentication.ErrDeliveryFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not send OTP, please try again"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing OTP request", "detail": err.Error()})
		return
	}

	configuration.OTPRequestsTotal.WithLabelValues(string(authentication.PurposeRegistration)).Inc()
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

// VerifyOTP checks the submitted code and materializes the pending identity.
func VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Email = strings.ToLower(req.Email)

	entry, err := Broker.VerifyCode(c.Request.Context(), req.Email, req.Code, authentication.PurposeRegistration)
	switch {
	case errors.Is(err, authentication.ErrCodeExpired):
		configuration.OTPVerificationsTotal.WithLabelValues("expired").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP expired"})
		return
	case errors.Is(err, authentication.ErrCodeMismatch):
		configuration.OTPVerificationsTotal.WithLabelValues("mismatch").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error verifying OTP", "detail": err.Error()})
		return
	}
	configuration.OTPVerificationsTotal.WithLabelValues("ok").Inc()

	switch entry.Role {
	case models.RoleDonor:
		var donor models.Donor
		if err := json.Unmarshal(entry.Payload, &donor); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read pending donor data"})
			return
		}
		donor.Email = req.Email
		if !hashCredential(c, &donor.Password) {
			return
		}
		if err := configuration.DB.Create(&donor).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Error registering user", "detail": err.Error()})
			return
		}
		recordHistory(donor.DonorID, models.RoleDonor, "register", gin.H{"email": donor.Email})
		token, err := authentication.GenerateToken(donor.DonorID, models.RoleDonor)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		donor.Password = ""
		c.JSON(http.StatusOK, gin.H{"message": "User verified and registered successfully", "user": donor, "token": token})

	case models.RoleHospital:
		var hospital models.Hospital
		if err := json.Unmarshal(entry.Payload, &hospital); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read pending hospital data"})
			return
		}
		hospital.Email = req.Email
		hospital.IsVerified = false
		if !hashCredential(c, &hospital.Password) {
			return
		}
		if err := configuration.DB.Create(&hospital).Error; err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Error registering user", "detail": err.Error()})
			return
		}
		recordHistory(hospital.HospitalID, models.RoleHospital, "register", gin.H{"email": hospital.Email})
		token, err := authentication.GenerateToken(hospital.HospitalID, models.RoleHospital)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		hospital.Password = ""
		c.JSON(http.StatusOK, gin.H{
			"message": "Hospital registered successfully. Waiting for admin verification.",
			"user":    hospital,
			"token":   token,
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role for OTP registration"})
	}
}

// RegisterAdmin creates the first admin account. It refuses once one exists.
func RegisterAdmin(c *gin.Context) {
	var admin models.Admin
	if err := c.BindJSON(&admin); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Admin
	if err := configuration.DB.First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Admin already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	admin.Email = strings.ToLower(admin.Email)
	if !hashCredential(c, &admin.Password) {
		return
	}
	if err := configuration.DB.Create(&admin).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recordHistory(admin.AdminID, models.RoleAdmin, "register", gin.H{"email": admin.Email})

	token, err := authentication.GenerateToken(admin.AdminID, models.RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	admin.Password = ""
	c.JSON(http.StatusCreated, gin.H{"admin": admin, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// DonorLogin handles the donor login process
func DonorLogin(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var donor models.Donor
	if err := configuration.DB.Where("email = ?", strings.ToLower(req.Email)).First(&donor).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(donor.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	now := time.Now()
	donor.LastLogin = &now
	configuration.DB.Save(&donor)
	recordHistory(donor.DonorID, models.RoleDonor, "login", gin.H{"email": donor.Email})

	token, err := authentication.GenerateToken(donor.DonorID, models.RoleDonor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	donor.Password = ""
	c.JSON(http.StatusOK, gin.H{"donor": donor, "token": token, "message": "Login successful"})
}

// HospitalLogin additionally rejects hospitals still pending verification.
func HospitalLogin(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var hospital models.Hospital
	if err := configuration.DB.Where("email = ?", strings.ToLower(req.Email)).First(&hospital).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hospital.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if !hospital.IsVerified {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Your account is pending admin verification. Please wait for approval."})
		return
	}

	now := time.Now()
	hospital.LastLogin = &now
	configuration.DB.Save(&hospital)
	recordHistory(hospital.HospitalID, models.RoleHospital, "login", gin.H{"email": hospital.Email})

	token, err := authentication.GenerateToken(hospital.HospitalID, models.RoleHospital)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	hospital.Password = ""
	c.JSON(http.StatusOK, gin.H{"hospital": hospital, "token": token, "message": "Login successful"})
}

// AdminLogin
func AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var admin models.Admin
	if err := configuration.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&admin).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	now := time.Now()
	admin.LastLogin = &now
	configuration.DB.Save(&admin)
	recordHistory(admin.AdminID, models.RoleAdmin, "login", gin.H{"email": admin.Email})

	token, err := authentication.GenerateToken(admin.AdminID, models.RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	admin.Password = ""
	c.JSON(http.StatusOK, gin.H{"admin": admin, "token": token})
}

// RequestResetOTP starts the forgot-password flow for donor or hospital.
func RequestResetOTP(c *gin.Context) {
	var req struct {
		Email string      `json:"email" binding:"required,email"`
		Role  models.Role `json:"role" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Email = strings.ToLower(req.Email)

	switch req.Role {
	case models.RoleDonor:
		var donor models.Donor
		if err := configuration.DB.Where("email = ?", req.Email).First(&donor).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
	case models.RoleHospital:
		var hospital models.Hospital
		if err := configuration.DB.Where("email = ?", req.Email).First(&hospital).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	err := Broker.RequestCode(c.Request.Context(), req.Email, authentication.PurposeReset, req.Role, nil)
	switch {
	case errors.Is(err, authentication.ErrTooManyRequests):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
		return
	case errors.Is(err, authentication.ErrDeliveryFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not send OTP, please try again"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error sending OTP", "detail": err.Error()})
		return
	}

	configuration.OTPRequestsTotal.WithLabelValues(string(authentication.PurposeReset)).Inc()
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully", "maskedEmail": maskEmail(req.Email)})
}

// VerifyResetOTP confirms the reset code without consuming it.
func VerifyResetOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := Broker.VerifyCode(c.Request.Context(), strings.ToLower(req.Email), req.Code, authentication.PurposeReset)
	switch {
	case errors.Is(err, authentication.ErrCodeExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP expired"})
		return
	case errors.Is(err, authentication.ErrCodeMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error verifying OTP", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP verified"})
}

// ResetPassword sets a new password after the reset OTP was verified.
func ResetPassword(c *gin.Context) {
	var req struct {
		Email       string      `json:"email" binding:"required,email"`
		Role        models.Role `json:"role" binding:"required"`
		NewPassword string      `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Email = strings.ToLower(req.Email)

	if err := Broker.ResetAuthorized(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "OTP verification required"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	switch req.Role {
	case models.RoleDonor:
		res := configuration.DB.Model(&models.Donor{}).Where("email = ?", req.Email).Update("password", string(hashed))
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Password reset failed"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
	case models.RoleHospital:
		res := configuration.DB.Model(&models.Hospital{}).Where("email = ?", req.Email).Update("password", string(hashed))
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Password reset failed"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	if err := Broker.ConsumeReset(c.Request.Context(), req.Email); err != nil {
		configuration.Logger.Warn("failed to consume reset entry", zap.String("email", req.Email), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// Profile returns the record of whoever the session token belongs to.
func Profile(c *gin.Context) {
	userID, role := authentication.CurrentUser(c)

	switch role {
	case models.RoleDonor:
		var donor models.Donor
		if err := configuration.DB.First(&donor, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		donor.Password = ""
		c.JSON(http.StatusOK, donor)
	case models.RoleHospital:
		var hospital models.Hospital
		if err := configuration.DB.First(&hospital, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		hospital.Password = ""
		c.JSON(http.StatusOK, hospital)
	case models.RoleAdmin:
		var admin models.Admin
		if err := configuration.DB.First(&admin, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		admin.Password = ""
		c.JSON(http.StatusOK, admin)
	}
}

// Logout records the logout in history; tokens themselves are stateless.
func Logout(c *gin.Context) {
	userID, role := authentication.CurrentUser(c)
	recordHistory(userID, role, "logout", nil)
	c.JSON(http.StatusOK, gin.H{"message": "You are successfully logged out"})
}

func hashCredential(c *gin.Context, password *string) bool {
	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return false
	}
	*password = string(hashed)
	return true
}

func recordHistory(userID uint, role models.Role, action string, details gin.H) {
	detail := ""
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			detail = string(data)
		}
	}
	h := models.History{UserID: userID, UserType: role, Action: action, Details: detail, Date: time.Now()}
	if err := configuration.DB.Create(&h).Error; err != nil {
		configuration.Logger.Warn("failed to record history",
			zap.Uint("user_id", userID),
			zap.String("action", action),
			zap.Error(err))
	}
}

func maskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return email
	}
	name := parts[0]
	var masked string
	if len(name) <= 2 {
		masked = strings.Repeat("*", len(name))
	} else {
		masked = fmt.Sprintf("%c%s%c", name[0], strings.Repeat("*", len(name)-2), name[len(name)-1])
	}
	return masked + "@" + parts[1]
}
