package routes

import (
	"github.com/dussaanushka1605/bloodsetu/authentication"
	"github.com/dussaanushka1605/bloodsetu/controllers"
	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// registration and login
	r.POST("/auth/otp/request", controllers.RequestOTP)
	r.POST("/auth/otp/verify", controllers.VerifyOTP)
	r.POST("/auth/admin/register", controllers.RegisterAdmin)
	r.POST("/donor/login", controllers.DonorLogin)
	r.POST("/hospital/login", controllers.HospitalLogin)
	r.POST("/admin/login", controllers.AdminLogin)

	// password reset
	r.POST("/auth/reset/request", controllers.RequestResetOTP)
	r.POST("/auth/reset/verify", controllers.VerifyResetOTP)
	r.POST("/auth/reset/password", controllers.ResetPassword)

	// public camp listing
	r.GET("/camps", controllers.GetPublicCamps)
	r.GET("/camps/:id", controllers.GetCampByID)

	authed := r.Group("/")
	authed.Use(authentication.AuthMiddleware())
	{
		authed.GET("/profile", controllers.Profile)
		authed.GET("/logout", controllers.Logout)
	}

	donor := r.Group("/donor")
	donor.Use(authentication.AuthMiddleware(), authentication.RequireRole(models.RoleDonor))
	{
		donor.GET("/profile", controllers.GetDonorProfile)
		donor.PATCH("/profile", controllers.UpdateDonorProfile)
		donor.PATCH("/availability", controllers.UpdateAvailability)
		donor.PATCH("/last-donation", controllers.UpdateLastDonation)
		donor.GET("/hospitals", controllers.GetVerifiedHospitals)
		donor.GET("/camps", controllers.GetDonorCamps)
		donor.POST("/camps/:id/interest", controllers.RegisterCampInterest)
		donor.DELETE("/camps/:id/interest", controllers.CancelCampInterest)
		donor.GET("/blood-requests", controllers.GetDonorBloodRequests)
		donor.POST("/blood-requests/:requestId/respond", controllers.RespondToBloodRequest)
		donor.POST("/feedback", controllers.SubmitFeedback)
		donor.GET("/feedback", controllers.FeedbackHistory)
		donor.GET("/feedback/responses", controllers.FeedbackResponses)
	}

	hospital := r.Group("/hospital")
	hospital.Use(authentication.AuthMiddleware(), authentication.RequireRole(models.RoleHospital))
	{
		hospital.GET("/profile", controllers.GetHospitalProfile)
		hospital.PATCH("/profile", controllers.UpdateHospitalProfile)
		hospital.POST("/camps", controllers.CreateBloodCamp)
		hospital.GET("/camps", controllers.GetHospitalCamps)
		hospital.PATCH("/camps/:id", controllers.UpdateBloodCamp)
		hospital.DELETE("/camps/:id", controllers.DeleteBloodCamp)
		hospital.PATCH("/camps/:id/attendance/:donorId", controllers.UpdateAttendance)
		hospital.POST("/blood-requests", controllers.CreateBloodRequest)
		hospital.GET("/blood-requests", controllers.GetHospitalBloodRequests)
		hospital.POST("/blood-requests/:requestId/complete", controllers.CompleteBloodRequest)
		hospital.POST("/feedback", controllers.SubmitFeedback)
		hospital.GET("/feedback", controllers.FeedbackHistory)
		hospital.GET("/feedback/responses", controllers.FeedbackResponses)
	}

	admin := r.Group("/admin")
	admin.Use(authentication.AuthMiddleware(), authentication.RequireRole(models.RoleAdmin))
	{
		admin.GET("/hospitals", controllers.ViewHospitals)
		admin.GET("/hospitals/:id", controllers.SearchHospital)
		admin.PATCH("/hospitals/:id/verify", controllers.VerifyHospital)
		admin.GET("/donors", controllers.GetAllDonors)
		admin.GET("/camps", controllers.GetAdminCamps)
		admin.POST("/camps/sweep", controllers.TriggerCampSweep)
		admin.GET("/feedback", controllers.AdminListFeedback)
		admin.POST("/feedback/:id/respond", controllers.AdminRespondFeedback)
		admin.GET("/stats", controllers.AdminStats)
	}

	return r
}
