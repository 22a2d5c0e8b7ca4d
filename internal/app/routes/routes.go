package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/unigate/admissions/internal/app/controllers"
	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/middleware"
	"github.com/unigate/admissions/internal/pkg/realtime"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth      *controllers.AuthController
	Lookup    *controllers.LookupController
	Applicant *controllers.ApplicantController
	Admin     *controllers.AdminController
	Intake    *controllers.IntakeController
	File      *controllers.FileController
	Realtime  *realtime.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.POST("/logout", h.Auth.Logout)
	}

	// Dropdown options of the application form
	v1.GET("/lookups/:slug", h.Lookup.Options)

	// Signed download links; the token is the credential
	if h.File != nil {
		v1.GET("/files", h.File.Download)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authProtected := authenticated.Group("/auth")
	{
		authProtected.GET("/me", h.Auth.Me)
		authProtected.PUT("/password", h.Auth.ChangePassword)
		authProtected.PUT("/email", h.Auth.ChangeEmail)
	}

	me := authenticated.Group("/me")
	{
		me.GET("/student", h.Applicant.GetStudent)
		me.GET("/applications", h.Applicant.ListApplications)
		me.GET("/applications/:id/documents", h.Applicant.ListDocuments)
		me.DELETE("/documents/:id", h.Applicant.DeleteDocument)
		if h.Realtime != nil {
			me.GET("/ws", h.Realtime.HandleConnection)
		}

		wizard := me.Group("/application")
		{
			wizard.PUT("/personal", h.Applicant.SavePersonalInfo)
			wizard.PUT("/education", h.Applicant.SaveEducation)
			wizard.POST("/documents", h.Applicant.UploadDocuments)
			wizard.POST("/submit", h.Applicant.Submit)
			wizard.GET("/progress", h.Applicant.Progress)
		}
	}

	authenticated.POST("/applications/intake", h.Intake.Submit)

	// --- Administrator routes ---
	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		lookups := admin.Group("/lookups")
		{
			lookups.GET("", h.Lookup.Tables)
			lookups.GET("/:slug", h.Lookup.List)
			lookups.POST("/:slug", h.Lookup.Create)
			lookups.GET("/:slug/:id", h.Lookup.Get)
			lookups.PUT("/:slug/:id", h.Lookup.Update)
			lookups.PATCH("/:slug/:id/active", h.Lookup.SetActive)
		}

		students := admin.Group("/students")
		{
			students.GET("", h.Admin.ListStudents)
			students.GET("/:id", h.Admin.GetStudent)
			students.GET("/:id/applications", h.Admin.ListStudentApplications)
		}

		applications := admin.Group("/applications")
		{
			applications.GET("/:id/documents", h.Admin.ListApplicationDocuments)
			applications.PATCH("/:id", h.Admin.ReviewApplication)
		}
	}
}
