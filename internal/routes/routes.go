package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dental-clinic-server/internal/clock"
	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/handlers"
	"dental-clinic-server/internal/middleware"
	"dental-clinic-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	clk := clock.NewSystem()

	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, clk)
	examHandler := handlers.NewExamHandler(db)
	recordHandler := handlers.NewRecordHandler(db)
	medicationHandler := handlers.NewMedicationHandler(db)
	prescriptionPDFHandler := handlers.NewPrescriptionPDFHandler(db, cfg)
	billingHandler := handlers.NewBillingHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// Staff management; admins only, except the dentist list used by
		// the booking form.
		userRoutes := private.Group("/users")
		{
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		patientRoutes := private.Group("/patients")
		{
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.GET("", patientHandler.ListPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatient)
			patientRoutes.PUT("/:id", patientHandler.UpdatePatient)
			patientRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager), patientHandler.DeletePatient)
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.ListAppointments)
			appointmentRoutes.GET("/today", appointmentHandler.TodayAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointment)
			appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
		}

		examRoutes := private.Group("/exams")
		{
			examRoutes.POST("", examHandler.CreateExam)
			examRoutes.GET("", examHandler.ListExams)
			examRoutes.GET("/:id", examHandler.GetExam)
			examRoutes.PUT("/:id", examHandler.UpdateExam)
			examRoutes.POST("/:id/procedures", examHandler.CreateProcedure)
			examRoutes.PUT("/:id/prescription", medicationHandler.UpsertPrescription)
			examRoutes.GET("/:id/prescription", medicationHandler.GetPrescription)
			examRoutes.GET("/:id/prescription/pdf", prescriptionPDFHandler.RenderPrescription)
		}

		procedureRoutes := private.Group("/procedures")
		{
			procedureRoutes.PUT("/:id", examHandler.UpdateProcedure)
			procedureRoutes.POST("/:id/teeth", examHandler.AttachTeeth)
			procedureRoutes.GET("/:id/teeth", examHandler.ListProcedureTeeth)
		}

		// Procedure catalog, managed by admins and dentists.
		catalogRoutes := private.Group("")
		{
			catalogRoutes.GET("/categories", examHandler.ListCategories)
			catalogRoutes.GET("/procedure-definitions", examHandler.ListDefinitions)
			catalogRoutes.GET("/toothcodes", examHandler.ListToothcodes)

			catalogWrite := catalogRoutes.Group("")
			catalogWrite.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDentist))
			{
				catalogWrite.POST("/categories", examHandler.CreateCategory)
				catalogWrite.POST("/procedure-definitions", examHandler.CreateDefinition)
				catalogWrite.PUT("/procedure-definitions/:id", examHandler.UpdateDefinition)
			}
		}

		recordRoutes := private.Group("/medical-records")
		{
			recordRoutes.GET("", recordHandler.ListRecords)
			recordRoutes.GET("/patient/:patientId", recordHandler.GetRecordByPatient)
			recordRoutes.POST("/patient/:patientId/attachments", recordHandler.UploadAttachment)
			recordRoutes.POST("/patient/:patientId/diseases", recordHandler.AddPatientDisease)
			recordRoutes.POST("/patient/:patientId/allergies", recordHandler.AddPatientAllergy)
			recordRoutes.GET("/attachments/:id", recordHandler.GetAttachment)
		}

		diseaseRoutes := private.Group("/diseases")
		{
			diseaseRoutes.GET("", recordHandler.ListDiseases)
			diseaseRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDentist), recordHandler.CreateDisease)
		}

		medicationRoutes := private.Group("/medications")
		{
			medicationRoutes.GET("", medicationHandler.ListMedications)
			medicationRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDentist), medicationHandler.CreateMedication)
			medicationRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDentist), medicationHandler.UpdateMedication)
		}

		packageRoutes := private.Group("/medication-packages")
		{
			packageRoutes.GET("", medicationHandler.ListPackages)
			packageRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDentist), medicationHandler.CreatePackage)
			packageRoutes.POST("/:id/apply", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDentist), medicationHandler.ApplyPackage)
		}

		invoiceRoutes := private.Group("/invoices")
		{
			invoiceRoutes.POST("", billingHandler.CreateInvoice)
			invoiceRoutes.GET("", billingHandler.ListInvoices)
			invoiceRoutes.GET("/:id", billingHandler.GetInvoice)
			invoiceRoutes.POST("/:id/payments", billingHandler.RecordPayment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
