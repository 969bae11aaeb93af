package routes

import (
	"medication-tracker-server/internal/config"
	"medication-tracker-server/internal/handlers"
	"medication-tracker-server/internal/middleware"
	"medication-tracker-server/internal/tracker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, t *tracker.Service, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	medicationHandler := handlers.NewMedicationHandler(t)
	scheduleHandler := handlers.NewScheduleHandler(t)
	adherenceHandler := handlers.NewAdherenceHandler(t)
	interactionHandler := handlers.NewInteractionHandler(t)
	subscriptionHandler := handlers.NewSubscriptionHandler(t)
	healthLogHandler := handlers.NewHealthLogHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
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

		medicationRoutes := private.Group("/medications")
		{
			medicationRoutes.GET("", medicationHandler.ListMedications)
			medicationRoutes.POST("", medicationHandler.AddMedication)
			medicationRoutes.GET("/:id", medicationHandler.GetMedication)
			medicationRoutes.DELETE("/:id", medicationHandler.DeactivateMedication)
			medicationRoutes.PATCH("/:id/quantity", medicationHandler.AdjustQuantity)
			medicationRoutes.GET("/:id/adherence", medicationHandler.GetAdherenceStats)
		}

		scheduleRoutes := private.Group("/schedules")
		{
			scheduleRoutes.GET("", scheduleHandler.ListSchedules)
			scheduleRoutes.POST("", scheduleHandler.CreateSchedule)
			scheduleRoutes.PUT("/:id", scheduleHandler.UpdateSchedule)
			scheduleRoutes.DELETE("/:id", scheduleHandler.DeleteSchedule)
		}
		private.GET("/schedule/today", scheduleHandler.GetTodaySchedule)

		adherenceRoutes := private.Group("/adherence")
		{
			adherenceRoutes.POST("/logs", adherenceHandler.LogDose)
			adherenceRoutes.GET("/weekly", adherenceHandler.GetWeeklyAdherence)
		}

		interactionRoutes := private.Group("/interactions")
		{
			interactionRoutes.GET("", interactionHandler.ListInteractions)
			interactionRoutes.GET("/alerts", interactionHandler.GetCriticalAlerts)
		}

		symptomRoutes := private.Group("/symptoms")
		{
			symptomRoutes.GET("", healthLogHandler.ListSymptoms)
			symptomRoutes.POST("", healthLogHandler.CreateSymptom)
		}

		vitalRoutes := private.Group("/vitals")
		{
			vitalRoutes.GET("", healthLogHandler.ListVitals)
			vitalRoutes.POST("", healthLogHandler.CreateVital)
		}

		private.GET("/subscription", subscriptionHandler.GetSubscription)
		private.PUT("/subscription", subscriptionHandler.ChangePlan)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
