package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/handlers"
	"github.com/brigadehq/roster/internal/middleware"
	"github.com/brigadehq/roster/internal/services"
)

// SetupRoutes configures all API routes with their middleware
func SetupRoutes(
	router *gin.Engine,
	baseLogger *zap.Logger,
	tokenService *services.TokenService,
	tokenHandler *handlers.TokenHandler,
	eventHandler *handlers.EventHandler,
	trainingHandler *handlers.TrainingHandler,
	leaveHandler *handlers.LeaveHandler,
	holidayHandler *handlers.HolidayHandler,
	rateLimiter *middleware.RateLimiter,
) {
	requestLogger := logrus.New()

	// Global middleware
	router.Use(middleware.RequestIDMiddleware(baseLogger))
	router.Use(middleware.Logger(requestLogger))
	router.Use(middleware.ErrorHandler())

	// Public routes
	public := router.Group("/")
	{
		public.GET("/status", handlers.StatusHandler)
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})
		public.POST("/tokens", tokenHandler.CreateToken)
	}

	// Member routes
	member := router.Group("/")
	member.Use(middleware.SessionAuth(tokenService))
	member.Use(rateLimiter.RateLimit())
	{
		trainings := member.Group("/trainings")
		{
			trainings.GET("/upcoming", trainingHandler.ListUpcoming)
			trainings.GET("", trainingHandler.ListScheduled)
		}

		leave := member.Group("/leave")
		{
			leave.POST("", leaveHandler.CreateLeave)
			leave.GET("", leaveHandler.ListLeave)
			leave.DELETE("/:id", leaveHandler.CancelLeave)
		}

		extended := member.Group("/extended-leave")
		{
			extended.POST("", leaveHandler.CreateExtendedLeave)
			extended.GET("", leaveHandler.ListExtendedLeave)
		}

		events := member.Group("/events")
		{
			events.GET("", eventHandler.ListEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.GET("/:id/occurrences", eventHandler.ListOccurrences)
			events.GET("/:id/exceptions", eventHandler.ListExceptions)
		}

		member.GET("/holidays", holidayHandler.ListHolidays)
	}

	// Admin routes
	admin := router.Group("/admin")
	admin.Use(middleware.SessionAuth(tokenService))
	admin.Use(middleware.RequireAdmin())
	admin.Use(rateLimiter.RateLimit())
	{
		events := admin.Group("/events")
		{
			events.POST("", eventHandler.CreateEvent)
			events.PUT("/:id", eventHandler.UpdateEvent)
			events.DELETE("/:id", eventHandler.DeleteEvent)
			events.POST("/:id/exceptions", eventHandler.CreateException)
			events.DELETE("/:id/exceptions/:exceptionId", eventHandler.DeleteException)
		}

		leave := admin.Group("/leave")
		{
			leave.GET("/pending", leaveHandler.ListPending)
			leave.POST("/:id/approve", leaveHandler.ApproveLeave)
			leave.POST("/:id/deny", leaveHandler.DenyLeave)
		}

		extended := admin.Group("/extended-leave")
		{
			extended.POST("/:id/approve", leaveHandler.ApproveExtendedLeave)
			extended.POST("/:id/deny", leaveHandler.DenyExtendedLeave)
		}

		admin.POST("/trainings/materialize", trainingHandler.Materialize)

		holidays := admin.Group("/holidays")
		{
			holidays.POST("", holidayHandler.UpsertHoliday)
			holidays.DELETE("/:date", holidayHandler.DeleteHoliday)
		}
	}
}
