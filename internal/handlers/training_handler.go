package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/middleware"
	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/repository"
	"github.com/brigadehq/roster/internal/scheduler"
)

type TrainingHandler struct {
	brigadeRepo   *repository.BrigadeRepository
	eventRepo     *repository.EventRepository
	trainings     *scheduler.TrainingScheduler
	calculator    *scheduler.LeaveWindowCalculator
	clock         scheduler.Clock
	horizonMonths int
	upcomingLimit int
}

func NewTrainingHandler(
	brigadeRepo *repository.BrigadeRepository,
	eventRepo *repository.EventRepository,
	trainings *scheduler.TrainingScheduler,
	calculator *scheduler.LeaveWindowCalculator,
	clock scheduler.Clock,
	horizonMonths int,
	upcomingLimit int,
) *TrainingHandler {
	return &TrainingHandler{
		brigadeRepo:   brigadeRepo,
		eventRepo:     eventRepo,
		trainings:     trainings,
		calculator:    calculator,
		clock:         clock,
		horizonMonths: horizonMonths,
		upcomingLimit: upcomingLimit,
	}
}

func (h *TrainingHandler) brigade(c *gin.Context) *models.Brigade {
	brigade, err := h.brigadeRepo.GetByID(c.Request.Context(), middleware.SessionBrigadeID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load brigade"})
		return nil
	}
	if brigade == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Brigade not found"})
		return nil
	}
	return brigade
}

// ListUpcoming returns the member's next bookable training nights.
func (h *TrainingHandler) ListUpcoming(c *gin.Context) {
	brigade := h.brigade(c)
	if brigade == nil {
		return
	}

	limit := h.upcomingLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	upcoming, err := h.calculator.Upcoming(c.Request.Context(), brigade, middleware.SessionMemberID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute upcoming trainings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trainings": upcoming})
}

// ListScheduled returns the materialized training rows between two dates.
func (h *TrainingHandler) ListScheduled(c *gin.Context) {
	brigade := h.brigade(c)
	if brigade == nil {
		return
	}

	from, err := dates.Parse(c.DefaultQuery("from", dates.FromTime(h.clock.Now()).String()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}
	to, err := dates.Parse(c.DefaultQuery("to", from.AddMonths(h.horizonMonths).String()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
		return
	}

	trainings, err := h.eventRepo.ListTrainingsBetween(c.Request.Context(), brigade.ID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list trainings"})
		return
	}

	c.JSON(http.StatusOK, trainings)
}

// Materialize runs the training materializer for the session's brigade.
func (h *TrainingHandler) Materialize(c *gin.Context) {
	brigade := h.brigade(c)
	if brigade == nil {
		return
	}

	created, err := h.trainings.MaterializeHorizon(c.Request.Context(), brigade, middleware.SessionMemberID(c), h.horizonMonths)
	if err != nil {
		middleware.ContextLogger(c).Error("Materialization failed",
			zap.String("brigade_id", brigade.ID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to materialize trainings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}
