package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/middleware"
	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/repository"
	"github.com/brigadehq/roster/internal/scheduler"
)

type LeaveHandler struct {
	leaveRepo       *repository.LeaveRepository
	brigadeRepo     *repository.BrigadeRepository
	calculator      *scheduler.LeaveWindowCalculator
	clock           scheduler.Clock
	maxOpenRequests int
}

func NewLeaveHandler(
	leaveRepo *repository.LeaveRepository,
	brigadeRepo *repository.BrigadeRepository,
	calculator *scheduler.LeaveWindowCalculator,
	clock scheduler.Clock,
	maxOpenRequests int,
) *LeaveHandler {
	return &LeaveHandler{
		leaveRepo:       leaveRepo,
		brigadeRepo:     brigadeRepo,
		calculator:      calculator,
		clock:           clock,
		maxOpenRequests: maxOpenRequests,
	}
}

// CreateLeave books leave for a single training date. Validation
// failures come back field-keyed so the form can annotate each input.
func (h *LeaveHandler) CreateLeave(c *gin.Context) {
	var req models.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	memberID := middleware.SessionMemberID(c)
	today := dates.FromTime(h.clock.Now())

	problems := models.ValidationErrors{}
	if req.TrainingDate.Before(today) {
		problems["training_date"] = "cannot request leave for a past date"
	}

	if !problems.Any() {
		held, err := h.leaveRepo.HasActiveForDate(ctx, memberID, req.TrainingDate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing requests"})
			return
		}
		if held {
			problems["training_date"] = "a request already exists for this date"
		}
	}

	if !problems.Any() {
		open, err := h.leaveRepo.CountOpen(ctx, memberID, today)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check open requests"})
			return
		}
		if open >= h.maxOpenRequests {
			problems["training_date"] = "too many open leave requests"
		}
	}

	if problems.Any() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": problems})
		return
	}

	leave := &models.LeaveRequest{
		ID:           uuid.New(),
		MemberID:     memberID,
		TrainingDate: req.TrainingDate,
		Reason:       req.Reason,
		Status:       models.LeaveStatusPending,
		CreatedAt:    time.Now(),
	}

	if err := h.leaveRepo.Create(ctx, leave); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create leave request"})
		return
	}

	c.JSON(http.StatusCreated, leave)
}

func (h *LeaveHandler) ListLeave(c *gin.Context) {
	leaves, err := h.leaveRepo.ListByMember(c.Request.Context(), middleware.SessionMemberID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list leave requests"})
		return
	}
	c.JSON(http.StatusOK, leaves)
}

// CancelLeave withdraws the member's own pending request.
func (h *LeaveHandler) CancelLeave(c *gin.Context) {
	leaveID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid leave request ID"})
		return
	}

	ctx := c.Request.Context()
	memberID := middleware.SessionMemberID(c)

	leave, err := h.leaveRepo.GetByID(ctx, leaveID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get leave request"})
		return
	}
	if leave == nil || leave.MemberID != memberID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Leave request not found"})
		return
	}

	if err := h.leaveRepo.Transition(ctx, leaveID, models.LeaveStatusCancelled, memberID); err != nil {
		if errors.Is(err, models.ErrLeaveNotPending) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel leave request"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPending returns the brigade's pending requests for review.
func (h *LeaveHandler) ListPending(c *gin.Context) {
	leaves, err := h.leaveRepo.ListPendingByBrigade(c.Request.Context(), middleware.SessionBrigadeID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending requests"})
		return
	}
	c.JSON(http.StatusOK, leaves)
}

func (h *LeaveHandler) ApproveLeave(c *gin.Context) {
	h.decide(c, models.LeaveStatusApproved)
}

func (h *LeaveHandler) DenyLeave(c *gin.Context) {
	h.decide(c, models.LeaveStatusDenied)
}

func (h *LeaveHandler) decide(c *gin.Context, to models.LeaveStatus) {
	leaveID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid leave request ID"})
		return
	}

	err = h.leaveRepo.Transition(c.Request.Context(), leaveID, to, middleware.SessionMemberID(c))
	if err != nil {
		if errors.Is(err, models.ErrLeaveNotPending) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update leave request"})
		return
	}

	leave, err := h.leaveRepo.GetByID(c.Request.Context(), leaveID)
	if err != nil || leave == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, leave)
}

// CreateExtendedLeave books a date range. The number of trainings the
// range touches is computed once here and stored on the request.
func (h *LeaveHandler) CreateExtendedLeave(c *gin.Context) {
	var req models.CreateExtendedLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	memberID := middleware.SessionMemberID(c)
	today := dates.FromTime(h.clock.Now())

	problems := models.ValidationErrors{}
	if req.EndDate.Before(req.StartDate) {
		problems["end_date"] = "end date is before start date"
	}
	if req.StartDate.Before(today) {
		problems["start_date"] = "cannot request leave starting in the past"
	}

	if !problems.Any() {
		overlapping, err := h.leaveRepo.HasOverlappingExtended(ctx, memberID, req.StartDate, req.EndDate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check overlapping requests"})
			return
		}
		if overlapping {
			problems["start_date"] = "an extended request already covers part of this range"
		}
	}

	if problems.Any() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": problems})
		return
	}

	brigade, err := h.brigadeRepo.GetByID(ctx, middleware.SessionBrigadeID(c))
	if err != nil || brigade == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load brigade"})
		return
	}

	affected, err := h.calculator.RangeCount(ctx, brigade, req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count affected trainings"})
		return
	}

	leave := &models.ExtendedLeaveRequest{
		ID:                uuid.New(),
		MemberID:          memberID,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		TrainingsAffected: affected.Count,
		Reason:            req.Reason,
		Status:            models.LeaveStatusPending,
		CreatedAt:         time.Now(),
	}

	if err := h.leaveRepo.CreateExtended(ctx, leave); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create extended leave request"})
		return
	}

	c.JSON(http.StatusCreated, leave)
}

func (h *LeaveHandler) ListExtendedLeave(c *gin.Context) {
	leaves, err := h.leaveRepo.ListExtendedByMember(c.Request.Context(), middleware.SessionMemberID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list extended leave requests"})
		return
	}
	c.JSON(http.StatusOK, leaves)
}

func (h *LeaveHandler) ApproveExtendedLeave(c *gin.Context) {
	h.decideExtended(c, models.LeaveStatusApproved)
}

func (h *LeaveHandler) DenyExtendedLeave(c *gin.Context) {
	h.decideExtended(c, models.LeaveStatusDenied)
}

func (h *LeaveHandler) decideExtended(c *gin.Context, to models.LeaveStatus) {
	leaveID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid leave request ID"})
		return
	}

	err = h.leaveRepo.TransitionExtended(c.Request.Context(), leaveID, to, middleware.SessionMemberID(c))
	if err != nil {
		if errors.Is(err, models.ErrLeaveNotPending) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update extended leave request"})
		return
	}

	leave, err := h.leaveRepo.GetExtendedByID(c.Request.Context(), leaveID)
	if err != nil || leave == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, leave)
}
