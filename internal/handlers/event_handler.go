package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/middleware"
	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/recurrence"
	"github.com/brigadehq/roster/internal/repository"
)

type EventHandler struct {
	eventRepo     *repository.EventRepository
	exceptionRepo *repository.ExceptionRepository
}

func NewEventHandler(eventRepo *repository.EventRepository, exceptionRepo *repository.ExceptionRepository) *EventHandler {
	return &EventHandler{eventRepo: eventRepo, exceptionRepo: exceptionRepo}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RecurrenceRule != "" {
		if _, err := recurrence.ParseRule(req.RecurrenceRule); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recurrence rule: " + err.Error()})
			return
		}
	}

	if len(req.Details) > 0 && !json.Valid(req.Details) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON details"})
		return
	}

	event := &models.Event{
		ID:              uuid.New(),
		BrigadeID:       req.BrigadeID,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		RecurrenceRule:  req.RecurrenceRule,
		Date:            dates.FromTime(req.StartTime),
		Details:         req.Details,
		Status:          models.EventStatusActive,
		CreatedBy:       middleware.SessionMemberID(c),
		CreatedAt:       time.Now(),
	}

	if err := h.eventRepo.Create(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// ListOccurrences expands an event's recurrence into concrete calendar
// instances for a date window, with its exceptions applied.
func (h *EventHandler) ListOccurrences(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	from := dates.FromTime(time.Now())
	to := from.AddMonths(3)
	if s := c.Query("from"); s != "" {
		if from, err = dates.Parse(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return
		}
	}
	if s := c.Query("to"); s != "" {
		if to, err = dates.Parse(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}
	}

	exceptions, err := h.exceptionRepo.ExceptionSet(c.Request.Context(), event.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load exceptions"})
		return
	}

	occurrences := recurrence.Expand(event.Definition(), exceptions, from, to)
	c.JSON(http.StatusOK, gin.H{"occurrences": occurrences})
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	brigadeID := middleware.SessionBrigadeID(c)

	events, err := h.eventRepo.ListByBrigade(c.Request.Context(), brigadeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.RecurrenceRule != nil && *req.RecurrenceRule != "" {
		if _, err := recurrence.ParseRule(*req.RecurrenceRule); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recurrence rule: " + err.Error()})
			return
		}
	}

	if len(req.Details) > 0 && !json.Valid(req.Details) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON details"})
		return
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
		event.Date = dates.FromTime(*req.StartTime)
	}
	if req.DurationMinutes != nil {
		event.DurationMinutes = *req.DurationMinutes
	}
	if req.RecurrenceRule != nil {
		event.RecurrenceRule = *req.RecurrenceRule
	}
	if len(req.Details) > 0 {
		event.Details = req.Details
	}
	if req.Status != nil {
		event.Status = models.EventStatus(*req.Status)
	}

	if err := h.eventRepo.Update(c.Request.Context(), event); err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	if err := h.eventRepo.Delete(c.Request.Context(), eventID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateException records a cancellation or move for one nominal date of
// a recurring event.
func (h *EventHandler) CreateException(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	event, err := h.eventRepo.GetByID(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if event.RecurrenceRule == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Exceptions apply to recurring events only"})
		return
	}

	var req models.CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.IsCancelled && req.ReplacementDate.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either is_cancelled or replacement_date is required"})
		return
	}
	if req.IsCancelled && !req.ReplacementDate.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A cancelled occurrence cannot carry a replacement date"})
		return
	}

	exception := &models.EventException{
		ID:              uuid.New(),
		EventID:         eventID,
		ExceptionDate:   req.ExceptionDate,
		IsCancelled:     req.IsCancelled,
		ReplacementDate: req.ReplacementDate,
		Notes:           req.Notes,
		CreatedAt:       time.Now(),
	}

	if err := h.exceptionRepo.Create(c.Request.Context(), exception); err != nil {
		if errors.Is(err, models.ErrExceptionExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create exception"})
		return
	}

	c.JSON(http.StatusCreated, exception)
}

func (h *EventHandler) ListExceptions(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	exceptions, err := h.exceptionRepo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exceptions"})
		return
	}

	c.JSON(http.StatusOK, exceptions)
}

func (h *EventHandler) DeleteException(c *gin.Context) {
	exceptionID, err := uuid.Parse(c.Param("exceptionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid exception ID"})
		return
	}

	if err := h.exceptionRepo.Delete(c.Request.Context(), exceptionID); err != nil {
		if errors.Is(err, models.ErrExceptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Exception not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete exception"})
		return
	}

	c.Status(http.StatusNoContent)
}
