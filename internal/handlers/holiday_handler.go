package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brigadehq/roster/internal/dates"
	"github.com/brigadehq/roster/internal/models"
	"github.com/brigadehq/roster/internal/repository"
)

type HolidayHandler struct {
	holidayRepo   *repository.HolidayRepository
	defaultRegion string
}

func NewHolidayHandler(holidayRepo *repository.HolidayRepository, defaultRegion string) *HolidayHandler {
	return &HolidayHandler{holidayRepo: holidayRepo, defaultRegion: defaultRegion}
}

func (h *HolidayHandler) ListHolidays(c *gin.Context) {
	region := c.DefaultQuery("region", h.defaultRegion)

	from, err := dates.Parse(c.DefaultQuery("from", dates.FromTime(time.Now()).String()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
		return
	}
	to, err := dates.Parse(c.DefaultQuery("to", from.AddYears(1).String()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
		return
	}

	holidays, err := h.holidayRepo.ListRange(c.Request.Context(), region, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list holidays"})
		return
	}

	c.JSON(http.StatusOK, holidays)
}

// UpsertHoliday inserts or renames a regional holiday.
func (h *HolidayHandler) UpsertHoliday(c *gin.Context) {
	var req models.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	holiday := &models.PublicHoliday{
		ID:        uuid.New(),
		Region:    req.Region,
		Date:      req.Date,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	if err := h.holidayRepo.Upsert(c.Request.Context(), holiday); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save holiday"})
		return
	}

	c.JSON(http.StatusCreated, holiday)
}

func (h *HolidayHandler) DeleteHoliday(c *gin.Context) {
	region := c.DefaultQuery("region", h.defaultRegion)

	d, err := dates.Parse(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date"})
		return
	}

	if err := h.holidayRepo.Delete(c.Request.Context(), region, d); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete holiday"})
		return
	}

	c.Status(http.StatusNoContent)
}
