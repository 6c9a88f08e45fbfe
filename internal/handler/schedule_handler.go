package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/univpanel/scheduling-api/internal/models"
	"github.com/univpanel/scheduling-api/internal/service"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
	"github.com/univpanel/scheduling-api/pkg/response"
)

// ScheduleHandler handles schedule endpoints.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// List godoc
// @Summary List schedules
// @Tags Schedules
// @Produce json
// @Param professor_id query string false "Filter by professor"
// @Param subject_id query string false "Filter by subject"
// @Param group query string false "Filter by group label"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var filter models.ScheduleFilter
	filter.ProfessorID = c.Query("professor_id")
	filter.SubjectID = c.Query("subject_id")
	filter.GroupLabel = c.Query("group")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	schedules, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get schedule with resolved periods
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Create godoc
// @Summary Create a schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Delete godoc
// @Summary Delete a schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddPeriod godoc
// @Summary Create and attach a period to a schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body service.AddSchedulePeriodRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Router /schedules/{id}/periods [post]
func (h *ScheduleHandler) AddPeriod(c *gin.Context) {
	var req service.AddSchedulePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.service.AddPeriod(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// RemovePeriod godoc
// @Summary Detach and delete a period from a schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Param periodId path string true "Period ID"
// @Success 204
// @Router /schedules/{id}/periods/{periodId} [delete]
func (h *ScheduleHandler) RemovePeriod(c *gin.Context) {
	if err := h.service.RemovePeriod(c.Request.Context(), c.Param("id"), c.Param("periodId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ByProfessor godoc
// @Summary List schedules of a professor
// @Tags Schedules
// @Produce json
// @Param professorId path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/professor/{professorId} [get]
func (h *ScheduleHandler) ByProfessor(c *gin.Context) {
	schedules, err := h.service.ByProfessor(c.Request.Context(), c.Param("professorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// BySubject godoc
// @Summary List schedules covering a subject
// @Tags Schedules
// @Produce json
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/subject/{subjectId} [get]
func (h *ScheduleHandler) BySubject(c *gin.Context) {
	schedules, err := h.service.BySubject(c.Request.Context(), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// ByDay godoc
// @Summary List schedules with a period on the given day
// @Tags Schedules
// @Produce json
// @Param day path string true "Weekday name"
// @Success 200 {object} response.Envelope
// @Router /schedules/day/{day} [get]
func (h *ScheduleHandler) ByDay(c *gin.Context) {
	schedules, err := h.service.ByDay(c.Request.Context(), c.Param("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// ByRoom godoc
// @Summary List schedules with a period in the given room
// @Tags Schedules
// @Produce json
// @Param roomId path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/room/{roomId} [get]
func (h *ScheduleHandler) ByRoom(c *gin.Context) {
	schedules, err := h.service.ByRoom(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}
