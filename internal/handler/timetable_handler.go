package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univpanel/scheduling-api/internal/middleware"
	"github.com/univpanel/scheduling-api/internal/service"
	"github.com/univpanel/scheduling-api/pkg/response"
)

// TimetableHandler serves room timetable queries and exports.
type TimetableHandler struct {
	timetables *service.TimetableService
	exports    *service.ExportService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(timetables *service.TimetableService, exports *service.ExportService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables, exports: exports}
}

// ForRoom godoc
// @Summary Weekly timetable of a room
// @Tags Timetables
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/timetable [get]
func (h *TimetableHandler) ForRoom(c *gin.Context) {
	timetable, cacheHit, err := h.timetables.ForRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, timetable, nil, middleware.ExtractMeta(c))
}

// ExportRoom godoc
// @Summary Export the weekly timetable of a room
// @Tags Timetables
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Room ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /rooms/{id}/timetable/export [get]
func (h *TimetableHandler) ExportRoom(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.RoomTimetable(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

// ExportSchedule godoc
// @Summary Export a schedule as PDF
// @Tags Timetables
// @Produce application/pdf
// @Param id path string true "Schedule ID"
// @Success 200 {file} file
// @Router /schedules/{id}/export [get]
func (h *TimetableHandler) ExportSchedule(c *gin.Context) {
	result, err := h.exports.Schedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
