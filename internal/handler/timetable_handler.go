package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kittisak-dev/timetable-api/internal/models"
	"github.com/kittisak-dev/timetable-api/internal/service"
	"github.com/kittisak-dev/timetable-api/pkg/response"
)

type timetableReader interface {
	ListTimetables(ctx context.Context, group string) (models.Timetables, error)
	ClearAll(ctx context.Context) error
}

// TimetableHandler exposes read and clear endpoints for persisted schedules.
type TimetableHandler struct {
	service timetableReader
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.GeneratorService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// List returns the persisted timetables, keyed by class group. The group
// query parameter narrows the result to one group.
func (h *TimetableHandler) List(c *gin.Context) {
	tables, err := h.service.ListTimetables(c.Request.Context(), c.Query("group"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tables)
}

// Clear wipes every class group's schedule.
func (h *TimetableHandler) Clear(c *gin.Context) {
	if err := h.service.ClearAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
