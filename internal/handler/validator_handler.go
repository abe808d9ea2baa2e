package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kittisak-dev/timetable-api/internal/dto"
	"github.com/kittisak-dev/timetable-api/internal/service"
	"github.com/kittisak-dev/timetable-api/pkg/response"
)

type timetableValidator interface {
	Validate(ctx context.Context, query dto.ValidateQuery) (*dto.ValidateResponse, error)
}

// ValidatorHandler exposes the conflict audit endpoint.
type ValidatorHandler struct {
	service timetableValidator
}

// NewValidatorHandler constructs the handler.
func NewValidatorHandler(svc *service.ValidatorService) *ValidatorHandler {
	return &ValidatorHandler{service: svc}
}

// Validate audits the persisted timetables for conflicts.
func (h *ValidatorHandler) Validate(c *gin.Context) {
	query := dto.ValidateQuery{
		DepartmentID: c.Query("departmentId"),
		Group:        c.Query("group"),
		Type:         strings.ToUpper(c.Query("type")),
	}

	result, err := h.service.Validate(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
