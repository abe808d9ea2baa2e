package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kittisak-dev/timetable-api/internal/dto"
	"github.com/kittisak-dev/timetable-api/internal/service"
	appErrors "github.com/kittisak-dev/timetable-api/pkg/errors"
	"github.com/kittisak-dev/timetable-api/pkg/response"
)

type timetableGenerator interface {
	GenerateForGroup(ctx context.Context, req dto.GenerateGroupRequest) (*dto.GenerateGroupResponse, error)
	GenerateForDepartment(ctx context.Context, req dto.GenerateDepartmentRequest) (*dto.GenerateRunResponse, error)
	GenerateForInstitution(ctx context.Context) (*dto.GenerateRunResponse, error)
}

// GeneratorHandler exposes the timetable generation endpoints.
type GeneratorHandler struct {
	service timetableGenerator
}

// NewGeneratorHandler constructs the handler.
func NewGeneratorHandler(svc *service.GeneratorService) *GeneratorHandler {
	return &GeneratorHandler{service: svc}
}

// GenerateGroup rebuilds the schedule of a single class group.
func (h *GeneratorHandler) GenerateGroup(c *gin.Context) {
	var req dto.GenerateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.service.GenerateForGroup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// GenerateDepartment rebuilds every class group of a department.
func (h *GeneratorHandler) GenerateDepartment(c *gin.Context) {
	var req dto.GenerateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	result, err := h.service.GenerateForDepartment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// GenerateInstitution rebuilds the whole institutional schedule.
func (h *GeneratorHandler) GenerateInstitution(c *gin.Context) {
	result, err := h.service.GenerateForInstitution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
