package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vroo/hr-tracker/internal/model"
	employeesvc "github.com/vroo/hr-tracker/internal/service/employee"
	apperrors "github.com/vroo/hr-tracker/pkg/errors"
	"github.com/vroo/hr-tracker/pkg/httputil"
)

type EmployeeHandler struct {
	svc *employeesvc.Service
}

func NewEmployeeHandler(svc *employeesvc.Service) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

func (h *EmployeeHandler) List(c *gin.Context) {
	p := paginationFromQuery(c)
	employees, total, err := h.svc.ListEmployees(c.Request.Context(), p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, employees, p.Page, p.PageSize, total)
}

func (h *EmployeeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid employee id", err))
		return
	}

	emp, err := h.svc.GetEmployee(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, emp)
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid employee id", err))
		return
	}

	var req model.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	emp, err := h.svc.UpdateEmployee(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, emp)
}
