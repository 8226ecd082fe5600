package v1

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/healthgrid/hospital-api/internal/domain/department"
	"github.com/healthgrid/hospital-api/internal/service"
)

type DepartmentHandler struct {
	svc *service.DepartmentService
}

func NewDepartmentHandler(svc *service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{svc: svc}
}

type createDepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Phone       string `json:"phone"`
}

func (h *DepartmentHandler) Create(c *gin.Context) {
	var req createDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	dept := &department.Department{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Phone:       req.Phone,
	}
	if err := h.svc.CreateDepartment(c.Request.Context(), dept, actorFrom(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, dept)
}

func (h *DepartmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.GetDetail(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, detail)
}

func (h *DepartmentHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
		depts, err := h.svc.SearchDepartments(ctx, keyword)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, depts)
		return
	}

	depts, err := h.svc.ListDepartments(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, depts)
}

type updateDepartmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Phone       *string `json:"phone"`
}

func (h *DepartmentHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &department.UpdateDepartmentCommand{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Phone:       req.Phone,
	}
	updated, err := h.svc.UpdateDepartment(c.Request.Context(), id, cmd, actorFrom(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, updated)
}

func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteDepartment(c.Request.Context(), id, actorFrom(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": id})
}
