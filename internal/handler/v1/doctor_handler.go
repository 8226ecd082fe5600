package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/healthgrid/hospital-api/internal/domain/doctor"
	"github.com/healthgrid/hospital-api/internal/service"
)

type DoctorHandler struct {
	svc *service.DoctorService
}

func NewDoctorHandler(svc *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{svc: svc}
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

// List serves the doctor directory. An optional department filter and a
// free-text search keyword are supported; keyword wins when both are set.
func (h *DoctorHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
		doctors, err := h.svc.SearchDoctors(ctx, keyword)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, doctors)
		return
	}

	if raw := c.Query("department_id"); raw != "" {
		deptID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid department_id: must be a valid UUID")
			return
		}
		doctors, err := h.svc.ListByDepartment(ctx, deptID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, doctors)
		return
	}

	doctors, err := h.svc.ListDoctors(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, doctors)
}

// Me returns the directory record linked to the authenticated doctor
// account.
func (h *DoctorHandler) Me(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	d, err := h.svc.GetByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

// AppointmentCount reports the consumed portion of a doctor's daily
// quota for one date.
func (h *DoctorHandler) AppointmentCount(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	date, ok := parseQueryDate(c, "date")
	if !ok {
		return
	}

	count, err := h.svc.AppointmentCountForDate(c.Request.Context(), id, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"doctor_id": id, "date": date.Format(time.DateOnly), "booked": count})
}

type updateDoctorRequest struct {
	DepartmentID    *string  `json:"department_id"`
	Name            *string  `json:"name"`
	Title           *string  `json:"title"`
	Specialty       *string  `json:"specialty"`
	Introduction    *string  `json:"introduction"`
	Experience      *int     `json:"experience_years"`
	ConsultationFee *float64 `json:"consultation_fee"`
	DailyQuota      *int     `json:"daily_quota"`
}

func (h *DoctorHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &doctor.UpdateDoctorCommand{
		Name:            req.Name,
		Title:           req.Title,
		Specialty:       req.Specialty,
		Introduction:    req.Introduction,
		Experience:      req.Experience,
		ConsultationFee: req.ConsultationFee,
		DailyQuota:      req.DailyQuota,
	}
	if req.DepartmentID != nil {
		deptID, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid department_id: must be a valid UUID")
			return
		}
		cmd.DepartmentID = &deptID
	}

	updated, err := h.svc.UpdateDoctor(c.Request.Context(), id, cmd, actorFrom(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, updated)
}

type setAvailabilityRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *DoctorHandler) SetAvailability(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req setAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.svc.SetAvailability(c.Request.Context(), id, *req.Active, actorFrom(c), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"id": id, "active": *req.Active})
}
