package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/healthgrid/hospital-api/internal/domain/appointment"
	"github.com/healthgrid/hospital-api/internal/service"
)

type AppointmentHandler struct {
	svc *service.AppointmentService
}

func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

type createAppointmentRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	TimeSlot  int    `json:"time_slot" binding:"required"`
	Symptoms  string `json:"symptoms"`
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := actorFrom(c)

	// Patients always book for themselves; reception staff may book on a
	// patient's behalf.
	patientID := actor.UserID
	if !actor.IsPatient() && req.PatientID != "" {
		id, err := uuid.Parse(req.PatientID)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid patient_id: must be a valid UUID")
			return
		}
		patientID = id
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid doctor_id: must be a valid UUID")
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
		return
	}

	cmd := &appointment.CreateAppointmentCommand{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		Slot:      appointment.TimeSlot(req.TimeSlot),
		Symptoms:  req.Symptoms,
		CreatedBy: actor.UserID,
	}

	a, err := h.svc.Create(c.Request.Context(), cmd, actor, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.GetByID(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

// Cancel is the patient self-service cancellation.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.Cancel(c.Request.Context(), id, actorFrom(c), "", c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type adminCancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AdminCancel cancels any pending appointment with an operator reason.
func (h *AppointmentHandler) AdminCancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req adminCancelRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.Cancel(c.Request.Context(), id, actorFrom(c), req.Reason, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type updateStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	Diagnosis string `json:"diagnosis"`
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	target := appointment.Status(req.Status)
	if !target.IsValid() {
		respondError(c, http.StatusBadRequest, "invalid status: must be one of pending, confirmed, completed, cancelled")
		return
	}

	a, err := h.svc.UpdateStatus(c.Request.Context(), id, target, req.Diagnosis, actorFrom(c), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Schedule(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid doctor_id: must be a valid UUID")
		return
	}
	date, ok := parseQueryDate(c, "date")
	if !ok {
		return
	}

	var slot *appointment.TimeSlot
	if raw := c.Query("slot"); raw != "" {
		v := parseQueryInt(c, "slot", 0)
		s := appointment.TimeSlot(v)
		slot = &s
	}

	items, err := h.svc.Schedule(c.Request.Context(), doctorID, date, slot)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, items)
}

type availabilityResponse struct {
	Available      bool   `json:"available"`
	RemainingQuota int    `json:"remaining_quota"`
	SlotLabel      string `json:"slot_label"`
}

func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid doctor_id: must be a valid UUID")
		return
	}
	date, ok := parseQueryDate(c, "date")
	if !ok {
		return
	}
	slot := appointment.TimeSlot(parseQueryInt(c, "slot", 0))

	available, remaining, err := h.svc.CheckAvailability(c.Request.Context(), doctorID, date, slot)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, availabilityResponse{
		Available:      available,
		RemainingQuota: remaining,
		SlotLabel:      slot.Label(),
	})
}

func (h *AppointmentHandler) ListByPatient(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	items, err := h.svc.ListByPatient(c.Request.Context(), patientID, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, items)
}

func (h *AppointmentHandler) ListByDoctor(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	items, err := h.svc.ListByDoctor(c.Request.Context(), doctorID, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, items)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	q := &appointment.ListAppointmentsQuery{
		PatientName: c.Query("patient_name"),
		DoctorName:  c.Query("doctor_name"),
		Page:        parseQueryInt(c, "page", 1),
		PageSize:    parseQueryInt(c, "page_size", 20),
	}

	if raw := c.Query("department_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid department_id: must be a valid UUID")
			return
		}
		q.DepartmentID = &id
	}
	if raw := c.Query("status"); raw != "" {
		st := appointment.Status(raw)
		if !st.IsValid() {
			respondError(c, http.StatusBadRequest, "invalid status filter")
			return
		}
		q.Status = &st
	}

	page, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

func (h *AppointmentHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, stats)
}

func (h *AppointmentHandler) Recent(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 5)

	items, err := h.svc.RecentAppointments(c.Request.Context(), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, items)
}

// Slots lists the fixed daily time slots for booking UIs.
func (h *AppointmentHandler) Slots(c *gin.Context) {
	type slotInfo struct {
		Slot    int    `json:"slot"`
		Label   string `json:"label"`
		Morning bool   `json:"morning"`
	}
	out := make([]slotInfo, 0, 6)
	for _, s := range appointment.AllSlots() {
		out = append(out, slotInfo{Slot: int(s), Label: s.Label(), Morning: s.IsMorning()})
	}
	respondOK(c, out)
}
