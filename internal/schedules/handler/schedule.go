package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"staffbook/internal/schedules/service"
	apperrors "staffbook/pkg/errors"
	httputil "staffbook/pkg/http"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
)

type ScheduleHandler struct {
	service service.ScheduleService
	log     *logger.Logger
}

func NewScheduleHandler(service service.ScheduleService, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		log:     log,
	}
}

func (h *ScheduleHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ScheduleHandler) SetWeekly(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	day, err := strconv.Atoi(ps.ByName("day"))
	if err != nil || day < 0 || day > 6 {
		h.writeError(w, "SetWeekly", apperrors.InvalidInput("day must be an integer between 0 (Sunday) and 6 (Saturday)"))
		return
	}

	var row model.WeeklySchedule
	if err := httputil.DecodeJSON(r, &row); err != nil {
		h.writeError(w, "SetWeekly", err)
		return
	}
	row.StaffID = ps.ByName("staff_id")
	row.DayOfWeek = day

	if err := h.service.SetWeekly(r.Context(), &row, httputil.ActorFromRequest(r)); err != nil {
		h.writeError(w, "SetWeekly", err)
		return
	}

	if err := httputil.WriteSuccess(w, row); err != nil {
		h.log.Error("failed to write success response", "handler", "SetWeekly", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) ListWeekly(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rows, err := h.service.ListWeekly(r.Context(), ps.ByName("staff_id"))
	if err != nil {
		h.writeError(w, "ListWeekly", err)
		return
	}

	if err := httputil.WriteSuccess(w, rows); err != nil {
		h.log.Error("failed to write success response", "handler", "ListWeekly", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) SetOverride(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var o model.AvailabilityOverride
	if err := httputil.DecodeJSON(r, &o); err != nil {
		h.writeError(w, "SetOverride", err)
		return
	}
	o.StaffID = ps.ByName("staff_id")
	o.Date = ps.ByName("date")

	if err := h.service.SetOverride(r.Context(), &o, httputil.ActorFromRequest(r)); err != nil {
		h.writeError(w, "SetOverride", err)
		return
	}

	if err := httputil.WriteSuccess(w, o); err != nil {
		h.log.Error("failed to write success response", "handler", "SetOverride", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) DeleteOverride(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteOverride(r.Context(), ps.ByName("staff_id"), ps.ByName("date")); err != nil {
		h.writeError(w, "DeleteOverride", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ScheduleHandler) RequestTimeOff(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.TimeOffRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "RequestTimeOff", err)
		return
	}
	req.StaffID = ps.ByName("staff_id")

	if err := h.service.RequestTimeOff(r.Context(), &req, httputil.ActorFromRequest(r)); err != nil {
		h.writeError(w, "RequestTimeOff", err)
		return
	}

	if err := httputil.WriteCreated(w, req); err != nil {
		h.log.Error("failed to write created response", "handler", "RequestTimeOff", "operation", "WriteCreated", "error", err)
	}
}

func (h *ScheduleHandler) ListTimeOff(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requests, err := h.service.ListTimeOff(r.Context(), ps.ByName("staff_id"))
	if err != nil {
		h.writeError(w, "ListTimeOff", err)
		return
	}

	if err := httputil.WriteSuccess(w, requests); err != nil {
		h.log.Error("failed to write success response", "handler", "ListTimeOff", "operation", "WriteSuccess", "error", err)
	}
}

type timeOffStatusRequest struct {
	Status model.TimeOffStatus `json:"status"`
}

func (h *ScheduleHandler) UpdateTimeOffStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body timeOffStatusRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "UpdateTimeOffStatus", err)
		return
	}
	switch body.Status {
	case model.TimeOffApproved, model.TimeOffRejected, model.TimeOffCancelled:
	default:
		h.writeError(w, "UpdateTimeOffStatus", apperrors.InvalidInput("status must be one of [approved, rejected, cancelled]"))
		return
	}

	updated, err := h.service.UpdateTimeOffStatus(r.Context(), ps.ByName("id"), body.Status, httputil.ActorFromRequest(r))
	if err != nil {
		h.writeError(w, "UpdateTimeOffStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateTimeOffStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/staff/:staff_id/weekly", h.ListWeekly)
	router.PUT("/api/v1/staff/:staff_id/weekly/:day", h.SetWeekly)
	router.PUT("/api/v1/staff/:staff_id/overrides/:date", h.SetOverride)
	router.DELETE("/api/v1/staff/:staff_id/overrides/:date", h.DeleteOverride)
	router.GET("/api/v1/staff/:staff_id/time-off", h.ListTimeOff)
	router.POST("/api/v1/staff/:staff_id/time-off", h.RequestTimeOff)
	router.PATCH("/api/v1/time-off/:id/status", h.UpdateTimeOffStatus)
}
