package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"staffbook/internal/appointments/repository"
	"staffbook/internal/appointments/service"
	apperrors "staffbook/pkg/errors"
	httputil "staffbook/pkg/http"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func requireDate(r *http.Request) (string, error) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return "", apperrors.InvalidInput("date query parameter is required")
	}
	return date, nil
}

func (h *AppointmentHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := requireDate(r)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	window, err := h.service.ResolveAvailability(r.Context(), ps.ByName("staff_id"), date)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	h.writeSuccess(w, "Availability", window)
}

func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := requireDate(r)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}

	q := service.SlotQuery{ServiceID: r.URL.Query().Get("service_id")}
	if q.Duration, err = httputil.QueryInt(r, "duration", 0); err != nil {
		h.writeError(w, "Slots", err)
		return
	}
	if q.Duration == 0 && q.ServiceID == "" {
		h.writeError(w, "Slots", apperrors.InvalidInput("duration or service_id query parameter is required"))
		return
	}
	if r.URL.Query().Has("buffer") {
		buffer, err := httputil.QueryInt(r, "buffer", 0)
		if err != nil {
			h.writeError(w, "Slots", err)
			return
		}
		q.Buffer = &buffer
	}

	slots, err := h.service.GenerateSlots(r.Context(), ps.ByName("staff_id"), date, q)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}
	h.writeSuccess(w, "Slots", slots)
}

func (h *AppointmentHandler) CheckConflict(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var q model.ConflictQuery
	if err := httputil.DecodeJSON(r, &q); err != nil {
		h.writeError(w, "CheckConflict", err)
		return
	}

	result, err := h.service.CheckConflict(r.Context(), &q)
	if err != nil {
		h.writeError(w, "CheckConflict", err)
		return
	}
	h.writeSuccess(w, "CheckConflict", result)
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var a model.Appointment
	if err := httputil.DecodeJSON(r, &a); err != nil {
		h.writeError(w, "Create", err)
		return
	}
	if a.ID != "" || a.RecurringID != "" {
		h.writeError(w, "Create", apperrors.InvalidInput("id and recurring_id are assigned by the server"))
		return
	}

	opts := service.BookOptions{Actor: httputil.ActorFromRequest(r), Origin: service.OriginDirect}
	if err := h.service.Book(r.Context(), &a, opts); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, a); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	a, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", a)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	f := repository.Filter{
		StaffID:  query.Get("staff_id"),
		ClientID: query.Get("client_id"),
		Date:     query.Get("date"),
		Status:   model.AppointmentStatus(query.Get("status")),
	}

	appointments, total, err := h.service.List(r.Context(), f, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, appointments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body model.AppointmentStatusUpdate
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}
	if body.Status == "" {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("status is required"))
		return
	}

	a, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), body.Status, httputil.ActorFromRequest(r))
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}
	h.writeSuccess(w, "UpdateStatus", a)
}

func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.AppointmentReschedule
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}

	a, err := h.service.Reschedule(r.Context(), ps.ByName("id"), &req, httputil.ActorFromRequest(r))
	if err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}
	h.writeSuccess(w, "Reschedule", a)
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/staff/:staff_id/availability", h.Availability)
	router.GET("/api/v1/staff/:staff_id/slots", h.Slots)
	router.POST("/api/v1/conflicts/check", h.CheckConflict)
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments", h.List)
	router.GET("/api/v1/appointments/:id", h.GetByID)
	router.PATCH("/api/v1/appointments/:id/status", h.UpdateStatus)
	router.PATCH("/api/v1/appointments/:id/reschedule", h.Reschedule)
}
