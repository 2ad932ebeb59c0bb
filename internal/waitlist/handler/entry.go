package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"staffbook/internal/waitlist/service"
	apperrors "staffbook/pkg/errors"
	httputil "staffbook/pkg/http"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
)

type WaitlistHandler struct {
	service service.WaitlistService
	log     *logger.Logger
}

func NewWaitlistHandler(service service.WaitlistService, log *logger.Logger) *WaitlistHandler {
	return &WaitlistHandler{
		service: service,
		log:     log,
	}
}

func (h *WaitlistHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *WaitlistHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *WaitlistHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var e model.WaitlistEntry
	if err := httputil.DecodeJSON(r, &e); err != nil {
		h.writeError(w, "Create", err)
		return
	}
	if e.ID != "" {
		h.writeError(w, "Create", apperrors.InvalidInput("id is assigned by the server"))
		return
	}

	if err := h.service.Create(r.Context(), &e, httputil.ActorFromRequest(r)); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, e); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *WaitlistHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	e, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}
	h.writeSuccess(w, "GetByID", e)
}

func (h *WaitlistHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	e, err := h.service.Cancel(r.Context(), ps.ByName("id"), httputil.ActorFromRequest(r))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}
	h.writeSuccess(w, "Cancel", e)
}

func (h *WaitlistHandler) Match(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var slot model.FreedSlot
	if err := httputil.DecodeJSON(r, &slot); err != nil {
		h.writeError(w, "Match", err)
		return
	}

	result, err := h.service.Match(r.Context(), &slot, httputil.ActorFromRequest(r))
	if err != nil {
		h.writeError(w, "Match", err)
		return
	}
	h.writeSuccess(w, "Match", result)
}

func (h *WaitlistHandler) Convert(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var slot model.ConcreteSlot
	if err := httputil.DecodeJSON(r, &slot); err != nil {
		h.writeError(w, "Convert", err)
		return
	}

	a, err := h.service.Convert(r.Context(), ps.ByName("id"), &slot, httputil.ActorFromRequest(r))
	if err != nil {
		h.writeError(w, "Convert", err)
		return
	}

	if err := httputil.WriteCreated(w, a); err != nil {
		h.log.Error("failed to write created response", "handler", "Convert", "operation", "WriteCreated", "error", err)
	}
}

func (h *WaitlistHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/waitlist", h.Create)
	router.POST("/api/v1/waitlist-matches", h.Match)
	router.GET("/api/v1/waitlist/:id", h.GetByID)
	router.PATCH("/api/v1/waitlist/:id/cancel", h.Cancel)
	router.POST("/api/v1/waitlist/:id/convert", h.Convert)
}
