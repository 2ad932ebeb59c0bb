package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"staffbook/internal/recurring/service"
	apperrors "staffbook/pkg/errors"
	httputil "staffbook/pkg/http"
	"staffbook/pkg/logger"
	"staffbook/pkg/model"
)

type RuleHandler struct {
	service service.RuleService
	log     *logger.Logger
}

func NewRuleHandler(service service.RuleService, log *logger.Logger) *RuleHandler {
	return &RuleHandler{
		service: service,
		log:     log,
	}
}

func (h *RuleHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var rule model.RecurringRule
	if err := httputil.DecodeJSON(r, &rule); err != nil {
		h.writeError(w, "Create", err)
		return
	}
	if rule.ID != "" {
		h.writeError(w, "Create", apperrors.InvalidInput("id is assigned by the server"))
		return
	}

	if err := h.service.Create(r.Context(), &rule, httputil.ActorFromRequest(r)); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, rule); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RuleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rule, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, rule); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RuleHandler) Expand(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.ExpansionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Expand", err)
		return
	}

	result, err := h.service.Expand(r.Context(), ps.ByName("id"), &req, httputil.ActorFromRequest(r))
	if err != nil {
		h.writeError(w, "Expand", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Expand", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RuleHandler) Deactivate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cascade := false
	if s := r.URL.Query().Get("cascade"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			h.writeError(w, "Deactivate", apperrors.InvalidInput("invalid cascade parameter: "+s))
			return
		}
		cascade = v
	}

	result, err := h.service.Deactivate(r.Context(), ps.ByName("id"), cascade, httputil.ActorFromRequest(r))
	if err != nil {
		h.writeError(w, "Deactivate", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Deactivate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RuleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/recurring-rules", h.Create)
	router.GET("/api/v1/recurring-rules/:id", h.GetByID)
	router.POST("/api/v1/recurring-rules/:id/expand", h.Expand)
	router.POST("/api/v1/recurring-rules/:id/deactivate", h.Deactivate)
}
