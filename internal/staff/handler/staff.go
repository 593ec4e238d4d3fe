package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"salonbook/internal/staff/service"
	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

type StaffHandler struct {
	service service.StaffService
	log     *logger.Logger
}

func NewStaffHandler(service service.StaffService, log *logger.Logger) *StaffHandler {
	return &StaffHandler{
		service: service,
		log:     log,
	}
}

func (h *StaffHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	staff, err := h.service.GetByID(r.Context(), ps.ByName("staff_id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, staff); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// Upsert stores a full snapshot. The id in the path wins over any id in the body.
func (h *StaffHandler) Upsert(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var staff model.Staff
	if err := json.NewDecoder(r.Body).Decode(&staff); err != nil {
		h.writeError(w, "Upsert", apperrors.InvalidInput("Invalid request body"))
		return
	}
	staff.ID = ps.ByName("staff_id")

	if err := h.service.Upsert(r.Context(), &staff); err != nil {
		h.writeError(w, "Upsert", err)
		return
	}

	if err := httputil.WriteSuccess(w, staff); err != nil {
		h.log.Error("failed to write success response", "handler", "Upsert", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("staff_id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StaffHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.QueryDate(r, "date")
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	result, err := h.service.Availability(r.Context(), ps.ByName("staff_id"), date)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StaffHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *StaffHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/staff/:staff_id", h.GetByID)
	router.PUT("/api/v1/staff/:staff_id", h.Upsert)
	router.DELETE("/api/v1/staff/:staff_id", h.Delete)
	router.GET("/api/v1/staff/:staff_id/availability", h.Availability)
}
