package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"salonbook/internal/bookings/service"
	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
	now     func() time.Time
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
		now:     time.Now,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if !h.decode(w, r, "Create", &req) {
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	staffID, err := httputil.QueryRequired(r, "staff_id")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	date, err := httputil.QueryDate(r, "date")
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	status := model.BookingStatus(r.URL.Query().Get("status"))

	bookings, err := h.service.ListByStaffAndDate(r.Context(), staffID, date, status)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

// Cancel accepts an empty body; the reason is optional.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CancelBookingRequest
	if r.ContentLength != 0 && !h.decode(w, r, "Cancel", &req) {
		return
	}

	result, err := h.service.Cancel(r.Context(), ps.ByName("id"), req.Reason, h.now())
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.RescheduleRequest
	if !h.decode(w, r, "Reschedule", &req) {
		return
	}

	booking, err := h.service.Move(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Reschedule", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.QueryDate(r, "date")
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}
	// a missing duration is reported by the ledger as INVALID_DURATION
	duration, err := httputil.QueryInt(r, "duration", 0)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}
	granularity, err := httputil.QueryInt(r, "granularity", 0)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), ps.ByName("staff_id"), date, duration, granularity)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) decode(w http.ResponseWriter, r *http.Request, name string, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		h.writeError(w, name, apperrors.InvalidInput("Invalid request body"))
		return false
	}
	return true
}

func (h *BookingHandler) writeError(w http.ResponseWriter, name string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/search", h.Search)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/id/:id/reschedule", h.Reschedule)
	router.GET("/api/v1/staff/:staff_id/slots", h.Slots)
}
