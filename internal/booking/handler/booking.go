package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/staffops/staffops-backend/internal/booking/repository"
	"github.com/staffops/staffops-backend/internal/booking/service"
	"github.com/staffops/staffops-backend/pkg/errors"
	"github.com/staffops/staffops-backend/pkg/httputil"
	"github.com/staffops/staffops-backend/pkg/logger"
)

// BookingHandler handles booking-related endpoints
type BookingHandler struct {
	service *service.BookingService
	logger  *logger.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(svc *service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: svc,
		logger:  log,
	}
}

// CreateBookingRequest is the payload for submitting a booking
type CreateBookingRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description *string  `json:"description"`
	RoomID      string   `json:"room_id" validate:"required,uuid"`
	StartTime   string   `json:"start_time" validate:"required"`
	EndTime     string   `json:"end_time" validate:"required"`
	Attendees   []string `json:"attendees" validate:"dive,uuid"`
}

// RejectBookingRequest is the payload for rejecting a booking
type RejectBookingRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// List lists bookings with filters
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	params := repository.BookingListParams{
		Page:    1,
		PerPage: 20,
	}

	if page, _ := strconv.Atoi(r.URL.Query().Get("page")); page > 0 {
		params.Page = page
	}
	if perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page")); perPage > 0 && perPage <= 100 {
		params.PerPage = perPage
	}
	if roomID := r.URL.Query().Get("room_id"); roomID != "" {
		params.RoomID = &roomID
	}
	if requesterID := r.URL.Query().Get("requester_id"); requesterID != "" {
		params.RequesterID = &requesterID
	}
	if status := r.URL.Query().Get("status"); status != "" {
		params.Status = &status
	}
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			httputil.Error(w, errors.BadRequest("invalid from format, expected RFC3339"))
			return
		}
		params.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			httputil.Error(w, errors.BadRequest("invalid to format, expected RFC3339"))
			return
		}
		params.To = &t
	}

	bookings, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / params.PerPage
	if int(total)%params.PerPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, bookings, &httputil.Meta{
		Page:       params.Page,
		PerPage:    params.PerPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Get gets a booking by ID
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, booking)
}

// Create submits a new booking request
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid start_time format, expected RFC3339"))
		return
	}
	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid end_time format, expected RFC3339"))
		return
	}

	booking := &repository.Booking{
		Title:       req.Title,
		Description: req.Description,
		RoomID:      req.RoomID,
		StartTime:   startTime,
		EndTime:     endTime,
		Attendees:   pq.StringArray(req.Attendees),
	}

	conflicts, err := h.service.Create(r.Context(), booking)
	if err != nil {
		httputil.Error(w, withConflictDetails(err, conflicts))
		return
	}

	httputil.Created(w, booking)
}

// Availability runs the conflict check for a candidate interval
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		httputil.Error(w, errors.BadRequest("room_id is required"))
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid start format, expected RFC3339"))
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid end format, expected RFC3339"))
		return
	}

	var excludeID *string
	if id := r.URL.Query().Get("exclude_id"); id != "" {
		excludeID = &id
	}
	includePending := r.URL.Query().Get("include_pending") == "true"

	conflicts, err := h.service.CheckAvailability(r.Context(), roomID, start, end, excludeID, includePending)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"available": len(conflicts) == 0,
		"conflicts": conflicts,
	})
}

// Approve approves a pending booking
func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conflicts, err := h.service.Approve(r.Context(), id)
	if err != nil {
		httputil.Error(w, withConflictDetails(err, conflicts))
		return
	}

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, booking)
}

// Reject rejects a pending booking
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RejectBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Reject(r.Context(), id, req.Reason); err != nil {
		httputil.Error(w, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, booking)
}

// Cancel cancels a pending booking
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Cancel(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// withConflictDetails attaches the conflicting bookings to a conflict error
// so clients can explain why the slot is unavailable.
func withConflictDetails(err error, conflicts []*repository.ConflictingBooking) error {
	if len(conflicts) == 0 {
		return err
	}

	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		return err
	}

	details := make(map[string]string, len(conflicts))
	for _, c := range conflicts {
		details[c.ID] = fmt.Sprintf("%s: %s - %s (%s, %s)",
			c.RoomName,
			c.StartTime.Format(time.RFC3339),
			c.EndTime.Format(time.RFC3339),
			c.RequesterName,
			c.Status,
		)
	}

	return appErr.WithDetails(details)
}
