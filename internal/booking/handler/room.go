package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffops/staffops-backend/internal/booking/repository"
	"github.com/staffops/staffops-backend/internal/booking/service"
	"github.com/staffops/staffops-backend/pkg/httputil"
	"github.com/staffops/staffops-backend/pkg/logger"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	service *service.RoomService
	logger  *logger.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(svc *service.RoomService, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: svc,
		logger:  log,
	}
}

// CreateRoomRequest is the payload for creating a room
type CreateRoomRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
}

// UpdateRoomRequest is the payload for updating a room
type UpdateRoomRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Capacity int    `json:"capacity" validate:"required,gt=0"`
	IsActive bool   `json:"is_active"`
}

// List lists rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	rooms, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rooms)
}

// Get gets a room by ID
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	room, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, room)
}

// Create creates a new room
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	room := &repository.Room{
		Name:     req.Name,
		Capacity: req.Capacity,
		IsActive: true,
	}

	if err := h.service.Create(r.Context(), room); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, room)
}

// Update updates a room
func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateRoomRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	room := &repository.Room{
		ID:       id,
		Name:     req.Name,
		Capacity: req.Capacity,
		IsActive: req.IsActive,
	}

	if err := h.service.Update(r.Context(), room); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, room)
}

// Deactivate marks a room inactive
func (h *RoomHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Deactivate(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
