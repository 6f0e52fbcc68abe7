package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"wishwell/internal/auth"
	"wishwell/internal/event"
)

type EventHandler struct {
	Svc *event.Service
	Log *zap.Logger
}

type eventDTO struct {
	ID           uint64     `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	EventDate    *time.Time `json:"event_date"`
	OwnerListID  uint64     `json:"owner_list_id"`
	Participants []listDTO  `json:"participants"`
}

func toEventDTO(ev *event.Event) eventDTO {
	participants := make([]listDTO, 0, len(ev.Participants))
	for _, p := range ev.Participants {
		participants = append(participants, toListDTO(p.List))
	}
	return eventDTO{
		ID:           ev.ID,
		Title:        ev.Title,
		Description:  ev.Description,
		EventDate:    ev.EventDate,
		OwnerListID:  ev.OwnerID,
		Participants: participants,
	}
}

type createEventReq struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	EventDate   *string `json:"event_date"` // RFC3339 optional
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	var req createEventReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "bad json")
		return
	}

	var eventDate *time.Time
	if req.EventDate != nil && strings.TrimSpace(*req.EventDate) != "" {
		t, err := time.Parse(time.RFC3339, *req.EventDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "invalid event_date (RFC3339)")
			return
		}
		eventDate = &t
	}

	ev, err := h.Svc.Create(r.Context(), ident, event.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   eventDate,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(ev))
}

func (h *EventHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	events, err := h.Svc.FindAllFor(r.Context(), ident)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := make([]eventDTO, 0, len(events))
	for i := range events {
		out = append(out, toEventDTO(&events[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ev, err := h.Svc.Get(r.Context(), ident, eventID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(ev))
}

type addParticipantReq struct {
	UserID uint64 `json:"user_id"`
}

func (h *EventHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req addParticipantReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "user_id required")
		return
	}

	ev, err := h.Svc.AddParticipant(r.Context(), ident, eventID, req.UserID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(ev))
}

func (h *EventHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Svc.Remove(r.Context(), ident, eventID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, event.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, event.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "not your event")
	case errors.Is(err, event.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", "invalid event")
	default:
		h.Log.Error("event handler error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error", "server error")
	}
}
