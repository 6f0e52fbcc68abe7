package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wishwell/internal/auth"
	"wishwell/internal/list"
	"wishwell/internal/wish"
)

type WishHandler struct {
	Svc *wish.Service
	Log *zap.Logger
}

type giftedByDTO struct {
	Amount     int     `json:"amount"`
	Message    *string `json:"message,omitempty"`
	GifterList listDTO `json:"gifter_list"`
}

type wishDTO struct {
	ID          uint64        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Link        *string       `json:"link"`
	Image       *string       `json:"image"`
	Price       *int          `json:"price"`
	Order       int           `json:"order"`
	CreatedAt   time.Time     `json:"created_at"`
	GiftedBy    []giftedByDTO `json:"gifted_by"`
}

func toWishDTO(w *wish.Wish) wishDTO {
	giftedBy := make([]giftedByDTO, 0, len(w.Contributions))
	for _, c := range w.Contributions {
		giftedBy = append(giftedBy, giftedByDTO{
			Amount:     c.Amount,
			Message:    c.Message,
			GifterList: toListDTO(c.Gifter),
		})
	}
	return wishDTO{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Link:        w.Link,
		Image:       w.Image,
		Price:       w.Price,
		Order:       w.SortOrder,
		CreatedAt:   w.CreatedAt,
		GiftedBy:    giftedBy,
	}
}

type createWishReq struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
	Image       *string `json:"image"`
	Price       *int    `json:"price"`
	Order       int     `json:"order"`
}

func (h *WishHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	recipientID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req createWishReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "bad json")
		return
	}

	created, err := h.Svc.Create(r.Context(), ident, recipientID, wish.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		Image:       req.Image,
		Price:       req.Price,
		SortOrder:   req.Order,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWishDTO(created))
}

func (h *WishHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	recipientID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	wishes, err := h.Svc.FindAll(r.Context(), ident, recipientID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := make([]wishDTO, 0, len(wishes))
	for i := range wishes {
		out = append(out, toWishDTO(&wishes[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateWishReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Link        *string `json:"link"`
	Image       *string `json:"image"`
	Price       *int    `json:"price"`
	Order       *int    `json:"order"`
}

func (h *WishHandler) Update(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	recipientID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	wishID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateWishReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "bad json")
		return
	}

	updated, err := h.Svc.Update(r.Context(), ident, recipientID, wishID, wish.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		Image:       req.Image,
		Price:       req.Price,
		SortOrder:   req.Order,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWishDTO(updated))
}

type redeemWishReq struct {
	Type    string  `json:"type"`
	Amount  int     `json:"amount"`
	Message *string `json:"message"`
}

// Redeem handles PATCH: a contributor pledging toward (REDEEM) or backing out
// of (REMOVE) a wish on somebody else's list.
func (h *WishHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	recipientID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	wishID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if ident.UserID == recipientID {
		h.Log.Warn("caller can't redeem their own wish",
			zap.Uint64("caller", ident.UserID), zap.Uint64("wish", wishID))
		writeError(w, http.StatusUnauthorized, "unauthorized", "can't contribute to your own wish")
		return
	}

	var req redeemWishReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "bad json")
		return
	}
	typ, ok := wish.ParseRedeemType(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "type must be REDEEM or REMOVE")
		return
	}

	updated, err := h.Svc.Redeem(r.Context(), ident, recipientID, wishID, wish.PledgeRequest{
		Type:    typ,
		Amount:  req.Amount,
		Message: req.Message,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWishDTO(updated))
}

func (h *WishHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	recipientID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	wishID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	deleted, err := h.Svc.Remove(r.Context(), ident, recipientID, wishID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWishDTO(deleted))
}

func (h *WishHandler) writeDomainError(w http.ResponseWriter, err error) {
	var vErr *wish.ValidationError
	var cErr *wish.InvalidContributionError
	switch {
	case errors.Is(err, wish.ErrNotFound), errors.Is(err, list.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, wish.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "not allowed to contribute to own wish")
	case errors.Is(err, wish.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "not your wish")
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "validation_error", vErr.Error())
	case errors.As(err, &cErr):
		writeError(w, http.StatusBadRequest, cErr.Code, cErr.Error())
	case errors.Is(err, list.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", "list already exists")
	default:
		h.Log.Error("wish handler error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error", "server error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid "+name)
		return 0, false
	}
	return id, true
}
