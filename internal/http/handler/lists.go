package handler

import (
	"net/http"

	"wishwell/internal/auth"
	"wishwell/internal/list"
)

type ListHandler struct {
	Svc *list.Service
}

type listDTO struct {
	UserID    uint64 `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func toListDTO(l list.List) listDTO {
	return listDTO{UserID: l.UserID, FirstName: l.FirstName, LastName: l.LastName}
}

// FindOthers returns every participant's list except the caller's own, for
// picking whose wishes to browse.
func (h *ListHandler) FindOthers(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())

	lists, err := h.Svc.FindOthers(r.Context(), ident)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "server error")
		return
	}

	out := make([]listDTO, 0, len(lists))
	for _, l := range lists {
		out = append(out, toListDTO(l))
	}
	writeJSON(w, http.StatusOK, out)
}
