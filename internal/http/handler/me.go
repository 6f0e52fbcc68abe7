package handler

import (
	"net/http"

	"wishwell/internal/auth"
)

type MeHandler struct{}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	ident, _ := auth.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":    ident.UserID,
		"first_name": ident.FirstName,
		"last_name":  ident.LastName,
	})
}
