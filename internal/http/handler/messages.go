package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wishwell/internal/auth"
	"wishwell/internal/list"
	"wishwell/internal/message"
)

type MessageHandler struct {
	Hub      *message.Hub
	Svc      *message.Service
	JWT      *auth.JWT
	Resolver auth.Resolver
	Lists    *list.Service
	Log      *zap.Logger

	Upgrader websocket.Upgrader
}

type messageDTO struct {
	RecipientID uint64    `json:"recipient_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	Author      listDTO   `json:"author"`
}

func toMessageDTO(m *message.Message, recipientUserID uint64) messageDTO {
	return messageDTO{
		RecipientID: recipientUserID,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
		Author:      toListDTO(m.Author),
	}
}

// ForList returns the messages posted to a user's list.
func (h *MessageHandler) ForList(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	msgs, err := h.Svc.ForList(r.Context(), recipientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "server error")
		return
	}

	out := make([]messageDTO, 0, len(msgs))
	for i := range msgs {
		out = append(out, toMessageDTO(&msgs[i], recipientID))
	}
	writeJSON(w, http.StatusOK, out)
}

// ServeWS authenticates the handshake, resolves the caller to a list identity
// and joins the broadcast hub. Connections without a valid token never join.
func (h *MessageHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		if hdr := r.Header.Get("Authorization"); strings.HasPrefix(hdr, "Bearer ") {
			token = strings.TrimPrefix(hdr, "Bearer ")
		}
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing token")
		return
	}

	uid, err := h.JWT.Verify(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
		return
	}
	ident, err := h.Resolver.Resolve(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "unknown user")
		return
	}
	l, err := h.Lists.EnsureForUser(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "server error")
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.Hub.Join(ident, l, conn)
}

type inboundMessage struct {
	RecipientID uint64 `json:"recipient_id"`
	Content     string `json:"content"`
}

// HandleInbound persists one client frame, then broadcasts it to every
// connected client. Malformed frames earn the sender a structured error and
// are never persisted or broadcast.
func (h *MessageHandler) HandleInbound(c *message.Client, data []byte) {
	var in inboundMessage
	if err := json.Unmarshal(data, &in); err != nil {
		c.Send(wsError("ws_bad_format", "bad message format"))
		return
	}

	m, err := h.Svc.Create(context.Background(), c.List.ID, in.RecipientID, in.Content)
	if err != nil {
		switch err {
		case message.ErrBadMessage:
			c.Send(wsError("ws_bad_format", "bad message format"))
		case message.ErrNotFound:
			c.Send(wsError("ws_unknown_recipient", "unknown recipient list"))
		default:
			h.Log.Error("unable to relay message", zap.Error(err))
			c.Send(wsError("ws_persist_error", "unable to store message"))
		}
		return
	}

	b, err := json.Marshal(toMessageDTO(m, in.RecipientID))
	if err != nil {
		h.Log.Error("unable to encode message", zap.Error(err))
		return
	}
	h.Hub.Broadcast(b)
}

func wsError(code, msg string) []byte {
	b, _ := json.Marshal(apiError{Code: code, Message: msg})
	return b
}
