package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wishwell/internal/auth"
	"wishwell/internal/list"
	"wishwell/internal/wish"
)

type stubLists struct {
	mu     sync.Mutex
	nextID uint64
	byUser map[uint64]*list.List
}

func (f *stubLists) EnsureForUser(ctx context.Context, userID uint64) (*list.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.byUser[userID]; ok {
		return l, nil
	}
	f.nextID++
	l := &list.List{ID: f.nextID, UserID: userID}
	f.byUser[userID] = l
	return l, nil
}

func (f *stubLists) FindByUser(ctx context.Context, userID uint64) (*list.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.byUser[userID]; ok {
		return l, nil
	}
	return nil, list.ErrNotFound
}

func newTestRouter() (*chi.Mux, *wish.Service) {
	svc := &wish.Service{
		Store: wish.NewMemoryStore(),
		Lists: &stubLists{byUser: map[uint64]*list.List{}},
		Log:   zap.NewNop(),
	}
	h := &WishHandler{Svc: svc, Log: zap.NewNop()}

	r := chi.NewRouter()
	r.Route("/api/v1/lists/{userId}/wishes", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.FindAll)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Redeem)
		r.Delete("/{id}", h.Remove)
	})
	return r, svc
}

func doJSON(t *testing.T, r http.Handler, ident auth.Identity, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithIdentity(req.Context(), ident))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestWishHandler_CreateAndList(t *testing.T) {
	r, _ := newTestRouter()
	owner := auth.Identity{UserID: 1}

	rec := doJSON(t, r, owner, http.MethodPost, "/api/v1/lists/1/wishes",
		`{"title":"red bicycle","price":120,"order":0}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created wishDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "red bicycle", created.Title)
	assert.Empty(t, created.GiftedBy)

	rec = doJSON(t, r, owner, http.MethodGet, "/api/v1/lists/1/wishes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var wishes []wishDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wishes))
	assert.Len(t, wishes, 1)
}

func TestWishHandler_RedeemOwnWishIs401(t *testing.T) {
	r, _ := newTestRouter()
	owner := auth.Identity{UserID: 1}

	rec := doJSON(t, r, owner, http.MethodPost, "/api/v1/lists/1/wishes", `{"title":"gift"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created wishDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, r, owner, http.MethodPatch, "/api/v1/lists/1/wishes/1",
		`{"type":"REDEEM","amount":10}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var apiErr apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "unauthorized", apiErr.Code)
}

func TestWishHandler_RedeemThresholdError(t *testing.T) {
	r, _ := newTestRouter()
	owner := auth.Identity{UserID: 1}
	gifter := auth.Identity{UserID: 2}
	other := auth.Identity{UserID: 3}

	rec := doJSON(t, r, owner, http.MethodPost, "/api/v1/lists/1/wishes", `{"title":"gift"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, gifter, http.MethodPatch, "/api/v1/lists/1/wishes/1",
		`{"type":"REDEEM","amount":40}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out wishDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.GiftedBy, 1)
	assert.Equal(t, 40, out.GiftedBy[0].Amount)

	rec = doJSON(t, r, other, http.MethodPatch, "/api/v1/lists/1/wishes/1",
		`{"type":"REDEEM","amount":70}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var apiErr apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "gifted_amount_threshold", apiErr.Code)
	assert.Contains(t, apiErr.Message, "60")
}

func TestWishHandler_RedeemBadType(t *testing.T) {
	r, _ := newTestRouter()
	owner := auth.Identity{UserID: 1}
	gifter := auth.Identity{UserID: 2}

	rec := doJSON(t, r, owner, http.MethodPost, "/api/v1/lists/1/wishes", `{"title":"gift"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, gifter, http.MethodPatch, "/api/v1/lists/1/wishes/1",
		`{"type":"GIFT","amount":10}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var apiErr apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "validation_error", apiErr.Code)
}

func TestWishHandler_OwnerViewMasksContributions(t *testing.T) {
	r, _ := newTestRouter()
	owner := auth.Identity{UserID: 1}
	gifter := auth.Identity{UserID: 2}

	rec := doJSON(t, r, owner, http.MethodPost, "/api/v1/lists/1/wishes", `{"title":"gift"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, gifter, http.MethodPatch, "/api/v1/lists/1/wishes/1",
		`{"type":"REDEEM","amount":50}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// owner's list view never leaks the pledge
	rec = doJSON(t, r, owner, http.MethodGet, "/api/v1/lists/1/wishes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var wishes []wishDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wishes))
	require.Len(t, wishes, 1)
	assert.Empty(t, wishes[0].GiftedBy)

	// another participant sees it
	other := auth.Identity{UserID: 3}
	rec = doJSON(t, r, other, http.MethodGet, "/api/v1/lists/1/wishes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wishes))
	require.Len(t, wishes, 1)
	assert.Len(t, wishes[0].GiftedBy, 1)
}

func TestWishHandler_UpdateByStrangerIs401(t *testing.T) {
	r, _ := newTestRouter()
	author := auth.Identity{UserID: 1}
	stranger := auth.Identity{UserID: 2}

	rec := doJSON(t, r, author, http.MethodPost, "/api/v1/lists/1/wishes", `{"title":"gift"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, stranger, http.MethodPut, "/api/v1/lists/1/wishes/1", `{"title":"hijacked"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, author, http.MethodPut, "/api/v1/lists/1/wishes/1", `{"title":"renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out wishDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "renamed", out.Title)
}

func TestWishHandler_DeleteThenGone(t *testing.T) {
	r, _ := newTestRouter()
	author := auth.Identity{UserID: 1}

	rec := doJSON(t, r, author, http.MethodPost, "/api/v1/lists/1/wishes", `{"title":"gift"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, author, http.MethodDelete, "/api/v1/lists/1/wishes/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, author, http.MethodDelete, "/api/v1/lists/1/wishes/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
