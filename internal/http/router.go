package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"wishwell/internal/auth"
	"wishwell/internal/config"
	"wishwell/internal/event"
	"wishwell/internal/http/handler"
	mw "wishwell/internal/http/middleware"
	"wishwell/internal/jobs"
	"wishwell/internal/list"
	"wishwell/internal/message"
	"wishwell/internal/wish"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, hub *message.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	resolver := &auth.DBResolver{DB: db}
	listSvc := &list.Service{DB: db, Log: log}
	wishSvc := &wish.Service{Store: wish.NewGormStore(db), Lists: listSvc, Log: log}
	msgSvc := &message.Service{DB: db, Log: log}
	eventSvc := &event.Service{DB: db, Lists: listSvc, Jobs: &jobs.Repo{DB: db}, Log: log}

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	me := &handler.MeHandler{}
	lh := &handler.ListHandler{Svc: listSvc}
	wh := &handler.WishHandler{Svc: wishSvc, Log: log}
	eh := &handler.EventHandler{Svc: eventSvc, Log: log}
	mh := &handler.MessageHandler{
		Hub:      hub,
		Svc:      msgSvc,
		JWT:      jwtSvc,
		Resolver: resolver,
		Lists:    listSvc,
		Log:      log,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	hub.OnMessage = mh.HandleInbound

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)

		// Websocket handshake carries its own token; the middleware only
		// understands Authorization headers.
		r.Get("/lists/messages/ws", mh.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(jwtSvc, resolver))

			r.Get("/me", me.Me)
			r.Get("/lists", lh.FindOthers)

			r.Route("/lists/{userId}", func(r chi.Router) {
				r.Get("/messages", mh.ForList)

				r.Post("/wishes", wh.Create)
				r.Get("/wishes", wh.FindAll)
				r.Put("/wishes/{id}", wh.Update)
				r.Patch("/wishes/{id}", wh.Redeem)
				r.Delete("/wishes/{id}", wh.Remove)
			})

			r.Route("/events", func(r chi.Router) {
				r.Post("/", eh.Create)
				r.Get("/", eh.FindAll)
				r.Get("/{id}", eh.Get)
				r.Delete("/{id}", eh.Remove)
				r.Post("/{id}/participants", eh.AddParticipant)
			})
		})
	})

	return r
}
