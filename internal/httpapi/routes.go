package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/inwo-backend/internal/decks"
	"github.com/DoyleJ11/inwo-backend/internal/hub"
	"github.com/DoyleJ11/inwo-backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Deps struct {
	Hub            *hub.Hub
	Decks          decks.Store
	Log            *zap.Logger
	WS             ws.Options
	AllowedOrigins []string
}

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(d.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, d.Log, d.WS))

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", RoomStats(d.Hub))
		r.Get("/decks", ListDecks(d.Decks, d.Log))
		r.Post("/decks", CreateDeck(d.Decks, d.Log))
		r.Delete("/decks/{id}", DeleteDeck(d.Decks, d.Log))
	})
	return r
}
