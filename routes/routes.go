package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pongnight/bracket-server/handlers"
	"github.com/pongnight/bracket-server/middleware"
	"github.com/pongnight/bracket-server/services"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	Group      *handlers.GroupHandler
	Tournament *handlers.TournamentHandler
	Admin      *handlers.AdminHandler
	WebSocket  *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, authService services.AuthService) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(middleware.Metrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Post("/auth/login", h.Auth.LoginHandler)

	// Просмотр открыт всем: экран с сеткой висит на общем телевизоре.
	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.ListHandler)
		r.Get("/{playerID}", h.Player.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authService))
			r.Post("/", h.Player.CreateHandler)
			r.Patch("/{playerID}", h.Player.UpdateHandler)
			r.Delete("/{playerID}", h.Player.DeleteHandler)
			r.Post("/{playerID}/avatar", h.Player.UploadAvatarHandler)
		})
	})

	router.Route("/groups", func(r chi.Router) {
		r.Get("/", h.Group.ListHandler)
		r.Get("/{groupID}", h.Group.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authService))
			r.Post("/", h.Group.CreateHandler)
			r.Put("/{groupID}", h.Group.UpdateHandler)
			r.Delete("/{groupID}", h.Group.DeleteHandler)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/bracket", h.Tournament.GetBracketHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authService))
			r.Post("/", h.Tournament.CreateHandler)
			r.Delete("/{tournamentID}", h.Tournament.DeleteHandler)
			r.Post("/{tournamentID}/activate", h.Tournament.ActivateHandler)
			r.Post("/{tournamentID}/fix-bracket", h.Tournament.FixBracketHandler)
			r.Put("/{tournamentID}/matches/{matchID}/score", h.Tournament.UpdateMatchScoreHandler)
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(authService))
		r.Post("/stats/reset", h.Admin.ResetStatsHandler)
		r.Post("/stats/fix", h.Admin.FixStatsHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	return router
}
