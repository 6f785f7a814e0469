package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/kartliga/kart-league/handlers"
	"github.com/kartliga/kart-league/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	tournamentHandler *handlers.TournamentHandler,
	roundHandler *handlers.RoundHandler,
	standingsHandler *handlers.StandingsHandler,
	chatHandler *handlers.ChatHandler,
	importHandler *handlers.ImportHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	router.Get("/swagger/doc.json", handlers.ServeOpenAPISpec)

	router.Post("/auth/login", authHandler.Login)

	router.Route("/players", func(r chi.Router) {
		r.Get("/", playerHandler.List)
		r.Get("/{playerID}", playerHandler.Get)

		// Управление справочником игроков только для администратора.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(middleware.RoleAdmin))

			r.Post("/", playerHandler.Create)
			r.Put("/{playerID}", playerHandler.Rename)
			r.Delete("/{playerID}", playerHandler.Delete)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/{tournamentID}/standings", standingsHandler.Tournament)
		r.Get("/{tournamentID}/chat", chatHandler.History)

		// Ведение турнира доступно без токена: таблица живёт на общем
		// экране, и заезды записывает любой участник.
		r.Post("/", tournamentHandler.Create)
		r.Post("/{tournamentID}/start", tournamentHandler.Start)
		r.Post("/{tournamentID}/complete", tournamentHandler.Complete)
		r.Post("/{tournamentID}/end-early", roundHandler.EndEarly)
		r.Post("/{tournamentID}/players", tournamentHandler.AddPlayer)
		r.Delete("/{tournamentID}/players/{playerID}", tournamentHandler.RemovePlayer)
		r.Post("/{tournamentID}/rounds", roundHandler.Record)
		r.Post("/{tournamentID}/chat", chatHandler.Post)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(middleware.RoleAdmin))

			r.Delete("/{tournamentID}", tournamentHandler.Delete)
		})
	})

	router.Get("/rounds/{roundID}", roundHandler.Get)

	router.Get("/standings/all-time", standingsHandler.AllTime)

	router.Route("/import", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(middleware.RoleAdmin))

		r.Post("/bulk", importHandler.Bulk)
		r.Post("/file", importHandler.Upload)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
