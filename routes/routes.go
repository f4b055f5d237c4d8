package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/bracketlab/tournament-engine/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	groupHandler *handlers.GroupHandler,
	playoffHandler *handlers.PlayoffHandler,
	battleRoyaleHandler *handlers.BattleRoyaleHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Post("/bracket", bracketHandler.GenerateBracketHandler)
		r.Get("/bracket", bracketHandler.GetBracketHandler)
		r.Post("/byes/resolve", matchHandler.ResolveByesHandler)

		r.Post("/groups", groupHandler.CreateGroupsHandler)
		r.Get("/standings", groupHandler.GetStandingsHandler)
		r.Post("/playoffs", playoffHandler.CreatePlayoffsHandler)

		r.Post("/battle-royale/results", battleRoyaleHandler.ScoreRoundHandler)
	})

	router.Post("/matches/{matchID}/result", matchHandler.SubmitResultHandler)
	router.Post("/fixtures/{fixtureID}/result", groupHandler.RecordFixtureResultHandler)

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
