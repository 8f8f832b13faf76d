package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"OrandaBot/internal/config"
	"OrandaBot/internal/models"
)

// OfferSource - чтение пропозиций и журнала (реализует db.Store).
type OfferSource interface {
	GetOffer(ctx context.Context, id int64) (models.Offer, error)
	ListOffers(ctx context.Context) ([]models.Offer, error)
	ListStatusEvents(ctx context.Context, offerID int64) ([]models.StatusEvent, error)
	CountStatusEvents(ctx context.Context, start, end time.Time) ([]models.StatusCount, error)
	Ping(ctx context.Context) error
}

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config    *config.Config
	Store     OfferSource
	SecretKey string
	// Now - часы для статистики; nil означает time.Now.
	Now func() time.Time
}

// Server - обработчики HTTP API (только чтение).
type Server struct {
	deps ApiDependencies
}

// NewRouter собирает chi-роутер с middleware и всеми маршрутами.
func NewRouter(deps ApiDependencies) *chi.Mux {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Server{deps: deps}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Telegram-Auth"},
		ExposedHeaders:   []string{"Link", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(r, s)
	return r
}

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r chi.Router, s *Server) {
	r.Get("/healthz", s.Healthz)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.deps.SecretKey))
		r.Use(AdminMiddleware(s.deps.Config.IsAdmin))

		r.Get("/api/offers", s.GetOffers)
		r.Get("/api/offers/{id}", s.GetOfferDetails)
		r.Get("/api/offers/{id}/events", s.GetOfferEvents)
		r.Get("/api/offers/{id}/qr.png", s.GetOfferQR)
		r.Get("/api/stats/{period}", s.GetStats)
		r.Get("/api/export.xlsx", s.ExportXLSX)
		r.Get("/api/export.csv", s.ExportCSV)
	})
}

// NewHTTPServer создает http.Server для роутера; запуск и Shutdown - на стороне main.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
