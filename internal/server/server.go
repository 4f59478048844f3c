package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rvosen/mealbell/internal/handler"
	"github.com/rvosen/mealbell/internal/middleware"
	"github.com/rvosen/mealbell/internal/push"
	"github.com/rvosen/mealbell/internal/reminder"
	"github.com/rvosen/mealbell/internal/store"
)

// Config holds the server's notification configuration.
type Config struct {
	Push               push.Config
	DailyHour          int
	DefaultTargetHours int
	Icon               string
	Badge              string
}

type Server struct {
	db          *sql.DB
	pushH       *handler.PushHandler
	mealH       *handler.MealHandler
	settingsH   *handler.SettingsHandler
	scheduler   *reminder.Scheduler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	subStore := store.NewSubscriptionStore(db)
	mealStore := store.NewMealStore(db)

	// Missing VAPID keys disable the push capability only; the HTTP
	// API keeps serving so meal tracking and settings still work.
	var pushH *handler.PushHandler
	var scheduler *reminder.Scheduler
	if cfg.Push.VAPIDPublicKey == "" || cfg.Push.VAPIDPrivateKey == "" {
		logger.Error("VAPID keys not configured; push notifications disabled")
	} else {
		svc := push.NewService(cfg.Push)
		engine := reminder.NewEngine(subStore, svc, reminder.NewMemoryHistory(), reminder.Config{
			DefaultTargetHours: cfg.DefaultTargetHours,
			Icon:               cfg.Icon,
			Badge:              cfg.Badge,
		}, logger.With("component", "reminder"))
		scheduler = reminder.NewScheduler(engine, cfg.DailyHour, logger.With("component", "scheduler"))
		pushH = handler.NewPushHandler(subStore, svc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:          db,
		pushH:       pushH,
		mealH:       handler.NewMealHandler(mealStore, subStore, logger.With("component", "meal")),
		settingsH:   handler.NewSettingsHandler(subStore, logger.With("component", "settings")),
		scheduler:   scheduler,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Scheduler returns the reminder scheduler, or nil when push is disabled.
func (s *Server) Scheduler() *reminder.Scheduler {
	return s.scheduler
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	if s.pushH != nil {
		mux.Handle("POST /api/push/subscribe", s.rateLimited(s.pushH.Subscribe))
		mux.HandleFunc("DELETE /api/push/subscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	mux.HandleFunc("POST /api/meals", s.mealH.Track)
	mux.HandleFunc("GET /api/meals", s.mealH.History)
	mux.HandleFunc("DELETE /api/meals/{id}", s.mealH.Delete)

	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	return middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)(h)
}
