package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dukerupert/petcare/internal/cascade"
	"github.com/dukerupert/petcare/internal/config"
	"github.com/dukerupert/petcare/internal/database"
	"github.com/dukerupert/petcare/internal/handler"
	"github.com/dukerupert/petcare/internal/kv"
	"github.com/dukerupert/petcare/internal/metrics"
	"github.com/dukerupert/petcare/internal/middleware"
	"github.com/dukerupert/petcare/internal/notify"
	"github.com/dukerupert/petcare/internal/petcare"
	"github.com/dukerupert/petcare/internal/push"
	"github.com/dukerupert/petcare/internal/repository"
	"github.com/dukerupert/petcare/internal/stats"
	"github.com/dukerupert/petcare/internal/store"
	ws "github.com/dukerupert/petcare/internal/websocket"
)

const rollInterval = time.Hour

type Server struct {
	cfg    *config.Config
	db     *sql.DB
	badger *kv.Badger
	logger *slog.Logger

	repos       *repository.Set
	service     *petcare.Service
	stats       *stats.Service
	hub         *ws.Hub
	pushStore   *store.PushStore
	pushService *push.Service
	dispatcher  *push.Dispatcher
	rateLimiter *middleware.RateLimiter

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New opens storage and wires every component. Close releases what it opened.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Server{
		cfg:         cfg,
		db:          db,
		logger:      logger,
		hub:         ws.NewHub(logger),
		pushStore:   store.NewPushStore(db),
		rateLimiter: middleware.NewRateLimiter(),
		stop:        make(chan struct{}),
	}

	records, err := s.openRecordStore(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.repos = repository.NewSet(records, time.Now, loc)
	outbox := store.NewOutboxStore(db)
	notifier := push.NewNotifier(outbox, s.repos.Settings, logger)
	sched := notify.NewScheduler(notifier, s.repos.Settings, logger, loc)
	coord := cascade.NewCoordinator(cascade.SetRepositories{Set: s.repos}, sched, logger)
	s.service = petcare.NewService(s.repos, sched, coord, s.hub, logger, loc)
	s.stats = stats.NewService(s.repos, time.Now)

	// A nil *push.Service must not reach the dispatcher as a non-nil Sender.
	var sender push.Sender
	if cfg.PushEnabled() {
		s.pushService = push.NewService(push.Config{
			VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
			Subscriber:      cfg.Push.Subscriber,
		})
		sender = s.pushService
	} else {
		logger.Info("web push disabled, notifications go to websocket clients only")
	}
	s.dispatcher = push.NewDispatcher(outbox, s.pushStore, sender, s.hub, cfg.Dispatch.Interval, logger)
	return s, nil
}

// openRecordStore selects the kv backend and wraps it in encryption when a
// passphrase is configured.
func (s *Server) openRecordStore(ctx context.Context) (kv.Store, error) {
	var inner kv.Store
	switch s.cfg.Storage.Backend {
	case "sqlite":
		inner = store.NewKVStore(s.db)
	case "badger":
		b, err := kv.OpenBadger(kv.BadgerConfig{
			Path:       s.cfg.Storage.BadgerPath,
			SyncWrites: true,
			Logger:     s.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open badger: %w", err)
		}
		s.badger = b
		inner = b
	case "memory":
		inner = kv.NewMemory()
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.cfg.Storage.Backend)
	}
	s.logger.Info("record store opened", "backend", s.cfg.Storage.Backend, "encrypted", s.cfg.Storage.Passphrase != "")

	if s.cfg.Storage.Passphrase == "" {
		return inner, nil
	}
	enc, err := kv.NewEncrypted(ctx, inner, s.cfg.Storage.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("open encrypted store: %w", err)
	}
	return enc, nil
}

// Service returns the application service for CLI commands.
func (s *Server) Service() *petcare.Service {
	return s.service
}

// Stats returns the statistics service.
func (s *Server) Stats() *stats.Service {
	return s.stats
}

// Start launches the background loops: notification dispatch, recurring
// expense rolling and rate limiter cleanup.
func (s *Server) Start(ctx context.Context) {
	s.dispatcher.Start(ctx)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.rateLimiter.RunCleanup(5*time.Minute, s.stop)
	}()
	go func() {
		defer s.wg.Done()
		s.runRoll(ctx)
	}()
}

func (s *Server) runRoll(ctx context.Context) {
	roll := func() {
		if _, err := s.service.RollRecurringExpenses(ctx); err != nil {
			s.logger.Error("roll recurring expenses", "error", err)
		}
	}
	roll()
	ticker := time.NewTicker(rollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			roll()
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		}
	}
}

// Close stops background work and releases storage.
func (s *Server) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.dispatcher != nil {
		s.dispatcher.Stop()
	}
	s.wg.Wait()

	var errs []error
	if s.badger != nil {
		errs = append(errs, s.badger.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	limited := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 120, time.Minute)(mux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(limited)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":     status,
		"ws_clients": s.hub.ClientCount(),
	})
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())

	petLogger := s.logger.With("component", "pet")
	petH := handler.NewPetHandler(s.service, s.stats, petLogger)
	mux.HandleFunc("GET /api/pets", petH.List)
	mux.HandleFunc("POST /api/pets", petH.Create)
	mux.HandleFunc("GET /api/pets/{id}", petH.Get)
	mux.HandleFunc("PUT /api/pets/{id}", petH.Update)
	mux.HandleFunc("DELETE /api/pets/{id}", petH.Delete)
	mux.HandleFunc("GET /api/pets/{id}/age", petH.Age)
	mux.HandleFunc("GET /api/pets/{id}/statistics", petH.Statistics)
	mux.HandleFunc("GET /api/statistics", petH.Overall)
	mux.HandleFunc("POST /api/maintenance/reconcile", petH.Reconcile)
	mux.HandleFunc("POST /api/recurring-expenses/roll", petH.RollRecurring)

	remH := handler.NewReminderHandler(s.service, s.logger.With("component", "reminder"))
	mux.HandleFunc("GET /api/reminders", remH.List)
	mux.HandleFunc("POST /api/reminders", remH.Create)
	mux.HandleFunc("GET /api/reminders/{id}", remH.Get)
	mux.HandleFunc("PUT /api/reminders/{id}", remH.Update)
	mux.HandleFunc("DELETE /api/reminders/{id}", remH.Delete)
	mux.HandleFunc("GET /api/pets/{pet_id}/reminders", remH.List)

	recLogger := s.logger.With("component", "records")
	handler.NewRecordHandler(s.service.Vaccines, recLogger).Register(mux, "vaccines", true)
	handler.NewRecordHandler(s.service.Expenses, recLogger).Register(mux, "expenses", true)
	handler.NewRecordHandler(s.service.Weights, recLogger).Register(mux, "weights", true)
	handler.NewRecordHandler(s.service.Grooming, recLogger).Register(mux, "grooming", true)
	handler.NewRecordHandler(s.service.Activities, recLogger).Register(mux, "activities", true)
	handler.NewRecordHandler(s.service.Insurance, recLogger).Register(mux, "insurance", true)
	handler.NewRecordHandler(s.service.Claims, recLogger).Register(mux, "insurance-claims", false)
	handler.NewRecordHandler(s.service.MedicalRecords, recLogger).Register(mux, "medical-records", true)
	handler.NewRecordHandler(s.service.RecurringExpenses, recLogger).Register(mux, "recurring-expenses", true)
	handler.NewRecordHandler(s.service.Vets, recLogger).Register(mux, "vets", false)

	settingsH := handler.NewSettingsHandler(s.service, s.logger.With("component", "settings"))
	mux.HandleFunc("GET /api/settings", settingsH.Get)
	mux.HandleFunc("PUT /api/settings", settingsH.Update)

	pushH := handler.NewPushHandler(s.pushStore, s.pushService, s.logger.With("component", "push_handler"))
	mux.HandleFunc("POST /api/push/subscribe", pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscribe", pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/subscriptions", pushH.ListSubscriptions)
	mux.HandleFunc("GET /api/push/vapid-key", pushH.GetVAPIDKey)
	mux.HandleFunc("POST /api/push/test", pushH.TestNotification)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.cfg.AllowedOrigins))
}
