package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trackflow-app/trackflow/internal/api/handlers"
	mw "github.com/trackflow-app/trackflow/internal/api/middleware"
	"github.com/trackflow-app/trackflow/internal/auth"
	"github.com/trackflow-app/trackflow/internal/buildconfig"
	"github.com/trackflow-app/trackflow/internal/config"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/service"
	"github.com/trackflow-app/trackflow/internal/store"
	"go.uber.org/zap"
)

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the business-logic dependencies of the HTTP layer.
type Services struct {
	Auth      *service.AuthService
	Business  *service.BusinessService
	Employee  *service.EmployeeService
	Invite    *service.InviteService
	Industry  *service.IndustryService
	RateLimit func(http.Handler) http.Handler
	// MaxAvatarBytes bounds avatar uploads; zero means config.MaxAvatarBytes.
	MaxAvatarBytes int64
}

// App holds the router and background services for lifecycle management.
type App struct {
	Router        *chi.Mux
	InviteExpirer *service.InviteExpirerService
	startTime     time.Time
	counters      mw.Counters
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	// Stores
	userStore := store.NewUserStore(db)
	businessStore := store.NewBusinessStore(db)
	employeeStore := store.NewEmployeeStore(db)
	industryStore := store.NewIndustryStore(db)
	inviteStore := store.NewInviteStore(db)

	tokens, err := auth.NewTokenIssuer(config.JWTSecret(), config.AccessTokenTTL())
	if err != nil {
		return nil, err
	}

	avatars, err := service.NewDiskAvatars(config.AvatarDir(), config.MaxAvatarBytes())
	if err != nil {
		return nil, err
	}

	mailer := service.NewLogMailer(config.InviteAcceptURL(), logger)

	// Services
	svcs := Services{
		Auth:      service.NewAuthService(userStore, tokens, logger),
		Business:  service.NewBusinessService(businessStore, employeeStore, industryStore, logger),
		Employee:  service.NewEmployeeService(employeeStore, avatars, logger),
		Invite:    service.NewInviteService(inviteStore, employeeStore, userStore, mailer, config.InviteTTL(), logger),
		Industry:  service.NewIndustryService(industryStore),
		RateLimit: mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()),

		MaxAvatarBytes: config.MaxAvatarBytes(),
	}

	app := &App{InviteExpirer: service.NewInviteExpirerService(inviteStore, logger)}
	app.mount(svcs, db, logger)
	return app, nil
}

// NewRouter builds the HTTP surface over already constructed services.
func NewRouter(svcs Services, db Pinger, logger *zap.Logger) *App {
	app := &App{}
	app.mount(svcs, db, logger)
	return app
}

func (app *App) mount(svcs Services, db Pinger, logger *zap.Logger) {
	authHandler := handlers.NewAuthHandler(svcs.Auth, logger)
	businessHandler := handlers.NewBusinessHandler(svcs.Business, logger)
	if svcs.MaxAvatarBytes <= 0 {
		svcs.MaxAvatarBytes = config.MaxAvatarBytes()
	}
	employeeHandler := handlers.NewEmployeeHandler(svcs.Employee, svcs.MaxAvatarBytes, logger)
	inviteHandler := handlers.NewInviteHandler(svcs.Invite, logger)
	industryHandler := handlers.NewIndustryHandler(svcs.Industry, logger)

	r := chi.NewRouter()
	app.Router = r
	app.startTime = time.Now()

	metricsCollector := mw.NewMetricsCollector(&app.counters)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	if svcs.RateLimit != nil {
		r.Use(svcs.RateLimit)
	}

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Post("/users/signup", authHandler.Signup)
		r.Post("/login/access-token", authHandler.Login)
		r.Post("/employee/register-by-invitation/", inviteHandler.RegisterByInvitation)
		r.Get("/employee/get_avatar/{name}", employeeHandler.GetAvatar)
		r.Get("/business_industry/", industryHandler.List)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(mw.BearerAuth(svcs.Auth))

			r.Route("/business", func(r chi.Router) {
				r.Post("/", businessHandler.Create)
				r.Get("/", businessHandler.Mine)
				r.Put("/{id}", businessHandler.Update)
			})

			r.Route("/employee", func(r chi.Router) {
				r.Get("/", employeeHandler.Me)
				r.Get("/business", employeeHandler.ListByBusiness)
				r.Post("/invite_employee/", inviteHandler.Invite)
				r.Post("/update_avatar/", employeeHandler.UpdateAvatar)
				r.Put("/{id}", employeeHandler.Update)
			})

			r.Post("/business_industry/", industryHandler.Create)
		})
	})
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "ok"}
		for k, v := range buildconfig.VersionInfo() {
			body[k] = v
		}

		status := http.StatusOK
		if err := db.Ping(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "error"
			body["error"] = fmt.Sprintf("database: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}
		for k, v := range app.counters.Snapshot() {
			response[k] = v
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy interfaces at compile time.
var (
	_ domain.UserStore     = (*store.UserStore)(nil)
	_ domain.BusinessStore = (*store.BusinessStore)(nil)
	_ domain.EmployeeStore = (*store.EmployeeStore)(nil)
	_ domain.IndustryStore = (*store.IndustryStore)(nil)
	_ domain.InviteStore   = (*store.InviteStore)(nil)
	_ domain.InviteMailer  = (*service.LogMailer)(nil)
	_ mw.Authenticator     = (*service.AuthService)(nil)
)
