package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/perspectra/portal/internal/api/handler"
	apimiddleware "github.com/perspectra/portal/internal/api/middleware"
	"github.com/perspectra/portal/internal/authclient"
	"github.com/perspectra/portal/internal/middleware"
	"github.com/perspectra/portal/internal/model"
	"github.com/perspectra/portal/internal/services/gate"
	"github.com/perspectra/portal/internal/services/ledger"
	"github.com/perspectra/portal/internal/services/session"
	"github.com/perspectra/portal/internal/services/stats"
	"github.com/perspectra/portal/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthClient     *authclient.Client
	SessionManager *session.Manager
	LedgerService  *ledger.Service
	StatsService   *stats.Service
	Gate           *gate.Gate
	Storage        storage.Storage
}

// NewRouter creates a new API router with all routes configured.
//
// Role gating mirrors the portal's dashboards: employees and individual
// learners own progress routes, HR owns org stats, managers own team
// stats; notes and preferences belong to any authenticated account.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthClient, cfg.SessionManager)
	progressHandler := handler.NewProgressHandler(cfg.LedgerService)
	statsHandler := handler.NewStatsHandler(cfg.StatsService)
	accountHandler := handler.NewAccountHandler(cfg.Storage)
	catalogHandler := handler.NewCatalogHandler()

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	anyRole := apimiddleware.RequireRole(cfg.Gate,
		model.RoleEmployee, model.RoleManager, model.RoleHR, model.RoleIndividual)
	learnerOnly := apimiddleware.RequireRole(cfg.Gate, model.RoleEmployee, model.RoleIndividual)
	hrOnly := apimiddleware.RequireRole(cfg.Gate, model.RoleHR)
	managerOnly := apimiddleware.RequireRole(cfg.Gate, model.RoleManager)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Auth routes (no session required for register/login)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	me := api.PathPrefix("").Subrouter()
	me.Use(anyRole)
	me.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	me.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)
	me.HandleFunc("/notes", accountHandler.GetNotes).Methods(http.MethodGet)
	me.HandleFunc("/notes", accountHandler.PutNotes).Methods(http.MethodPut)
	me.HandleFunc("/preferences", accountHandler.GetPreferences).Methods(http.MethodGet)
	me.HandleFunc("/preferences", accountHandler.PutPreferences).Methods(http.MethodPut)

	// Catalog is public
	api.HandleFunc("/scenarios", catalogHandler.List).Methods(http.MethodGet)

	// Progress routes (learner roles only; the gate lazily initializes
	// the account's ledger)
	progress := api.PathPrefix("/progress").Subrouter()
	progress.Use(learnerOnly)
	progress.HandleFunc("", progressHandler.Get).Methods(http.MethodGet)
	progress.HandleFunc("/{scenario_id}/start", progressHandler.Start).Methods(http.MethodPost)
	progress.HandleFunc("/{scenario_id}/complete", progressHandler.Complete).Methods(http.MethodPost)
	progress.HandleFunc("/{scenario_id}/choice", progressHandler.Choice).Methods(http.MethodPut)

	// Dashboard aggregates
	org := api.PathPrefix("/stats/org").Subrouter()
	org.Use(hrOnly)
	org.HandleFunc("", statsHandler.Org).Methods(http.MethodGet)

	team := api.PathPrefix("/stats/team").Subrouter()
	team.Use(managerOnly)
	team.HandleFunc("", statsHandler.Team).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
