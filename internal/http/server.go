// Package http exposes the REST/JSON API: auth, ledger entries, pantry,
// reminders, budgets and goals, all owner-scoped by the bearer token.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"finanzas/internal/auth"
	"finanzas/internal/core"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

// Deps bundles everything the server needs.
type Deps struct {
	Accounts  *services.AccountService
	Ledger    *services.LedgerService
	Pantry    *services.PantryService
	Reminders *services.ReminderService
	Budgets   *services.BudgetService
	Goals     *services.GoalService
	Tokens    *auth.TokenManager
	Storage   *storage.SQLiteRepository
}

type Server struct {
	router    chi.Router
	accounts  *services.AccountService
	ledger    *services.LedgerService
	pantry    *services.PantryService
	reminders *services.ReminderService
	budgets   *services.BudgetService
	goals     *services.GoalService
	tokens    *auth.TokenManager
	storage   *storage.SQLiteRepository
	limiter   *ratelimit.Limiter
	now       func() time.Time
}

func NewServer(deps Deps) *Server {
	s := &Server{
		accounts:  deps.Accounts,
		ledger:    deps.Ledger,
		pantry:    deps.Pantry,
		reminders: deps.Reminders,
		budgets:   deps.Budgets,
		goals:     deps.Goals,
		tokens:    deps.Tokens,
		storage:   deps.Storage,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		now:       time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(clientIP)

	r.Use(headers.Middleware)
	r.Use(tracer.Middleware)
	r.Use(s.limitWrites())

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.tokens))

			r.Get("/auth/verify", s.handleVerify)
			r.Get("/user/profile", s.handleProfile)

			r.Route("/gastos", s.entryRoutes(core.KindExpense))
			r.Route("/ingresos", s.entryRoutes(core.KindIncome))

			r.Route("/despensa", func(r chi.Router) {
				r.Get("/", s.handleListPantry)
				r.Post("/", s.handleCreatePantry)
				r.Put("/{id}", s.handleUpdatePantry)
				r.Delete("/{id}", s.handleDeletePantry)
			})

			r.Route("/recordatorios", func(r chi.Router) {
				r.Get("/", s.handleListReminders)
				r.Post("/", s.handleCreateReminder)
				r.Put("/{id}/completado", s.handleCompleteReminder)
				r.Delete("/{id}", s.handleDeleteReminder)
			})

			r.Route("/presupuestos", func(r chi.Router) {
				r.Get("/", s.handleListBudgets)
				r.Post("/", s.handleUpsertBudget)
				r.Get("/alertas", s.handleBudgetAlerts)
				r.Delete("/{categoria}", s.handleDeleteBudget)
			})

			r.Route("/metas", func(r chi.Router) {
				r.Get("/", s.handleListGoals)
				r.Post("/", s.handleCreateGoal)
				r.Put("/{id}/ahorro", s.handleAssignSavings)
				r.Delete("/{id}", s.handleDeleteGoal)
			})
		})
	})

	return r
}

// limitWrites rate-limits mutating requests per client IP. Reads stay
// unthrottled.
func (s *Server) limitWrites() func(http.Handler) http.Handler {
	limit := s.limiter.Middleware(clientIP, nil)
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
			default:
				limited.ServeHTTP(w, r)
			}
		})
	}
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases server-owned background resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.storage.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// identity pulls the authenticated caller from the request context. The auth
// middleware guarantees it on protected routes.
func identity(r *http.Request) (auth.Identity, bool) {
	return auth.IdentityFromContext(r.Context())
}
