package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"taxiledger/internal/log"
	"taxiledger/internal/services"
)

const (
	// mutations allowed per client and window
	mutationLimit  = 120
	mutationWindow = time.Minute
)

type Server struct {
	http.Server
	svc     *services.LedgerService
	limiter *rateLimiter
	started time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.LedgerService, logger *log.Logger) *Server {
	s := &Server{
		Server: http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:     svc,
		limiter: newRateLimiter(mutationLimit, mutationWindow),
		started: time.Now(),
	}

	router := s.routes()
	var handler http.Handler = router
	handler = s.limiter.limitMutations(handler)
	handler = securityHeaders(handler)
	handler = log.RequestLogging(handler)
	handler = log.RequestIDMiddleware(handler)
	handler = log.Middleware(logger.WithComponent(log.ComponentHTTP))(handler)
	s.Handler = handler

	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		NotFoundError("no such route").Write(w)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/summary/daily/{date}", s.handleDailySummary).Methods(http.MethodGet)
	api.HandleFunc("/summary/monthly/{month}", s.handleMonthlySummary).Methods(http.MethodGet)
	api.HandleFunc("/calendar/{month}", s.handleCalendar).Methods(http.MethodGet)

	api.HandleFunc("/entries", s.handleListEntries).Methods(http.MethodGet)
	api.HandleFunc("/incomes", s.handleListIncomes).Methods(http.MethodGet)
	api.HandleFunc("/incomes", s.handleCreateIncome).Methods(http.MethodPost)
	api.HandleFunc("/incomes/{id}", s.handleUpdateIncome).Methods(http.MethodPut)
	api.HandleFunc("/incomes/{id}", s.handleDeleteIncome).Methods(http.MethodDelete)
	api.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id}", s.handleUpdateExpense).Methods(http.MethodPut)
	api.HandleFunc("/expenses/{id}", s.handleDeleteExpense).Methods(http.MethodDelete)

	api.HandleFunc("/driving-logs/{date}", s.handleGetDrivingLog).Methods(http.MethodGet)
	api.HandleFunc("/driving-logs/{date}", s.handleSaveDrivingLog).Methods(http.MethodPut)
	api.HandleFunc("/driving-logs/{date}", s.handleDeleteDrivingLog).Methods(http.MethodDelete)

	api.HandleFunc("/goals/{month}/progress", s.handleGoalProgress).Methods(http.MethodGet)
	api.HandleFunc("/goals/{month}", s.handleSetGoal).Methods(http.MethodPut)
	api.HandleFunc("/goals/{month}", s.handleDeleteGoal).Methods(http.MethodDelete)

	api.HandleFunc("/days-off/{date}/toggle", s.handleToggleDayOff).Methods(http.MethodPost)

	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/export.csv", s.handleExportCSV).Methods(http.MethodGet)
	api.HandleFunc("/export.xlsx", s.handleExportXLSX).Methods(http.MethodGet)
	api.HandleFunc("/import", s.handleImport).Methods(http.MethodPost)
	api.HandleFunc("/data", s.handleClear).Methods(http.MethodDelete)

	return r
}

// Shutdown stops the limiter cleanup and drains the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
