package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"finsimples/internal/auth"
	"finsimples/internal/cache"
	applog "finsimples/internal/log"
	"finsimples/internal/middleware/ratelimit"
	"finsimples/internal/middleware/security"
	"finsimples/internal/middleware/trace"
	"finsimples/internal/services"
	"finsimples/internal/sheets"
)

const (
	readTimeout  = 7 * time.Second
	writeTimeout = 10 * time.Second
)

// Services are the application services behind the API.
type Services struct {
	Transactions *services.TransactionService
	Categories   *services.CategoryService
	Goals        *services.GoalService
	Reports      *services.ReportService
	Import       *services.ImportService
}

// SheetOpener returns a reader for a spreadsheet range.
type SheetOpener func(ctx context.Context, spreadsheetID, rng string) (sheets.TableReader, error)

// Pinger reports whether the data store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Addr           string
	AllowedOrigins []string
	RateLimitRPM   int
	MaxUploadBytes int64
	ImportMaxRows  int

	Logger   *applog.Logger
	Verifier *auth.Verifier
	// Invalidator drops an owner's cached data on sign-out.
	Invalidator cache.Invalidator
	Store       Pinger
	// OpenSheet is nil when no Google credentials are configured.
	OpenSheet SheetOpener
	// CacheStats reports cached entries per kind, for /readyz.
	CacheStats func() map[cache.Kind]int
	// Now is the clock used for periods and goal evaluation.
	Now func() time.Time
}

type Server struct {
	http.Server

	svc Services
	cfg Config

	traceMiddleware  *trace.Middleware
	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter

	startedAt    time.Time
	shutdownOnce sync.Once
}

func NewServer(cfg Config, svc Services) *Server {
	if cfg.Logger == nil {
		cfg.Logger = applog.New(applog.DefaultConfig())
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 << 20
	}

	s := &Server{
		svc:              svc,
		cfg:              cfg,
		securityDetector: security.NewDetector(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitRPM}),
		startedAt:        time.Now(),
	}
	s.traceMiddleware = trace.NewMiddleware(cfg.Logger.WithComponent(applog.ComponentHTTP), s.securityDetector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.traceMiddleware.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", trace.HeaderRequestID},
		ExposedHeaders:   []string{HeaderInvalidate, trace.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(s.securityDetector.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited))
		r.Use(recordInvalidations)
		if s.cfg.Verifier != nil {
			r.Use(auth.Middleware(s.cfg.Verifier))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(readTimeout))

			r.Get("/me", s.handleMe)
			r.Get("/transactions", s.handleListTransactions)
			r.Get("/transactions/upcoming", s.handleUpcoming)
			r.Get("/categories", s.handleListCategories)
			r.Get("/goals", s.handleListGoals)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/reports", s.handleReport)
			r.Get("/import/template", s.handleImportTemplate)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(writeTimeout))

			r.Post("/auth/sign-out", s.handleSignOut)
			r.Post("/transactions", s.handleCreateTransaction)
			r.Delete("/transactions/{id}", s.handleDeleteTransaction)
			r.Post("/categories", s.handleCreateCategory)
			r.Put("/categories/{id}", s.handleUpdateCategory)
			r.Delete("/categories/{id}", s.handleDeleteCategory)
			r.Post("/goals", s.handleCreateGoal)
			r.Put("/goals/{id}", s.handleUpdateGoal)
			r.Delete("/goals/{id}", s.handleDeleteGoal)
			r.Post("/import/preview", s.handleImportPreview)
			r.Post("/import", s.handleImport)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Recurso não encontrado.").Write(w, r)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "Método não permitido", r.Method+" não é aceito aqui.").Write(w, r)
	})
	return r
}

// recordInvalidations collects the kinds invalidated by a request so the
// response can name them.
func recordInvalidations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := cache.WithRecorder(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições", "Aguarde um momento e tente novamente.").Write(w, r)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}
