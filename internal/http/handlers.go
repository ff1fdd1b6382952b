package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finsimples/internal/auth"
	"finsimples/internal/cache"
	"finsimples/internal/core"
	applog "finsimples/internal/log"
	"finsimples/internal/services"
	"finsimples/internal/sheets"
	sheetcsv "finsimples/internal/sheets/csv"
)

var errSheetsDisabled = errors.New("google sheets import is not configured")

// owner returns the id of the authenticated caller, or "".
func owner(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.ID
}

// writeError maps err to a status and writes it. title heads the
// notification shown for unexpected failures.
func writeError(w http.ResponseWriter, r *http.Request, err error, title, description string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		NewResponse().
			Status(http.StatusUnprocessableEntity).
			Error(ve.Error(), ve.Field).
			Failure("Dados inválidos", ve.Err.Error()).
			Write(w, r)
	case errors.Is(err, services.ErrUnauthenticated):
		UnauthorizedError().Write(w, r)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("Registro não encontrado.").Write(w, r)
	case errors.Is(err, services.ErrDefaultCategory):
		ErrorResponse(http.StatusConflict, title, "Categorias padrão não podem ser excluídas.").Write(w, r)
	case errors.Is(err, services.ErrSubmissionInFlight):
		ErrorResponse(http.StatusConflict, title, "Esta transação já está sendo salva.").Write(w, r)
	case errors.Is(err, sheets.ErrNoHeader),
		errors.Is(err, sheetcsv.ErrEmptyFile),
		errors.Is(err, sheetcsv.ErrBinaryFile),
		errors.Is(err, sheetcsv.ErrTooManyRows):
		NewResponse().
			Status(http.StatusUnprocessableEntity).
			Error(err.Error(), "file").
			Failure("Formato inválido", "Apenas arquivos CSV em texto são aceitos.").
			Write(w, r)
	case errors.Is(err, errSheetsDisabled):
		ErrorResponse(http.StatusServiceUnavailable, title, "A importação do Google Sheets não está configurada.").Write(w, r)
	case errors.Is(err, context.DeadlineExceeded):
		ErrorResponse(http.StatusGatewayTimeout, title, "A operação demorou demais.").Write(w, r)
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err.Error(),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusInternalServerError, title, description).Write(w, r)
	}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().Data(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	}).Write(w, r)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.cfg.Store == nil {
		checks["store"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else if err := s.cfg.Store.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if s.cfg.CacheStats != nil {
		checks["cache"] = s.cfg.CacheStats()
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
	}
	checks["security"] = s.securityDetector.GetMetrics()
	checks["requests"] = s.traceMiddleware.GetMetrics()
	if s.cfg.Verifier != nil {
		checks["revoked_tokens"] = s.cfg.Verifier.RevokedCount()
	}
	checks["google_sheets"] = s.cfg.OpenSheet != nil

	NewResponse().Status(httpStatus).Data(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w, r)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		NewResponse().Data(meDTO{}).Write(w, r)
		return
	}
	NewResponse().Data(meDTO{Authenticated: true, User: &id}).Write(w, r)
}

// handleSignOut revokes the bearer token and drops the caller's cached data.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	raw, claims, ok := auth.TokenFromContext(r.Context())
	id, _ := auth.FromContext(r.Context())
	if !ok || s.cfg.Verifier == nil {
		UnauthorizedError().Write(w, r)
		return
	}

	s.cfg.Verifier.Revoke(raw, claims)
	inv := cache.Invalidation{OwnerID: id.ID, Kinds: cache.AllKinds}
	cache.Record(r.Context(), inv)
	if s.cfg.Invalidator != nil {
		s.cfg.Invalidator.Invalidate(r.Context(), inv)
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Signed out")
	NewResponse().Success("Sessão encerrada", "Até logo!").Write(w, r)
}
