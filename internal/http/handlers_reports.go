package http

import (
	"net/http"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Reports.Dashboard(r.Context(), owner(r), ParsePeriod(r.URL.Query()), s.cfg.Now())
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível carregar o painel.")
		return
	}
	NewResponse().Data(dashboardDTO{
		Period:             d.Period,
		Summary:            d.Summary,
		ExpensesByCategory: nonNil(d.ExpensesByCategory),
		Chart:              d.Chart,
		Recent:             toTransactionDTOs(d.Recent),
	}).Write(w, r)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	params, err := ParseReportParams(r.URL.Query(), s.cfg.Now())
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	rep, err := s.svc.Reports.Report(r.Context(), owner(r), params.Year, params.Month)
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível gerar o relatório.")
		return
	}
	NewResponse().Data(reportDTO{
		Year:       rep.Year,
		Month:      rep.Month,
		Summary:    rep.Summary,
		Monthly:    nonNil(rep.Monthly),
		Categories: nonNil(rep.Categories),
		Years:      nonNil(rep.Years),
	}).Write(w, r)
}

// nonNil keeps empty lists as [] rather than null on the wire.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
