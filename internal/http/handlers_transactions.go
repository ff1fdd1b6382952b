package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	period := ParsePeriod(r.URL.Query())
	txs, err := s.svc.Transactions.ListByPeriod(r.Context(), owner(r), period, s.cfg.Now())
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível carregar as transações.")
		return
	}
	NewResponse().Data(toTransactionDTOs(txs)).Write(w, r)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		BadRequestError("Corpo da requisição inválido.").Write(w, r)
		return
	}

	saved, err := s.svc.Transactions.Create(r.Context(), owner(r), req.draft())
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível salvar a transação.")
		return
	}

	description := "A transação foi adicionada com sucesso."
	if len(saved) > 1 {
		description = fmt.Sprintf("%d parcelas foram adicionadas com sucesso.", len(saved))
	}
	NewResponse().
		Status(http.StatusCreated).
		Data(toTransactionDTOs(saved)).
		Success("Transação salva!", description).
		Write(w, r)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Transactions.Delete(r.Context(), owner(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, "Erro", "Não foi possível excluir a transação.")
		return
	}
	NewResponse().Success("Transação excluída!", "A transação foi removida com sucesso.").Write(w, r)
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	occ, err := s.svc.Transactions.Upcoming(r.Context(), owner(r), s.cfg.Now())
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível carregar as próximas transações.")
		return
	}
	out := make([]occurrenceDTO, len(occ))
	for i, o := range occ {
		out[i] = occurrenceDTO{Transaction: toTransactionDTO(o.Transaction), Date: o.Date}
	}
	NewResponse().Data(out).Write(w, r)
}
