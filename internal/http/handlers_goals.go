package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.Goals.List(r.Context(), owner(r), s.cfg.Now())
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível carregar as metas.")
		return
	}
	NewResponse().Data(toGoalDTOs(goals)).Write(w, r)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		BadRequestError("Corpo da requisição inválido.").Write(w, r)
		return
	}
	g, err := s.svc.Goals.Create(r.Context(), owner(r), req.goal(""))
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível criar a meta.")
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Data(map[string]string{"id": g.ID}).
		Success("Meta criada!", fmt.Sprintf("Meta %q foi criada com sucesso.", g.Name)).
		Write(w, r)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		BadRequestError("Corpo da requisição inválido.").Write(w, r)
		return
	}
	if err := s.svc.Goals.Update(r.Context(), owner(r), req.goal(chi.URLParam(r, "id"))); err != nil {
		writeError(w, r, err, "Erro", "Não foi possível atualizar a meta.")
		return
	}
	NewResponse().Success("Meta atualizada!", "A meta foi modificada com sucesso.").Write(w, r)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Goals.Delete(r.Context(), owner(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, "Erro", "Não foi possível excluir a meta.")
		return
	}
	NewResponse().Success("Meta excluída!", "A meta foi removida com sucesso.").Write(w, r)
}
