package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"finsimples/internal/core"
	"finsimples/internal/services"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ, err := ParseType(r.URL.Query())
	if err != nil {
		BadRequestError("Tipo de categoria inválido.").Write(w, r)
		return
	}
	cats, err := s.svc.Categories.List(r.Context(), owner(r), typ)
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível carregar as categorias.")
		return
	}
	NewResponse().Data(toCategoryDTOs(cats)).Write(w, r)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		BadRequestError("Corpo da requisição inválido.").Write(w, r)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), owner(r), core.Category{Name: req.Name, Type: req.Type})
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível criar a categoria.")
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Data(toCategoryDTOs([]core.Category{c})[0]).
		Success("Categoria criada!", "A categoria foi adicionada com sucesso.").
		Write(w, r)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		BadRequestError("Corpo da requisição inválido.").Write(w, r)
		return
	}
	c := core.Category{ID: chi.URLParam(r, "id"), Name: req.Name, Type: req.Type}
	if err := s.svc.Categories.Update(r.Context(), owner(r), c); err != nil {
		writeError(w, r, err, "Erro", "Não foi possível atualizar a categoria.")
		return
	}
	NewResponse().Success("Categoria atualizada!", "A categoria foi modificada com sucesso.").Write(w, r)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Categories.Delete(r.Context(), owner(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível excluir a categoria.")
		return
	}
	description := "A categoria foi removida com sucesso."
	if res.Policy == services.DeleteCascade && res.RemovedTransactions > 0 {
		description = "A categoria e suas transações foram removidas."
	}
	NewResponse().
		Data(map[string]any{
			"policy":              res.Policy,
			"removedTransactions": res.RemovedTransactions,
		}).
		Success("Categoria excluída!", description).
		Write(w, r)
}
