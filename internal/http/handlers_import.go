package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"finsimples/internal/services"
	"finsimples/internal/sheets"
	sheetcsv "finsimples/internal/sheets/csv"
	sheetmem "finsimples/internal/sheets/memory"
)

var (
	errUnknownSource = errors.New("unknown import source")
	errBadBody       = errors.New("malformed request body")
)

// importInput is a parsed import or preview request.
type importInput struct {
	source  sheets.TableReader
	mapping mappingDTO
	limit   int
}

// readImportInput accepts either a multipart upload with a "file" part and
// the mapping as form fields, or a JSON importRequest.
func (s *Server) readImportInput(w http.ResponseWriter, r *http.Request) (importInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.readMultipartImport(w, r)
	}

	var req importRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		return importInput{}, fmt.Errorf("%w: %w", errBadBody, err)
	}
	in := importInput{mapping: req.Mapping}

	switch strings.ToLower(strings.TrimSpace(req.Source)) {
	case "", "sample":
		in.source = sheetmem.Sample()
	case "csv":
		src, err := sheetcsv.New([]byte(req.Content), s.cfg.ImportMaxRows)
		if err != nil {
			return importInput{}, err
		}
		in.source = src
	case "google":
		if s.cfg.OpenSheet == nil {
			return importInput{}, errSheetsDisabled
		}
		src, err := s.cfg.OpenSheet(r.Context(), req.SpreadsheetID, req.Range)
		if err != nil {
			return importInput{}, err
		}
		in.source = src
	default:
		return importInput{}, fmt.Errorf("%w: %q", errUnknownSource, req.Source)
	}
	return in, nil
}

func (s *Server) readMultipartImport(w http.ResponseWriter, r *http.Request) (importInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		if errors.Is(err, multipart.ErrMessageTooLarge) {
			return importInput{}, &http.MaxBytesError{Limit: s.cfg.MaxUploadBytes}
		}
		return importInput{}, fmt.Errorf("%w: %w", errBadBody, err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return importInput{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return importInput{}, err
	}
	src, err := sheetcsv.New(data, s.cfg.ImportMaxRows)
	if err != nil {
		return importInput{}, err
	}

	limit, _ := strconv.Atoi(r.FormValue("limit"))
	return importInput{
		source: src,
		mapping: mappingDTO{
			Date:        r.FormValue("date"),
			Description: r.FormValue("description"),
			Amount:      r.FormValue("amount"),
			Category:    r.FormValue("category"),
			Type:        r.FormValue("type"),
		},
		limit: limit,
	}, nil
}

// writeImportInputError reports a request that did not name a readable source.
func writeImportInputError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		ErrorResponse(http.StatusRequestEntityTooLarge, "Arquivo muito grande",
			fmt.Sprintf("O limite é de %d bytes.", maxErr.Limit)).Write(w, r)
	case errors.Is(err, errUnknownSource), errors.Is(err, errBadBody), errors.Is(err, http.ErrMissingFile):
		BadRequestError("Informe um arquivo CSV, uma planilha ou o exemplo.").Write(w, r)
	default:
		writeError(w, r, err, "Formato inválido", "Não foi possível ler os dados enviados.")
	}
}

func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	in, err := s.readImportInput(w, r)
	if err != nil {
		writeImportInputError(w, r, err)
		return
	}
	if in.limit == 0 {
		in.limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	}

	table, err := s.svc.Import.Preview(r.Context(), in.source, in.limit)
	if err != nil {
		writeError(w, r, err, "Formato inválido", "Não foi possível ler os dados enviados.")
		return
	}
	NewResponse().
		Data(toTableDTO(table)).
		Success("Arquivo carregado!", "Confira as colunas e mapeie os campos.").
		Write(w, r)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	in, err := s.readImportInput(w, r)
	if err != nil {
		writeImportInputError(w, r, err)
		return
	}

	res, err := s.svc.Import.Import(r.Context(), owner(r), in.source, in.mapping.mapping())
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			NewResponse().
				Status(http.StatusUnprocessableEntity).
				Error(ve.Error(), ve.Field).
				Failure("Mapeamento incompleto", "Mapeie pelo menos Data, Descrição e Valor.").
				Write(w, r)
			return
		}
		writeError(w, r, err, "Erro", "Não foi possível importar as transações.")
		return
	}

	out := importResultDTO{
		Imported:     len(res.Imported),
		Transactions: toTransactionDTOs(res.Imported),
		Skipped:      make([]skippedRowDTO, len(res.Skipped)),
	}
	for i, sk := range res.Skipped {
		out.Skipped[i] = skippedRowDTO{Row: sk.Row, Reason: sk.Reason}
	}
	NewResponse().
		Data(out).
		Success("Importação concluída!",
			fmt.Sprintf("%d transações foram importadas com sucesso, %d linhas ignoradas.", out.Imported, len(out.Skipped))).
		Write(w, r)
}

func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.Import.Template()
	if err != nil {
		writeError(w, r, err, "Erro", "Não foi possível gerar o modelo.")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="modelo-importacao.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
