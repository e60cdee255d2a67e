package http

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"mealplan/internal/importer"
	applog "mealplan/internal/log"
)

const (
	sourceCSV  = "csv"
	sourceChat = "chat"
)

type importResponse struct {
	importer.ImportResult
	Imported int  `json:"imported"`
	Replaced bool `json:"replaced"`
	Preview  bool `json:"preview"`
}

type chatImportResponse struct {
	importer.ChatResult
	Imported int  `json:"imported"`
	Preview  bool `json:"preview"`
}

// handleImportCSV accepts the CSV as the raw body or as the "file" field of
// a multipart form. A file with any invalid row is rejected as a whole.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	params, err := ParseImportParams(r.URL.Query(), s.service.WeekStart(), s.now())
	if err != nil {
		writeError(w, r, err, applog.OpImport)
		return
	}

	body, err := s.csvBody(w, r)
	if err != nil {
		writeError(w, r, err, applog.OpImport)
		return
	}
	defer body.Close()

	result := importer.ParseCSV(body, params.Options)
	resp := importResponse{ImportResult: result, Preview: params.Preview}
	if !result.Success {
		s.events.LogImport(r.Context(), sourceCSV, 0, len(result.Errors), len(result.Warnings), params.Replace)
		UnprocessableEntityError("CSV import failed", resp).Write(w)
		return
	}
	if params.Preview {
		NewJSONResponse().Body(resp).Write(w)
		return
	}

	if err := s.service.ImportMeals(r.Context(), result.Meals, params.Replace); err != nil {
		writeError(w, r, err, applog.OpImport)
		return
	}
	s.appMetrics.addImported(len(result.Meals))
	s.events.LogImport(r.Context(), sourceCSV, len(result.Meals), 0, len(result.Warnings), params.Replace)

	resp.Imported = len(result.Meals)
	resp.Replaced = params.Replace
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) csvBody(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	limit := s.maxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.Body, nil
	}
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: missing file field", ErrMalformedBody)
	}
	return file, nil
}

// handleImportChat takes {"text": "..."} holding an assistant reply and
// adds the meals from its JSON block to the plan.
func (s *Server) handleImportChat(w http.ResponseWriter, r *http.Request) {
	params, err := ParseImportParams(r.URL.Query(), s.service.WeekStart(), s.now())
	if err != nil {
		writeError(w, r, err, applog.OpImport)
		return
	}
	p := NewRequestBodyParser(w, r, s.maxBodyBytes)
	if err := p.Parse(); err != nil {
		writeError(w, r, err, applog.OpImport)
		return
	}
	text := p.Result("text").String()
	if strings.TrimSpace(text) == "" {
		writeError(w, r, fmt.Errorf("%w: text is required", ErrMalformedBody), applog.OpImport)
		return
	}

	result := importer.ParseChatResponse(text, params.Options)
	resp := chatImportResponse{ChatResult: result, Preview: params.Preview}
	if params.Preview || len(result.Meals) == 0 {
		NewJSONResponse().Body(resp).Write(w)
		return
	}

	if err := s.service.ImportMeals(r.Context(), result.Meals, params.Replace); err != nil {
		writeError(w, r, err, applog.OpImport)
		return
	}
	s.appMetrics.addImported(len(result.Meals))
	s.events.LogImport(r.Context(), sourceChat, len(result.Meals), len(result.Rejected), 0, params.Replace)

	resp.Imported = len(result.Meals)
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleSampleCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meal-plan-sample.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, importer.SampleCSV())
}
