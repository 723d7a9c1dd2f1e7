package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/hsncheck/internal/core"
	"github.com/JonMunkholm/hsncheck/internal/logging"
	"github.com/JonMunkholm/hsncheck/internal/web/templates"
)

// maxQueryBody caps JSON and form bodies of validation requests.
const maxQueryBody = 64 << 10

// validateRequest is the body of POST /api/validate.
type validateRequest struct {
	Input string `json:"input" validate:"required,max=4096"`
}

// validateResponse is the reply of POST /api/validate.
type validateResponse struct {
	Report  string        `json:"report"`
	Results []core.Result `json:"results"`
}

// chatForm is the form posted by the chat page.
type chatForm struct {
	Message string `validate:"required,max=4096"`
}

// handleIndex renders the chat page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderChatPage(w, r, nil)
}

// handleChat answers one chat message.
// HTMX requests get the exchange fragment; plain form posts get the full page.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBody)
	if err := r.ParseForm(); err != nil {
		err = bodyError(err, errInvalidForm)
		s.respondError(w, r, err, statusFor(err))
		return
	}

	form := chatForm{Message: r.PostFormValue("message")}
	if err := s.checkInput(form); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	exchange := templates.Exchange{
		Message: form.Message,
		Report:  s.service.Process(r.Context(), form.Message),
	}

	if !isHTMX(r) {
		s.renderChatPage(w, r, []templates.Exchange{exchange})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ChatExchange(exchange).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render chat exchange", "error", err)
	}
}

func (s *Server) renderChatPage(w http.ResponseWriter, r *http.Request, exchanges []templates.Exchange) {
	dash := s.service.Dashboard()
	data := templates.ChatPageData{
		HSNRecords: dash.Version.HSNRecords,
		SACRecords: dash.Version.SACRecords,
		LastUpdate: dash.LastUpdate,
		Exchanges:  exchanges,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ChatPage(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render chat page", "error", err)
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHelp returns the usage text.
func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"help": core.HelpText})
}

// handleValidate checks comma-separated codes and returns the report with
// structured results.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxQueryBody)

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err = bodyError(err, errInvalidJSON)
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if err := s.checkInput(req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if core.IsHelp(req.Input) {
		writeJSON(w, r, http.StatusOK, validateResponse{Report: core.HelpText, Results: []core.Result{}})
		return
	}

	results, err := s.service.CheckAll(r.Context(), req.Input)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Debug("codes checked", "count", len(results))
	writeJSON(w, r, http.StatusOK, validateResponse{
		Report:  core.FormatReport(results),
		Results: results,
	})
}

// handleCode returns the structured result for one code.
func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if unescaped, err := url.PathUnescape(code); err == nil {
		code = unescaped
	}

	writeJSON(w, r, http.StatusOK, s.service.Check(r.Context(), code))
}

// checkInput validates a request struct and maps failures to input errors.
func (s *Server) checkInput(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "required":
			return errInputRequired
		case "max":
			return fmt.Errorf("%w: at most %s characters", errInputTooLong, verrs[0].Param())
		}
	}
	return fmt.Errorf("invalid request: %w", err)
}

// bodyError classifies a body read or decode failure.
func bodyError(err, kind error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", errBodyTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", kind, err)
}
