package handler

// RESPONSE HELPERS:
// These functions standardise how every handler finishes a request.
//
// WHY HELPERS?
// Every page needs the same bookkeeping before it can be rendered: pop the
// flash messages, look up the signed-in user's lists for the sidebar, set the
// content type, and only then write the status. With helpers a handler ends in
// one line:
//   h.pages.render(w, r, http.StatusOK, PageHome, &Page{...})
//   h.pages.fail(w, r, err)

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/auth"
	"github.com/sakif/todolist/internal/flash"
	"github.com/sakif/todolist/internal/form"
	"github.com/sakif/todolist/internal/model"
	"github.com/sakif/todolist/internal/service"
)

// Page is the data every template receives.
//
// User and AllLists are filled in by render for signed-in visitors; the
// handler supplies the page-specific fields.
type Page struct {
	Title    string
	User     *model.User
	AllLists []model.List
	Flashes  []string

	Form   any         // the empty form struct for this page
	Errors form.Errors // field name → message, after a failed submit

	List     *model.List
	Tasks    []model.Task
	LenTasks int
}

// Pages renders pages and maps errors to responses.
// All handlers share one instance.
type Pages struct {
	renderer Renderer
	lists    *service.ListService
	logger   *slog.Logger
}

// NewPages creates the shared page renderer.
func NewPages(renderer Renderer, lists *service.ListService, logger *slog.Logger) *Pages {
	return &Pages{
		renderer: renderer,
		lists:    lists,
		logger:   logger,
	}
}

// render writes the named page with the given status.
//
// BUFFER FIRST:
// The template is executed into a buffer, not straight into w. If execution
// fails halfway, nothing has been sent yet and we can still answer with a
// clean 500 instead of half a page followed by an error.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, page *Page) {
	page.Flashes = flash.Pop(w, r)

	if user, ok := auth.UserFromContext(r.Context()); ok {
		page.User = user
		if page.AllLists == nil {
			lists, err := p.lists.ListForUser(r.Context(), user)
			if err != nil {
				p.serverError(w, r, err)
				return
			}
			page.AllLists = lists
		}
	}

	var buf bytes.Buffer
	if err := p.renderer.Render(&buf, name, page); err != nil {
		p.logger.Error("failed to render template",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Set headers BEFORE WriteHeader — once the status is sent, header
	// changes are silently ignored.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		p.logger.Debug("client went away mid-response", slog.String("error", err.Error()))
	}
}

// fail maps a service error to a response.
//
// ERROR MAPPING:
//
//	apperror.ErrNotFound  → 404 page
//	apperror.ErrForbidden → 404 page (another user's list looks like no list at all)
//	anything else         → 500, logged
//
// Validation, conflict and unauthorized errors never reach here: the handlers
// that can produce them turn them into a re-rendered form or a flash+redirect.
func (p *Pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound), errors.Is(err, apperror.ErrForbidden):
		p.notFound(w, r)
	default:
		p.serverError(w, r, err)
	}
}

// HandleNotFound is the router's fallback for unknown paths.
func (p *Pages) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	p.notFound(w, r)
}

func (p *Pages) notFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusNotFound, PageNotFound, &Page{Title: "Not Found"})
}

// serverError logs the real error and sends a generic 500.
// NEVER expose internal error details to the client — the raw message might
// contain SQL or file paths.
func (p *Pages) serverError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// redirect sends a 303 See Other: after a POST the browser follows with a GET,
// so a refresh doesn't resubmit the form.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// currentUser returns the signed-in user. Every route that calls it is behind
// auth.RequireSession, so a missing user means the router was wired wrong —
// send the visitor to the login page rather than panic.
func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		redirect(w, r, "/")
		return nil, false
	}
	return user, true
}

// idParam reads a numeric URL parameter. A value that isn't a positive
// integer can't name a row, so it is reported as NotFound.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NotFound(name, raw)
	}
	return id, nil
}

// fieldError turns a service-level validation error into form errors so it
// can be shown next to the field like any other.
func fieldError(err error) (form.Errors, bool) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrValidation) {
		return nil, false
	}
	return form.Errors{appErr.Field: appErr.Message}, true
}
