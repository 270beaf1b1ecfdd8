package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/auth"
	"github.com/sakif/todolist/internal/flash"
	"github.com/sakif/todolist/internal/form"
	"github.com/sakif/todolist/internal/service"
)

// AuthHandler serves the public pages: register, login and logout.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegisterForm / HandleRegister → GET/POST /register
//   - HandleLoginForm / HandleLogin       → GET/POST /
//   - HandleLogout                        → GET /logout
//
// DEPENDENCY CHAIN:
//   - auth  *service.AuthService → credential checks, session tokens
//   - pages *Pages               → rendering and error mapping
type AuthHandler struct {
	auth   *service.AuthService
	pages  *Pages
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, pages *Pages, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		pages:  pages,
		logger: logger,
	}
}

// HandleRegisterForm shows the sign-up page.
//
// HTTP: GET /register
func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, PageRegister, &Page{
		Title: "Register",
		Form:  form.Register{},
	})
}

// HandleRegister creates an account.
//
// HTTP: POST /register
//
// FLOW:
//  1. Validate the form — on failure re-render it with field messages
//  2. Register — a taken email flashes a message and sends the visitor to login
//  3. Set the session cookie and redirect to the login page
//
// Step 3 lands on "/" rather than "/home" even though the session is already
// open; the login page is where new accounts have always been sent.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	f, err := form.ParseRegister(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := form.Validate(f); err != nil {
		h.invalidRegister(w, r, err)
		return
	}

	result, err := h.auth.Register(r.Context(), f.Email, f.Password, f.Name)
	if err != nil {
		var appErr *apperror.AppError
		switch {
		case errors.Is(err, apperror.ErrConflict) && errors.As(err, &appErr):
			flash.Set(w, appErr.Message)
			redirect(w, r, "/")
		case errors.Is(err, apperror.ErrValidation):
			h.invalidRegister(w, r, err)
		default:
			h.pages.fail(w, r, err)
		}
		return
	}

	auth.SetSessionCookie(w, result.Token)
	redirect(w, r, "/")
}

func (h *AuthHandler) invalidRegister(w http.ResponseWriter, r *http.Request, err error) {
	errs, ok := formErrors(err)
	if !ok {
		h.pages.fail(w, r, err)
		return
	}
	h.pages.render(w, r, http.StatusUnprocessableEntity, PageRegister, &Page{
		Title:  "Register",
		Form:   form.Register{},
		Errors: errs,
	})
}

// HandleLoginForm shows the login page.
//
// HTTP: GET /
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, PageLogin, &Page{
		Title: "Log In",
		Form:  form.Login{},
	})
}

// HandleLogin checks credentials.
//
// HTTP: POST /
//
// An unknown email and a wrong password both flash their own message and
// redirect back to this page. Success sets the session cookie and goes home.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	f, err := form.ParseLogin(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := form.Validate(f); err != nil {
		errs, ok := formErrors(err)
		if !ok {
			h.pages.fail(w, r, err)
			return
		}
		h.pages.render(w, r, http.StatusUnprocessableEntity, PageLogin, &Page{
			Title:  "Log In",
			Form:   form.Login{},
			Errors: errs,
		})
		return
	}

	result, err := h.auth.Login(r.Context(), f.Email, f.Password)
	if err != nil {
		var appErr *apperror.AppError
		if errors.Is(err, apperror.ErrUnauthorized) && errors.As(err, &appErr) {
			flash.Set(w, appErr.Message)
			redirect(w, r, "/")
			return
		}
		h.pages.fail(w, r, err)
		return
	}

	auth.SetSessionCookie(w, result.Token)
	redirect(w, r, "/home")
}

// HandleLogout ends the session.
//
// HTTP: GET /logout
//
// Sessions are stateless tokens, so "logout" means deleting the cookie. The
// token itself stays valid until it expires, but the browser no longer has it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	redirect(w, r, "/")
}

// formErrors accepts both form.Validate failures and service validation
// errors.
func formErrors(err error) (form.Errors, bool) {
	var errs form.Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return fieldError(err)
}
