// Package form defines the four HTML forms the application accepts and their
// server-side validation.
//
// Each form is a plain struct filled from the request's POST body. Validation
// rules live in `validate:"..."` struct tags and are enforced by
// go-playground/validator.
//
// On failure, Validate returns Errors: a map from the form field name (as it
// appears in the HTML, e.g. "task") to a message for that field.
package form

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// validate is shared: validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the HTML field name (the `form` tag), not the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// notblank ships with validator but is not registered by default.
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("form: registering notblank: %v", err))
	}

	return v
}

// Register is the sign-up form. The email only has to be present: the
// address is an account name here, and nothing is ever sent to it.
type Register struct {
	Email    string `form:"email"    validate:"required"`
	Password string `form:"password" validate:"required"`
	Name     string `form:"name"     validate:"required,notblank"`
}

// Login is the sign-in form. Email syntax isn't checked here — an unknown
// address simply fails the lookup.
type Login struct {
	Email    string `form:"email"    validate:"required"`
	Password string `form:"password" validate:"required"`
}

// NewList is the form for creating a list.
//
// notblank is stricter than required: "   " is not a list name.
type NewList struct {
	Name string `form:"list" validate:"required,notblank,max=50"`
}

// NewTask is the form for adding a task to a list.
type NewTask struct {
	Title       string `form:"task"        validate:"required,notblank,max=100"`
	Description string `form:"description" validate:"max=150"`
	ImageURL    string `form:"img"         validate:"omitempty,url,startswith=http,max=300"`
}

// Errors maps an HTML field name to its validation message.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return "form: " + strings.Join(parts, "; ")
}

// ParseRegister reads a Register form from the request body.
func ParseRegister(r *http.Request) (Register, error) {
	if err := r.ParseForm(); err != nil {
		return Register{}, fmt.Errorf("form: parsing register form: %w", err)
	}
	return Register{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
	}, nil
}

// ParseLogin reads a Login form from the request body.
func ParseLogin(r *http.Request) (Login, error) {
	if err := r.ParseForm(); err != nil {
		return Login{}, fmt.Errorf("form: parsing login form: %w", err)
	}
	return Login{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}, nil
}

// ParseNewList reads a NewList form from the request body.
func ParseNewList(r *http.Request) (NewList, error) {
	if err := r.ParseForm(); err != nil {
		return NewList{}, fmt.Errorf("form: parsing list form: %w", err)
	}
	return NewList{Name: strings.TrimSpace(r.PostForm.Get("list"))}, nil
}

// ParseNewTask reads a NewTask form from the request body.
func ParseNewTask(r *http.Request) (NewTask, error) {
	if err := r.ParseForm(); err != nil {
		return NewTask{}, fmt.Errorf("form: parsing task form: %w", err)
	}
	return NewTask{
		Title:       strings.TrimSpace(r.PostForm.Get("task")),
		Description: strings.TrimSpace(r.PostForm.Get("description")),
		ImageURL:    strings.TrimSpace(r.PostForm.Get("img")),
	}, nil
}

// Validate checks a form struct against its tags.
// Returns nil when the form is valid, or Errors describing every bad field.
func Validate(f any) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: a programming mistake (non-struct passed in).
		return fmt.Errorf("form: %w", err)
	}

	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

// message turns a failed rule into text for the page.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "url", "startswith":
		return "Invalid URL."
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}
