package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/form"
	"github.com/sakif/todolist/internal/service"
)

// ListHandler serves the home page and list pages. Every route is behind
// auth.RequireSession.
type ListHandler struct {
	lists  *service.ListService
	tasks  *service.TaskService
	pages  *Pages
	logger *slog.Logger
}

// NewListHandler creates a ListHandler.
func NewListHandler(lists *service.ListService, tasks *service.TaskService, pages *Pages, logger *slog.Logger) *ListHandler {
	return &ListHandler{
		lists:  lists,
		tasks:  tasks,
		pages:  pages,
		logger: logger,
	}
}

// HandleHome shows the signed-in user's lists.
//
// HTTP: GET /home
func (h *ListHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	lists, err := h.lists.ListForUser(r.Context(), user)
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}

	h.pages.render(w, r, http.StatusOK, PageHome, &Page{
		Title:    "My Lists",
		AllLists: lists,
	})
}

// HandleNewListForm shows the new-list form.
//
// HTTP: GET /new_list
func (h *ListHandler) HandleNewListForm(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, PageNewList, &Page{
		Title: "New List",
		Form:  form.NewList{},
	})
}

// HandleNewList creates a list and goes back home.
//
// HTTP: POST /new_list
func (h *ListHandler) HandleNewList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	f, err := form.ParseNewList(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := form.Validate(f); err != nil {
		h.invalidNewList(w, r, err)
		return
	}

	if _, err := h.lists.Create(r.Context(), user, f.Name); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			h.invalidNewList(w, r, err)
			return
		}
		h.pages.fail(w, r, err)
		return
	}

	redirect(w, r, "/home")
}

func (h *ListHandler) invalidNewList(w http.ResponseWriter, r *http.Request, err error) {
	errs, ok := formErrors(err)
	if !ok {
		h.pages.fail(w, r, err)
		return
	}
	h.pages.render(w, r, http.StatusUnprocessableEntity, PageNewList, &Page{
		Title:  "New List",
		Form:   form.NewList{},
		Errors: errs,
	})
}

// HandleShowList shows one list and its tasks.
//
// HTTP: GET /{listID}
func (h *ListHandler) HandleShowList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	listID, err := idParam(r, "listID")
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}

	list, err := h.lists.Get(r.Context(), user, listID)
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}

	tasks, err := h.tasks.ListForList(r.Context(), list.ID)
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}

	h.pages.render(w, r, http.StatusOK, PageShowList, &Page{
		Title:    list.Name,
		List:     list,
		Tasks:    tasks,
		LenTasks: len(tasks),
	})
}

// HandleDeleteList deletes a list with all its tasks and goes back home.
//
// HTTP: GET /delete_list/{listID}
func (h *ListHandler) HandleDeleteList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	listID, err := idParam(r, "listID")
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}

	if err := h.lists.Delete(r.Context(), user, listID); err != nil {
		h.pages.fail(w, r, err)
		return
	}

	redirect(w, r, "/home")
}
