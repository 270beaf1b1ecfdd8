package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/form"
	"github.com/sakif/todolist/internal/model"
	"github.com/sakif/todolist/internal/service"
)

// TaskHandler serves the new-task form and task deletion. Every route is
// behind auth.RequireSession.
type TaskHandler struct {
	lists  *service.ListService
	tasks  *service.TaskService
	pages  *Pages
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(lists *service.ListService, tasks *service.TaskService, pages *Pages, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		lists:  lists,
		tasks:  tasks,
		pages:  pages,
		logger: logger,
	}
}

// HandleNewTaskForm shows the form for adding a task to a list.
//
// HTTP: GET /{listName}/{listID}
//
// The {listName} segment only makes the URL readable. The list is looked up
// by id, and the name stored on new tasks comes from the database.
func (h *TaskHandler) HandleNewTaskForm(w http.ResponseWriter, r *http.Request) {
	_, list, ok := h.loadList(w, r)
	if !ok {
		return
	}

	h.pages.render(w, r, http.StatusOK, PageNewTask, &Page{
		Title: "New Task",
		Form:  form.NewTask{},
		List:  list,
	})
}

// HandleNewTask adds a task and shows the list it was added to.
//
// HTTP: POST /{listName}/{listID}
func (h *TaskHandler) HandleNewTask(w http.ResponseWriter, r *http.Request) {
	user, list, ok := h.loadList(w, r)
	if !ok {
		return
	}

	f, err := form.ParseNewTask(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := form.Validate(f); err != nil {
		h.invalidNewTask(w, r, list, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), user, list.ID, f.Title, f.Description, f.ImageURL)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			h.invalidNewTask(w, r, list, err)
			return
		}
		h.pages.fail(w, r, err)
		return
	}

	if name := chi.URLParam(r, "listName"); name != task.ListName {
		h.logger.Debug("list name in URL differs from stored name",
			slog.String("url", name),
			slog.String("stored", task.ListName),
		)
	}

	redirect(w, r, fmt.Sprintf("/%d", list.ID))
}

func (h *TaskHandler) invalidNewTask(w http.ResponseWriter, r *http.Request, list *model.List, err error) {
	errs, ok := formErrors(err)
	if !ok {
		h.pages.fail(w, r, err)
		return
	}
	h.pages.render(w, r, http.StatusUnprocessableEntity, PageNewTask, &Page{
		Title:  "New Task",
		Form:   form.NewTask{},
		Errors: errs,
		List:   list,
	})
}

// HandleDeleteTask deletes a task and shows the list it belonged to.
//
// HTTP: GET /delete_task/{taskID}
func (h *TaskHandler) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	taskID, err := idParam(r, "taskID")
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}

	task, err := h.tasks.Delete(r.Context(), user, taskID)
	if err != nil {
		h.pages.fail(w, r, err)
		return
	}

	redirect(w, r, fmt.Sprintf("/%d", task.ListID))
}

// loadList resolves {listID} for the current user. On failure the response
// has already been written.
func (h *TaskHandler) loadList(w http.ResponseWriter, r *http.Request) (*model.User, *model.List, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return nil, nil, false
	}

	listID, err := idParam(r, "listID")
	if err != nil {
		h.pages.fail(w, r, err)
		return nil, nil, false
	}

	list, err := h.lists.Get(r.Context(), user, listID)
	if err != nil {
		h.pages.fail(w, r, err)
		return nil, nil, false
	}
	return user, list, true
}
