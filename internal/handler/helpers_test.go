package handler_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/todolist/internal/auth"
	"github.com/sakif/todolist/internal/handler"
	"github.com/sakif/todolist/internal/model"
	sqliteRepo "github.com/sakif/todolist/internal/repository/sqlite"
	"github.com/sakif/todolist/internal/service"
)

// recordingRenderer implements handler.Renderer without templates. It keeps
// the last page name and data so tests can assert on what a page received.
type recordingRenderer struct {
	name string
	page *handler.Page
	err  error
}

func (r *recordingRenderer) Render(w io.Writer, name string, data any) error {
	if r.err != nil {
		return r.err
	}
	r.name = name
	r.page = data.(*handler.Page)
	_, err := fmt.Fprintf(w, "<%s>", name)
	return err
}

// testEnv wires the real services to an in-memory database. Only the
// renderer is fake.
type testEnv struct {
	db       *sqliteRepo.DB
	tokens   *auth.TokenService
	authSvc  *service.AuthService
	lists    *service.ListService
	tasks    *service.TaskService
	renderer *recordingRenderer

	auth  *handler.AuthHandler
	listH *handler.ListHandler
	taskH *handler.TaskHandler
	pages *handler.Pages
}

func newTestEnv(t *testing.T, strictOwnership bool) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc := service.NewAuthService(db, tokens, auth.NewPasswordServiceForTest(1000), logger)
	lists := service.NewListService(db, strictOwnership, logger)
	tasks := service.NewTaskService(db, lists, logger)

	renderer := &recordingRenderer{}
	pages := handler.NewPages(renderer, lists, logger)

	return &testEnv{
		db:       db,
		tokens:   tokens,
		authSvc:  authSvc,
		lists:    lists,
		tasks:    tasks,
		renderer: renderer,
		auth:     handler.NewAuthHandler(authSvc, pages, logger),
		listH:    handler.NewListHandler(lists, tasks, pages, logger),
		taskH:    handler.NewTaskHandler(lists, tasks, pages, logger),
		pages:    pages,
	}
}

// register creates an account through the service.
func (e *testEnv) register(t *testing.T, email, name string) *model.User {
	t.Helper()
	result, err := e.authSvc.Register(context.Background(), email, "pw1", name)
	require.NoError(t, err)
	return result.User
}

func (e *testEnv) createList(t *testing.T, owner *model.User, name string) *model.List {
	t.Helper()
	list, err := e.lists.Create(context.Background(), owner, name)
	require.NoError(t, err)
	return list
}

func (e *testEnv) createTask(t *testing.T, owner *model.User, listID int64, title string) *model.Task {
	t.Helper()
	task, err := e.tasks.Create(context.Background(), owner, listID, title, "", "")
	require.NoError(t, err)
	return task
}

func get(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func post(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// as puts user in the request context, as auth.RequireSession would.
func as(req *http.Request, user *model.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), user))
}

// withParams sets chi URL parameters, as the router would. Pairs of
// name, value.
func withParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// cookie returns the named cookie set on the response, or nil.
func cookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
