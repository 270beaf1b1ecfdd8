package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/auth"
	"github.com/sakif/todolist/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeStore is an in-memory implementation of all three repository
// interfaces. Using a fake (not a mock framework) keeps the tests readable:
// you can see exactly what "the database" does.
//
// It mirrors the sqlite behaviour the services rely on: unique emails,
// the list name copied into new tasks, total_tasks refreshed on task
// creation only, and list deletion removing the list's tasks.
type fakeStore struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	lists  map[int64]*model.List
	tasks  map[int64]*model.Task
	nextID int64

	// set to a non-nil error to simulate a database failure
	failUsers error
	failLists error
	failTasks error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[int64]*model.User),
		lists:  make(map[int64]*model.List),
		tasks:  make(map[int64]*model.Task),
		nextID: 1,
	}
}

func (f *fakeStore) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

// --- users ---

func (f *fakeStore) CreateUser(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUsers != nil {
		return f.failUsers
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("email", "email already registered")
		}
	}
	user.ID = f.id()
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUsers != nil {
		return nil, f.failUsers
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUsers != nil {
		return nil, f.failUsers
	}
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

// --- lists ---

func (f *fakeStore) CreateList(ctx context.Context, list *model.List) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLists != nil {
		return f.failLists
	}
	if _, ok := f.users[list.AuthorID]; !ok {
		return apperror.NotFound("user", list.AuthorID)
	}
	list.ID = f.id()
	list.CreatedAt = time.Now()
	copied := *list
	f.lists[list.ID] = &copied
	return nil
}

func (f *fakeStore) GetList(ctx context.Context, id int64) (*model.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLists != nil {
		return nil, f.failLists
	}
	l, ok := f.lists[id]
	if !ok {
		return nil, apperror.NotFound("list", id)
	}
	copied := *l
	return &copied, nil
}

func (f *fakeStore) ListsByAuthor(ctx context.Context, authorID int64) ([]model.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLists != nil {
		return nil, f.failLists
	}
	out := []model.List{}
	for _, l := range f.lists {
		if l.AuthorID == authorID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteList(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLists != nil {
		return f.failLists
	}
	if _, ok := f.lists[id]; !ok {
		return apperror.NotFound("list", id)
	}
	for tid, t := range f.tasks {
		if t.ListID == id {
			delete(f.tasks, tid)
		}
	}
	delete(f.lists, id)
	return nil
}

// --- tasks ---

func (f *fakeStore) CreateTask(ctx context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTasks != nil {
		return f.failTasks
	}
	list, ok := f.lists[task.ListID]
	if !ok {
		return apperror.NotFound("list", task.ListID)
	}
	task.ID = f.id()
	task.ListName = list.Name
	task.CreatedAt = time.Now()
	copied := *task
	f.tasks[task.ID] = &copied

	n := 0
	for _, t := range f.tasks {
		if t.ListID == list.ID {
			n++
		}
	}
	list.TotalTasks = &n
	return nil
}

func (f *fakeStore) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTasks != nil {
		return nil, f.failTasks
	}
	t, ok := f.tasks[id]
	if !ok {
		return nil, apperror.NotFound("task", id)
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) TasksByList(ctx context.Context, listID int64) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTasks != nil {
		return nil, f.failTasks
	}
	out := []model.Task{}
	for _, t := range f.tasks {
		if t.ListID == listID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTasks != nil {
		return f.failTasks
	}
	if _, ok := f.tasks[id]; !ok {
		return apperror.NotFound("task", id)
	}
	delete(f.tasks, id)
	return nil
}

// seedUser stores a user directly, bypassing AuthService.
func (f *fakeStore) seedUser(t *testing.T, email, name string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: name, PasswordHash: "unused"}
	if err := f.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seedUser(%q): %v", email, err)
	}
	return u
}

var errDBDown = errors.New("database is locked")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestAuthService returns an AuthService wired to the fake store.
// 1000 PBKDF2 iterations keep the tests fast.
func newTestAuthService(t *testing.T, store *fakeStore) (*AuthService, *auth.TokenService) {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	return NewAuthService(store, ts, auth.NewPasswordServiceForTest(1000), testLogger()), ts
}

func newTestListAndTaskServices(store *fakeStore, strict bool) (*ListService, *TaskService) {
	lists := NewListService(store, strict, testLogger())
	return lists, NewTaskService(store, lists, testLogger())
}
