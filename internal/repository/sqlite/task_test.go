package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/model"
)

func createTestTask(t *testing.T, db *DB, listID int64, title string) *model.Task {
	t.Helper()
	task := &model.Task{ListID: listID, Title: title}
	if err := db.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateTask(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "a@x.com", "Alice")
	list := createTestList(t, db, owner.ID, "Groceries")

	task := &model.Task{
		ListID:      list.ID,
		Title:       "Buy milk",
		Description: "semi-skimmed",
		ImageURL:    "https://example.com/milk.png",
	}
	if err := db.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if task.ID == 0 {
		t.Error("CreateTask() did not set task.ID")
	}
	if task.ListName != "Groceries" {
		t.Errorf("ListName = %q, want %q (copied from the list)", task.ListName, "Groceries")
	}

	found, err := db.GetTask(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if found.Description != "semi-skimmed" {
		t.Errorf("Description = %q, want %q", found.Description, "semi-skimmed")
	}
	if found.ImageURL != "https://example.com/milk.png" {
		t.Errorf("ImageURL = %q, want %q", found.ImageURL, "https://example.com/milk.png")
	}
}

func TestCreateTask_UpdatesTotalTasks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "a@x.com", "Alice")
	list := createTestList(t, db, owner.ID, "Groceries")

	for i, title := range []string{"Eggs", "Milk", "Bread"} {
		createTestTask(t, db, list.ID, title)

		got, err := db.GetList(ctx, list.ID)
		if err != nil {
			t.Fatalf("GetList() error = %v", err)
		}
		if got.TotalTasks == nil {
			t.Fatalf("TotalTasks is NULL after %d creates", i+1)
		}
		if *got.TotalTasks != i+1 {
			t.Errorf("TotalTasks = %d, want %d", *got.TotalTasks, i+1)
		}
	}
}

func TestCreateTask_UnknownList(t *testing.T) {
	db := newTestDB(t)

	err := db.CreateTask(context.Background(), &model.Task{ListID: 99, Title: "lost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("CreateTask() error = %v, want ErrNotFound", err)
	}

	tasks, err := db.TasksByList(context.Background(), 99)
	if err != nil {
		t.Fatalf("TasksByList() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("TasksByList() returned %d tasks, want 0 (insert must roll back)", len(tasks))
	}
}

// =========================================================================
// READ TESTS
// =========================================================================

func TestTasksByList(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "a@x.com", "Alice")
	home := createTestList(t, db, owner.ID, "Home")
	work := createTestList(t, db, owner.ID, "Work")

	createTestTask(t, db, home.ID, "Dishes")
	createTestTask(t, db, home.ID, "Laundry")
	createTestTask(t, db, work.ID, "Report")

	tasks, err := db.TasksByList(context.Background(), home.ID)
	if err != nil {
		t.Fatalf("TasksByList() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("TasksByList() returned %d tasks, want 2", len(tasks))
	}
	if tasks[0].Title != "Dishes" || tasks[1].Title != "Laundry" {
		t.Errorf("TasksByList() titles = [%q %q], want [Dishes Laundry]", tasks[0].Title, tasks[1].Title)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetTask(context.Background(), 5)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetTask() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDeleteTask(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "a@x.com", "Alice")
	list := createTestList(t, db, owner.ID, "Groceries")
	task := createTestTask(t, db, list.ID, "Eggs")

	if err := db.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}

	tasks, err := db.TasksByList(ctx, list.ID)
	if err != nil {
		t.Fatalf("TasksByList() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("TasksByList() after delete returned %d tasks, want 0", len(tasks))
	}
}

func TestDeleteTask_LeavesTotalTasksStale(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "a@x.com", "Alice")
	list := createTestList(t, db, owner.ID, "Groceries")
	task := createTestTask(t, db, list.ID, "Eggs")
	createTestTask(t, db, list.ID, "Milk")

	if err := db.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}

	// The cached count is only refreshed on create, so it still says 2.
	got, err := db.GetList(ctx, list.ID)
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if got.Total() != 2 {
		t.Errorf("TotalTasks after delete = %d, want 2 (not recomputed)", got.Total())
	}
}

func TestDeleteTask_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteTask(context.Background(), 4242)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteTask() error = %v, want ErrNotFound", err)
	}
}
