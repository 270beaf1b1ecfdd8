// Package repository declares the storage interfaces the service layer
// depends on. internal/repository/sqlite provides the implementation; service
// tests provide in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/todolist/internal/model"
)

type UserRepository interface {
	// CreateUser inserts a user and fills in ID and CreatedAt.
	// Returns apperror.ErrConflict if the email is already taken.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

type ListRepository interface {
	// CreateList returns apperror.ErrNotFound if list.AuthorID names no user.
	CreateList(ctx context.Context, list *model.List) error
	GetList(ctx context.Context, id int64) (*model.List, error)
	ListsByAuthor(ctx context.Context, authorID int64) ([]model.List, error)
	// DeleteList removes the list and all of its tasks atomically.
	DeleteList(ctx context.Context, id int64) error
}

type TaskRepository interface {
	// CreateTask inserts the task, copying the parent list's current name into
	// task.ListName, and stores the list's new task count in total_tasks —
	// all in one transaction.
	CreateTask(ctx context.Context, task *model.Task) error
	GetTask(ctx context.Context, id int64) (*model.Task, error)
	TasksByList(ctx context.Context, listID int64) ([]model.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}
