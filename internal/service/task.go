package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/model"
	"github.com/sakif/todolist/internal/repository"
)

const (
	MaxTaskTitleLength   = 100
	MaxDescriptionLength = 150
	MaxImageURLLength    = 300
)

// TaskService handles business logic for tasks.
//
// It goes through ListService for the parent list, so the same ownership
// rule applies to tasks as to the lists that hold them.
type TaskService struct {
	repo   repository.TaskRepository
	lists  *ListService
	logger *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(repo repository.TaskRepository, lists *ListService, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		lists:  lists,
		logger: logger,
	}
}

// Create adds a task to a list.
//
// The title is required; description and image URL are optional. The
// repository copies the list's current name into the task and refreshes the
// list's total_tasks in the same transaction as the insert.
func (s *TaskService) Create(ctx context.Context, viewer model.Identifiable, listID int64, title, description, imageURL string) (*model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("task", "task title is required")
	}
	if len([]rune(title)) > MaxTaskTitleLength {
		return nil, apperror.ValidationFailed("task",
			fmt.Sprintf("task title must be %d characters or less", MaxTaskTitleLength))
	}
	description = strings.TrimSpace(description)
	if len([]rune(description)) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}
	imageURL = strings.TrimSpace(imageURL)
	if len(imageURL) > MaxImageURLLength {
		return nil, apperror.ValidationFailed("img",
			fmt.Sprintf("image URL must be %d characters or less", MaxImageURLLength))
	}

	if _, err := s.lists.Get(ctx, viewer, listID); err != nil {
		return nil, err
	}

	task := &model.Task{
		ListID:      listID,
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			slog.Int64("listID", listID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.logger.Info("task created",
		slog.Int64("id", task.ID),
		slog.Int64("listID", task.ListID),
	)

	return task, nil
}

// ListForList returns every task in the list.
func (s *TaskService) ListForList(ctx context.Context, listID int64) ([]model.Task, error) {
	tasks, err := s.repo.TasksByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// Delete removes a task and returns it, so the caller knows which list it
// belonged to. The list's total_tasks is not recomputed.
func (s *TaskService) Delete(ctx context.Context, viewer model.Identifiable, id int64) (*model.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.lists.strictOwnership {
		if _, err := s.lists.Get(ctx, viewer, task.ListID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("task deleted",
		slog.Int64("id", id),
		slog.Int64("listID", task.ListID),
	)
	return task, nil
}
