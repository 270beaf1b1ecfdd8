// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses forms, renders pages, redirects
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services take repository INTERFACES, not *sqlite.DB, so tests can hand them
// in-memory fakes and the service never imports the sqlite package.
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

// MaxListNameLength matches the lists.list column width.
const MaxListNameLength = 50

// ListService handles business logic for lists.
//
// OWNERSHIP:
// Every list has one author. The home page only ever shows the viewer's own
// lists. Direct access by id (show, add task, delete) does NOT check the
// author unless strictOwnership is on — in that mode another user's list
// answers apperror.ErrForbidden.
type ListService struct {
	repo            repository.ListRepository
	strictOwnership bool
	logger          *slog.Logger
}

// NewListService creates a ListService. strictOwnership turns on the author
// check for by-id access.
func NewListService(repo repository.ListRepository, strictOwnership bool, logger *slog.Logger) *ListService {
	return &ListService{
		repo:            repo,
		strictOwnership: strictOwnership,
		logger:          logger,
	}
}

// Create adds a list for owner. Names need not be unique, even per owner.
func (s *ListService) Create(ctx context.Context, owner model.Identifiable, name string) (*model.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("list", "list name is required")
	}
	if len([]rune(name)) > MaxListNameLength {
		return nil, apperror.ValidationFailed("list",
			fmt.Sprintf("list name must be %d characters or less", MaxListNameLength))
	}

	list := &model.List{AuthorID: owner.Identity(), Name: name}
	if err := s.repo.CreateList(ctx, list); err != nil {
		return nil, fmt.Errorf("creating list: %w", err)
	}

	s.logger.Info("list created",
		slog.Int64("id", list.ID),
		slog.Int64("authorID", list.AuthorID),
		slog.String("name", list.Name),
	)

	return list, nil
}

// ListForUser returns all lists authored by owner.
func (s *ListService) ListForUser(ctx context.Context, owner model.Identifiable) ([]model.List, error) {
	lists, err := s.repo.ListsByAuthor(ctx, owner.Identity())
	if err != nil {
		s.logger.Error("failed to list lists",
			slog.Int64("authorID", owner.Identity()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing lists: %w", err)
	}
	return lists, nil
}

// Get returns a list by id. apperror.ErrNotFound if it doesn't exist;
// apperror.ErrForbidden if strictOwnership is on and viewer isn't the author.
func (s *ListService) Get(ctx context.Context, viewer model.Identifiable, id int64) (*model.List, error) {
	list, err := s.repo.GetList(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(viewer, list); err != nil {
		return nil, err
	}

	return list, nil
}

// Delete removes a list and every task in it.
func (s *ListService) Delete(ctx context.Context, viewer model.Identifiable, id int64) error {
	if s.strictOwnership {
		if _, err := s.Get(ctx, viewer, id); err != nil {
			return err
		}
	}

	if err := s.repo.DeleteList(ctx, id); err != nil {
		return err
	}

	s.logger.Info("list deleted", slog.Int64("id", id))
	return nil
}

func (s *ListService) authorize(viewer model.Identifiable, list *model.List) error {
	if !s.strictOwnership || list.OwnedBy(viewer) {
		return nil
	}
	s.logger.Warn("list access denied",
		slog.Int64("listID", list.ID),
		slog.Int64("authorID", list.AuthorID),
	)
	return apperror.Forbidden(fmt.Sprintf("list %d belongs to another user", list.ID))
}
