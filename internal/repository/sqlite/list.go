package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/todolist/internal/apperror"
	"github.com/sakif/todolist/internal/model"
	"github.com/sakif/todolist/internal/repository"
)

var _ repository.ListRepository = (*DB)(nil)

// rowScanner is satisfied by both *sql.Row and *sql.Rows, so one scan helper
// serves single-row lookups and list iteration alike.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateList inserts a list after checking its author exists.
//
// The author check and the INSERT share a transaction so a list can never be
// created for a user id that does not resolve.
func (db *DB) CreateList(ctx context.Context, list *model.List) error {
	list.CreatedAt = time.Now()
	list.TotalTasks = nil

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE id = ?`, list.AuthorID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("sqlite: checking author %d: %w", list.AuthorID, err)
		}
		if exists == 0 {
			return apperror.NotFound("user", list.AuthorID)
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO lists (author_id, list, total_tasks, created_at)
			 VALUES (?, ?, NULL, ?)`,
			list.AuthorID,
			list.Name,
			list.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting list: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading new list id: %w", err)
		}
		list.ID = id
		return nil
	})
}

// GetList retrieves a list by primary key.
// Returns apperror.ErrNotFound if it doesn't exist.
func (db *DB) GetList(ctx context.Context, id int64) (*model.List, error) {
	l, err := scanList(db.conn.QueryRowContext(ctx,
		`SELECT id, author_id, list, total_tasks, created_at FROM lists WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("list", id)
		}
		return nil, fmt.Errorf("sqlite: getting list %d: %w", id, err)
	}
	return l, nil
}

// ListsByAuthor returns every list the user authored, oldest first.
func (db *DB) ListsByAuthor(ctx context.Context, authorID int64) ([]model.List, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, author_id, list, total_tasks, created_at
		 FROM lists
		 WHERE author_id = ?
		 ORDER BY id`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing lists for user %d: %w", authorID, err)
	}
	defer rows.Close()

	lists := []model.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning list row: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating lists: %w", err)
	}

	return lists, nil
}

// DeleteList removes a list together with all of its tasks.
//
// Tasks go first: with foreign keys on, deleting a list that still has tasks
// pointing at it would fail. If the list itself doesn't exist the whole
// transaction rolls back and apperror.ErrNotFound is returned.
func (db *DB) DeleteList(ctx context.Context, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE list_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting tasks of list %d: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting list %d: %w", id, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return apperror.NotFound("list", id)
		}
		return nil
	})
}

func scanList(row rowScanner) (*model.List, error) {
	var (
		l     model.List
		total sql.NullInt64
	)
	if err := row.Scan(&l.ID, &l.AuthorID, &l.Name, &total, &l.CreatedAt); err != nil {
		return nil, err
	}
	if total.Valid {
		n := int(total.Int64)
		l.TotalTasks = &n
	}
	return &l, nil
}
