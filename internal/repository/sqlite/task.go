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

var _ repository.TaskRepository = (*DB)(nil)

// CreateTask inserts a task and refreshes the parent list's cached count.
//
// ONE TRANSACTION, FOUR STATEMENTS:
//  1. read the parent list's name (NotFound if the list is gone)
//  2. INSERT the task with that name copied into tasks.list
//  3. COUNT the list's tasks, now including the new row
//  4. store the count in lists.total_tasks
//
// Either all of it commits or none of it does — the count can never be
// written for a task that failed to insert.
func (db *DB) CreateTask(ctx context.Context, task *model.Task) error {
	task.CreatedAt = time.Now()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		var listName string
		err := tx.QueryRowContext(ctx,
			`SELECT list FROM lists WHERE id = ?`, task.ListID,
		).Scan(&listName)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.NotFound("list", task.ListID)
			}
			return fmt.Errorf("sqlite: getting list %d: %w", task.ListID, err)
		}
		task.ListName = listName

		result, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (list_id, list, task, description, img, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			task.ListID,
			task.ListName,
			task.Title,
			task.Description,
			task.ImageURL,
			task.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting task: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlite: reading new task id: %w", err)
		}
		task.ID = id

		var total int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tasks WHERE list_id = ?`, task.ListID,
		).Scan(&total); err != nil {
			return fmt.Errorf("sqlite: counting tasks of list %d: %w", task.ListID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE lists SET total_tasks = ? WHERE id = ?`, total, task.ListID,
		); err != nil {
			return fmt.Errorf("sqlite: updating total_tasks of list %d: %w", task.ListID, err)
		}
		return nil
	})
}

// GetTask retrieves a task by primary key.
func (db *DB) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	t, err := scanTask(db.conn.QueryRowContext(ctx,
		`SELECT id, list_id, list, task, description, img, created_at
		 FROM tasks WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("task", id)
		}
		return nil, fmt.Errorf("sqlite: getting task %d: %w", id, err)
	}
	return t, nil
}

// TasksByList returns all tasks of a list in creation order.
func (db *DB) TasksByList(ctx context.Context, listID int64) ([]model.Task, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, list_id, list, task, description, img, created_at
		 FROM tasks
		 WHERE list_id = ?
		 ORDER BY id`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks of list %d: %w", listID, err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	return tasks, nil
}

// DeleteTask removes a single task. lists.total_tasks is left as it was.
func (db *DB) DeleteTask(ctx context.Context, id int64) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", id)
	}

	return nil
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		t           model.Task
		description sql.NullString
		img         sql.NullString
	)
	if err := row.Scan(
		&t.ID, &t.ListID, &t.ListName, &t.Title,
		&description, &img, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	// Legacy rows store a missing description or image as NULL; ours store "".
	t.Description = description.String
	t.ImageURL = img.String
	return &t, nil
}
