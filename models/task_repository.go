package models

import (
	"context"
	"database/sql"
	"errors"
)

// Ids are compared as bigint so that ids beyond the SERIAL range are simply
// not found.
const (
	insertTaskQuery = `
		INSERT INTO tasks (title, description)
		VALUES ($1, $2)
		RETURNING id, title, description, completed`

	listTasksQuery = `
		SELECT id, title, description, completed
		FROM tasks
		ORDER BY created_at DESC, id DESC`

	getTaskQuery = `
		SELECT id, title, description, completed
		FROM tasks
		WHERE id = $1::bigint`

	taskExistsQuery = `SELECT id FROM tasks WHERE id = $1::bigint`

	updateTaskQuery = `
		UPDATE tasks
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    completed = COALESCE($3, completed)
		WHERE id = $4::bigint
		RETURNING id, title, description, completed`

	deleteTaskQuery = `DELETE FROM tasks WHERE id = $1::bigint`
)

// TaskRepository is the data access layer for the tasks table. Every call
// takes one connection from the pool and gives it back before returning.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateTask inserts a task and returns the row as stored.
func (r *TaskRepository) CreateTask(ctx context.Context, title, description string) (Task, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return Task{}, err
	}
	defer conn.Close()

	return scanTask(conn.QueryRowContext(ctx, insertTaskQuery, title, description))
}

// ListTasks returns every task, newest first. The result is never nil.
func (r *TaskRepository) ListTasks(ctx context.Context) ([]Task, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, listTasksQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns the task with the given id or ErrTaskNotFound.
func (r *TaskRepository) GetTask(ctx context.Context, id int64) (Task, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return Task{}, err
	}
	defer conn.Close()

	t, err := scanTask(conn.QueryRowContext(ctx, getTaskQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	return t, err
}

// UpdateTask applies a coalescing update to an existing task and returns the
// row after the update. The existence check and the update share one
// transaction.
func (r *TaskRepository) UpdateTask(ctx context.Context, id int64, u TaskUpdate) (Task, error) {
	var updated Task
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := taskExists(ctx, tx, id); err != nil {
			return err
		}

		t, err := scanTask(tx.QueryRowContext(ctx, updateTaskQuery,
			nullString(u.Title),
			nullString(u.Description),
			nullBool(u.Completed),
			id,
		))
		if err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	return updated, nil
}

// DeleteTask permanently removes an existing task.
func (r *TaskRepository) DeleteTask(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := taskExists(ctx, tx, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, deleteTaskQuery, id)
		return err
	})
}

// withTx runs fn in a transaction on a single pooled connection, committing
// on success and rolling back otherwise.
func (r *TaskRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	return fn(tx)
}

func taskExists(ctx context.Context, tx *sql.Tx, id int64) error {
	var found int64
	err := tx.QueryRowContext(ctx, taskExistsQuery, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads id, title, description, completed. A NULL description is
// returned as "".
func scanTask(row rowScanner) (Task, error) {
	var t Task
	var desc sql.NullString
	if err := row.Scan(&t.ID, &t.Title, &desc, &t.Completed); err != nil {
		return Task{}, err
	}
	t.Description = desc.String
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
