package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jaekwang-park/vici/internal/model"
)

const taskColumns = `id, task, priority, estimated_time, category, status,
		actual_time, due_at, created_at, updated_at, completed_at`

type PostgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTask(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, userID string, task model.Task) (model.Task, error) {
	query := `
		INSERT INTO tasks (user_id, task, priority, estimated_time, category, status, actual_time, due_at, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE user_id = $1))
		RETURNING ` + taskColumns

	row := r.db.QueryRowContext(ctx, query,
		userID, task.Task, string(task.Priority), task.EstimatedTime, task.Category,
		task.Status, task.ActualTime, task.DueAt,
	)

	return scanTask(row)
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, userID, taskID string) (model.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2`

	row := r.db.QueryRowContext(ctx, query, taskID, userID)
	t, err := scanTask(row)
	return t, notFoundOnInvalidID(err)
}

func (r *PostgresTaskRepository) Update(ctx context.Context, userID string, task model.Task) (model.Task, error) {
	query := `
		UPDATE tasks
		SET task = $1, priority = $2, estimated_time = $3, category = $4, status = $5,
			actual_time = $6, due_at = $7, completed_at = $8, updated_at = now()
		WHERE id = $9 AND user_id = $10
		RETURNING ` + taskColumns

	row := r.db.QueryRowContext(ctx, query,
		task.Task, string(task.Priority), task.EstimatedTime, task.Category, task.Status,
		task.ActualTime, task.DueAt, task.CompletedAt, task.ID, userID,
	)

	t, err := scanTask(row)
	return t, notFoundOnInvalidID(err)
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", notFoundOnInvalidID(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *PostgresTaskRepository) List(ctx context.Context, userID string) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		ORDER BY position ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

func (r *PostgresTaskRepository) Reorder(ctx context.Context, userID string, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE tasks SET position = $1 WHERE id = $2 AND user_id = $3`)
	if err != nil {
		return fmt.Errorf("failed to prepare reorder: %w", err)
	}
	defer stmt.Close()

	for pos, id := range ids {
		result, err := stmt.ExecContext(ctx, pos, id, userID)
		if err != nil {
			return fmt.Errorf("failed to reorder task %s: %w", id, notFoundOnInvalidID(err))
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			return sql.ErrNoRows
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTask(row scannable) (model.Task, error) {
	var (
		t                           model.Task
		priority                    string
		actualTime                  sql.NullInt64
		dueAt, createdAt, updatedAt sql.NullTime
		completedAt                 sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Task, &priority, &t.EstimatedTime, &t.Category, &t.Status,
		&actualTime, &dueAt, &createdAt, &updatedAt, &completedAt,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to scan task: %w", err)
	}
	t.Priority = model.Priority(priority)
	if actualTime.Valid {
		v := int(actualTime.Int64)
		t.ActualTime = &v
	}
	t.DueAt = timePtr(dueAt)
	t.CreatedAt = timePtr(createdAt)
	t.UpdatedAt = timePtr(updatedAt)
	t.CompletedAt = timePtr(completedAt)
	return t, nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// ensure compile-time interface compliance
var _ TaskRepository = (*PostgresTaskRepository)(nil)
