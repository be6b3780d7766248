package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
)

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

// TaskWriteRepository stores tasks in PostgreSQL. Every statement carries the
// owner in its WHERE clause.
type TaskWriteRepository struct {
	db *sql.DB
}

var _ TaskStore = (*TaskWriteRepository)(nil)

func NewTaskWriteRepository(db *sql.DB) *TaskWriteRepository {
	return &TaskWriteRepository{db: db}
}

func (r *TaskWriteRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.OwnerID, task.Title, task.Description, string(task.Status),
		string(task.Priority), nullTime(task), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *TaskWriteRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (r *TaskWriteRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, priority = $6,
			due_date = $7, updated_at = $8
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query,
		task.ID, task.OwnerID, task.Title, task.Description, string(task.Status),
		string(task.Priority), nullTime(task), task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return expectOneRow(result, ErrTaskNotFound)
}

func (r *TaskWriteRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return expectOneRow(result, ErrTaskNotFound)
}

func (r *TaskWriteRepository) List(ctx context.Context, ownerID string, filter models.TaskFilter, sort models.TaskSort) ([]models.Task, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	args := []any{ownerID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&b, " AND status = $%d", len(args))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		fmt.Fprintf(&b, " AND priority = $%d", len(args))
	}

	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}
	// The column comes from the whitelist, never from the request.
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s", sortColumn(sort.Field), direction, direction)

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskWriteRepository) CountByStatus(ctx context.Context, ownerID string) (map[models.TaskStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE user_id = $1 GROUP BY status`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.TaskStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		counts[models.TaskStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var status, priority string
	var dueDate sql.NullTime
	if err := row.Scan(
		&task.ID, &task.OwnerID, &task.Title, &task.Description, &status, &priority,
		&dueDate, &task.CreatedAt, &task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	task.Status = models.TaskStatus(status)
	task.Priority = models.TaskPriority(priority)
	if dueDate.Valid {
		d := dueDate.Time
		task.DueDate = &d
	}
	return &task, nil
}

func nullTime(task *models.Task) sql.NullTime {
	if task.DueDate == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *task.DueDate, Valid: true}
}
