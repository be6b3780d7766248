package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Timestamps are owned by the services, so GORM's automatic tracking is off.
type userRecord struct {
	ID           string    `gorm:"primaryKey;type:text"`
	Email        string    `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string    `gorm:"not null;type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:false"`
}

func (userRecord) TableName() string {
	return "users"
}

type taskRecord struct {
	ID          string `gorm:"primaryKey;type:text"`
	UserID      string `gorm:"not null;type:text;index:idx_tasks_user_created,priority:1;index:idx_tasks_user_status,priority:1"`
	Title       string `gorm:"not null;type:text"`
	Description string `gorm:"not null;type:text"`
	Status      string `gorm:"not null;type:text;index:idx_tasks_user_status,priority:2"`
	Priority    string `gorm:"not null;type:text"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime:false;index:idx_tasks_user_created,priority:2"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func toUserRecord(u *models.User) *userRecord {
	return &userRecord{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *userRecord) model() *models.User {
	return &models.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toTaskRecord(t *models.Task) *taskRecord {
	return &taskRecord{
		ID:          t.ID,
		UserID:      t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r *taskRecord) model() models.Task {
	return models.Task{
		ID:          r.ID,
		OwnerID:     r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Status:      models.TaskStatus(r.Status),
		Priority:    models.TaskPriority(r.Priority),
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// GormUserRepository is the embedded (SQLite) user store.
type GormUserRepository struct {
	db *gorm.DB
}

var _ UserStore = (*GormUserRepository)(nil)

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(toUserRecord(user)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *GormUserRepository) first(ctx context.Context, cond string, arg string) (*models.User, error) {
	var rec userRecord
	if err := r.db.WithContext(ctx).First(&rec, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return rec.model(), nil
}

func (r *GormUserRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userRecord{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func (r *GormUserRepository) UpdateEmail(ctx context.Context, id, email string, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).
		Updates(map[string]any{"email": email, "updated_at": updatedAt})
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", id).
		Updates(map[string]any{"password_hash": passwordHash, "updated_at": updatedAt})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GormTaskRepository is the embedded (SQLite) task store.
type GormTaskRepository struct {
	db *gorm.DB
}

var _ TaskStore = (*GormTaskRepository)(nil)

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(toTaskRecord(task)).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *GormTaskRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Task, error) {
	var rec taskRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ? AND user_id = ?", id, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	task := rec.model()
	return &task, nil
}

func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	// A map so that cleared fields (empty description, nil due date) are written.
	result := r.db.WithContext(ctx).Model(&taskRecord{}).
		Where("id = ? AND user_id = ?", task.ID, task.OwnerID).
		Updates(map[string]any{
			"title":       task.Title,
			"description": task.Description,
			"status":      string(task.Status),
			"priority":    string(task.Priority),
			"due_date":    task.DueDate,
			"updated_at":  task.UpdatedAt,
		})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *GormTaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	result := r.db.WithContext(ctx).Delete(&taskRecord{}, "id = ? AND user_id = ?", id, ownerID)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *GormTaskRepository) List(ctx context.Context, ownerID string, filter models.TaskFilter, sort models.TaskSort) ([]models.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", string(filter.Priority))
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: sortColumn(sort.Field)}, Desc: sort.Descending}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: sort.Descending})

	var recs []taskRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]models.Task, 0, len(recs))
	for i := range recs {
		tasks = append(tasks, recs[i].model())
	}
	return tasks, nil
}

func (r *GormTaskRepository) CountByStatus(ctx context.Context, ownerID string) (map[models.TaskStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&taskRecord{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", ownerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.TaskStatus(row.Status)] = row.Count
	}
	return counts, nil
}
