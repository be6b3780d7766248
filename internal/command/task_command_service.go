package command

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/satyaranjan2005/Taskmanager-backend/internal/repository"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/apperr"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/cqrs"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/events"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/utils"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/validation"
)

// Layouts accepted for dueDate, tried in order.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// TaskCommandService handles all task state mutations. Every mutation drops
// the owner's cached stats and emits a task event.
type TaskCommandService struct {
	store     repository.TaskStore
	readRepo  *repository.TaskReadRepository
	publisher *events.Publisher
	now       func() time.Time
}

func NewTaskCommandService(
	store repository.TaskStore,
	readRepo *repository.TaskReadRepository,
	publisher *events.Publisher,
) *TaskCommandService {
	return &TaskCommandService{
		store:     store,
		readRepo:  readRepo,
		publisher: publisher,
		now:       utcNow,
	}
}

func (s *TaskCommandService) CreateTask(ctx context.Context, cmd cqrs.CreateTaskCommand) (*models.Task, error) {
	if errs := validation.Struct(cmd); errs != nil {
		return nil, apperr.Validation("Title is required")
	}

	status := models.StatusPending
	if cmd.Status != "" {
		status = models.TaskStatus(cmd.Status)
		if !status.Valid() {
			return nil, apperr.Validation("Invalid status")
		}
	}
	priority := models.TaskPriority(cmd.Priority)
	if !priority.Valid() {
		return nil, apperr.Validation("Invalid priority")
	}
	dueDate, err := parseDueDate(cmd.DueDate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	task := &models.Task{
		ID:          utils.GenerateID("tsk"),
		OwnerID:     cmd.OwnerID,
		Title:       cmd.Title,
		Description: cmd.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, task); err != nil {
		return nil, apperr.Internal(err)
	}

	s.afterMutation(ctx, events.TaskCreated, task)
	return task, nil
}

// UpdateTask overwrites only the fields present in cmd.
func (s *TaskCommandService) UpdateTask(ctx context.Context, cmd cqrs.UpdateTaskCommand) (*models.Task, error) {
	if !utils.ValidateTaskID(cmd.TaskID) {
		return nil, apperr.NotFound("Task not found")
	}
	task, err := s.store.GetByID(ctx, cmd.OwnerID, cmd.TaskID)
	if err != nil {
		return nil, taskError(err)
	}
	if err := applyPatch(task, cmd); err != nil {
		return nil, err
	}

	task.UpdatedAt = s.now()
	if err := s.store.Update(ctx, task); err != nil {
		return nil, taskError(err)
	}

	s.afterMutation(ctx, events.TaskUpdated, task)
	return task, nil
}

func (s *TaskCommandService) DeleteTask(ctx context.Context, cmd cqrs.DeleteTaskCommand) error {
	if !utils.ValidateTaskID(cmd.TaskID) {
		return apperr.NotFound("Task not found")
	}
	if err := s.store.Delete(ctx, cmd.OwnerID, cmd.TaskID); err != nil {
		return taskError(err)
	}
	s.afterMutation(ctx, events.TaskDeleted, &models.Task{ID: cmd.TaskID, OwnerID: cmd.OwnerID})
	return nil
}

// ToggleTask flips a Completed task back to Pending and completes anything else.
func (s *TaskCommandService) ToggleTask(ctx context.Context, cmd cqrs.ToggleTaskCommand) (*models.Task, error) {
	if !utils.ValidateTaskID(cmd.TaskID) {
		return nil, apperr.NotFound("Task not found")
	}
	task, err := s.store.GetByID(ctx, cmd.OwnerID, cmd.TaskID)
	if err != nil {
		return nil, taskError(err)
	}

	task.Status = task.Status.Toggled()
	task.UpdatedAt = s.now()
	if err := s.store.Update(ctx, task); err != nil {
		return nil, taskError(err)
	}

	s.afterMutation(ctx, events.TaskToggled, task)
	return task, nil
}

func (s *TaskCommandService) afterMutation(ctx context.Context, eventType string, task *models.Task) {
	s.readRepo.InvalidateStats(ctx, task.OwnerID)
	if err := s.publisher.Publish(ctx, events.TaskEventsStream, eventType, events.TaskEvent{
		TaskID:  task.ID,
		OwnerID: task.OwnerID,
		Status:  string(task.Status),
	}); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

func applyPatch(task *models.Task, cmd cqrs.UpdateTaskCommand) error {
	if cmd.Title.Present {
		if cmd.Title.Null || cmd.Title.Value == "" {
			return apperr.Validation("Title is required")
		}
		task.Title = cmd.Title.Value
	}
	if cmd.Description.Present {
		task.Description = cmd.Description.Value
	}
	if cmd.Status.Present {
		status := models.TaskStatus(cmd.Status.Value)
		if cmd.Status.Null || !status.Valid() {
			return apperr.Validation("Invalid status")
		}
		task.Status = status
	}
	if cmd.Priority.Present {
		priority := models.TaskPriority(cmd.Priority.Value)
		if !priority.Valid() {
			return apperr.Validation("Invalid priority")
		}
		task.Priority = priority
	}
	if cmd.DueDate.Present {
		dueDate, err := parseDueDate(cmd.DueDate.Value)
		if err != nil {
			return err
		}
		task.DueDate = dueDate
	}
	return nil
}

// parseDueDate returns nil for an empty value.
func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Validation("Invalid due date")
}

func taskError(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return apperr.NotFound("Task not found")
	}
	return apperr.Internal(err)
}
