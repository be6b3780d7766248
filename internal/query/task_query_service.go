package query

import (
	"context"
	"errors"

	"github.com/satyaranjan2005/Taskmanager-backend/internal/repository"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/apperr"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/cqrs"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/utils"
)

const defaultSortField = "createdAt"

// TaskQueryService serves task listings, single tasks and per-owner stats.
type TaskQueryService struct {
	readRepo *repository.TaskReadRepository
}

func NewTaskQueryService(readRepo *repository.TaskReadRepository) *TaskQueryService {
	return &TaskQueryService{readRepo: readRepo}
}

func (s *TaskQueryService) ListTasks(ctx context.Context, q cqrs.ListTasksQuery) ([]models.Task, error) {
	filter := models.TaskFilter{
		Status:   models.TaskStatus(q.Status),
		Priority: models.TaskPriority(q.Priority),
	}
	tasks, err := s.readRepo.List(ctx, q.OwnerID, filter, sortFor(q))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tasks, nil
}

func (s *TaskQueryService) GetTask(ctx context.Context, q cqrs.GetTaskQuery) (*models.Task, error) {
	if !utils.ValidateTaskID(q.TaskID) {
		return nil, apperr.NotFound("Task not found")
	}
	task, err := s.readRepo.GetByID(ctx, q.OwnerID, q.TaskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, apperr.Internal(err)
	}
	return task, nil
}

func (s *TaskQueryService) GetStats(ctx context.Context, q cqrs.TaskStatsQuery) (*models.TaskStats, error) {
	stats, err := s.readRepo.Stats(ctx, q.OwnerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}

// sortFor falls back to createdAt for unknown fields. Only "asc" sorts ascending.
func sortFor(q cqrs.ListTasksQuery) models.TaskSort {
	field := q.SortBy
	if !repository.IsSortable(field) {
		field = defaultSortField
	}
	return models.TaskSort{Field: field, Descending: q.Order != "asc"}
}
