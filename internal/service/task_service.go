package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"todoapp/internal/model"
	"todoapp/internal/repository"

	"github.com/go-playground/validator/v10"
)

// MaxTasksPerUser caps how many tasks one owner may hold. It is checked at
// creation only.
const MaxTasksPerUser = 15

type TaskStore interface {
	FindPage(ctx context.Context, filters []repository.Scope, order repository.Scope, offset, limit int) ([]model.Task, int64, error)
	CreateWithinLimit(ctx context.Context, task *model.Task, limit int) (bool, error)
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	CountOwned(ctx context.Context, ownerID string) (int64, error)
	UpdateIf(ctx context.Context, id uint, allow func(*model.Task) bool, apply func(*model.Task)) (bool, error)
	DeleteIf(ctx context.Context, id uint, allow func(*model.Task) bool) (bool, error)
}

var _ TaskStore = (*repository.TaskRepository)(nil)

// TaskFields are the columns an edit may overwrite.
type TaskFields struct {
	Title       string
	Description *string
	IsCompleted bool
}

type TaskService struct {
	store    TaskStore
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func NewTaskService(store TaskStore, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		store:    store,
		validate: validator.New(),
		logger:   logger.With("component", "task_service"),
		now:      time.Now,
	}
}

// WithClock replaces the creation timestamp source.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// List returns one page of the tasks visible to the caller and the total
// number of matches before paging.
func (s *TaskService) List(ctx context.Context, req ListTasksRequest) (ListTasksResult, error) {
	page, size := normalizePage(req.PageNumber, req.PageSize)
	s.logger.Debug("listing tasks",
		"user_id", req.CallerID,
		"is_admin", req.IsAdmin,
		"filter", req.Filter,
		"sort", req.SortOrder,
		"page", page,
	)

	tasks, total, err := s.store.FindPage(ctx, taskFilters(req), sortScope(req.SortOrder), pageOffset(page, size), size)
	if err != nil {
		s.logger.Error("list tasks failed", "user_id", req.CallerID, "error", err)
		return ListTasksResult{}, fmt.Errorf("list tasks: %w", err)
	}

	return ListTasksResult{
		Tasks:      tasks,
		TotalCount: total,
		PageNumber: page,
		PageSize:   size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

// Create stores task for callerID. The owner, id and creation time are set
// here regardless of what the caller supplied. It returns false without
// writing when the caller already holds MaxTasksPerUser tasks.
func (s *TaskService) Create(ctx context.Context, task *model.Task, callerID string) (bool, error) {
	task.Title = strings.TrimSpace(task.Title)
	task.Description = normalizeDescription(task.Description)
	if err := s.validateTask(task); err != nil {
		return false, err
	}

	task.ID = 0
	task.OwnerID = callerID
	task.CreatedAt = s.now().UTC()

	s.logger.Info("creating task", "user_id", callerID, "title", task.Title)
	created, err := s.store.CreateWithinLimit(ctx, task, MaxTasksPerUser)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, err
		}
		s.logger.Error("create task failed", "user_id", callerID, "error", err)
		return false, fmt.Errorf("create task: %w", err)
	}
	if !created {
		s.logger.Info("task limit reached", "user_id", callerID, "limit", MaxTasksPerUser)
	}
	return created, nil
}

// Get returns the task when it exists and the caller may see it, nil otherwise.
func (s *TaskService) Get(ctx context.Context, id uint, callerID string, isAdmin bool) (*model.Task, error) {
	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	if !CanManage(task, callerID, isAdmin) {
		s.logger.Warn("task access denied", "task_id", id, "user_id", callerID)
		return nil, nil
	}
	return task, nil
}

// Edit overwrites title, description and completion of a task the caller
// manages. Owner, id and creation time never change.
func (s *TaskService) Edit(ctx context.Context, id uint, fields TaskFields, callerID string, isAdmin bool) (bool, error) {
	fields.Title = strings.TrimSpace(fields.Title)
	fields.Description = normalizeDescription(fields.Description)
	if err := s.validateTask(&model.Task{Title: fields.Title, Description: fields.Description}); err != nil {
		return false, err
	}

	s.logger.Info("editing task", "task_id", id, "user_id", callerID, "is_admin", isAdmin)
	ok, err := s.store.UpdateIf(ctx, id, s.allow(id, callerID, isAdmin), func(t *model.Task) {
		t.Title = fields.Title
		t.Description = fields.Description
		t.IsCompleted = fields.IsCompleted
	})
	return s.mutationResult("edit", id, ok, err)
}

// Delete removes a task the caller manages, permanently.
func (s *TaskService) Delete(ctx context.Context, id uint, callerID string, isAdmin bool) (bool, error) {
	s.logger.Info("deleting task", "task_id", id, "user_id", callerID, "is_admin", isAdmin)
	ok, err := s.store.DeleteIf(ctx, id, s.allow(id, callerID, isAdmin))
	return s.mutationResult("delete", id, ok, err)
}

// ToggleComplete flips the completion flag of a task the caller manages.
func (s *TaskService) ToggleComplete(ctx context.Context, id uint, callerID string, isAdmin bool) (bool, error) {
	ok, err := s.store.UpdateIf(ctx, id, s.allow(id, callerID, isAdmin), func(t *model.Task) {
		t.IsCompleted = !t.IsCompleted
	})
	return s.mutationResult("toggle", id, ok, err)
}

// OwnedCount reports how many tasks callerID holds.
func (s *TaskService) OwnedCount(ctx context.Context, callerID string) (int64, error) {
	n, err := s.store.CountOwned(ctx, callerID)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (s *TaskService) allow(id uint, callerID string, isAdmin bool) func(*model.Task) bool {
	return func(t *model.Task) bool {
		if CanManage(t, callerID, isAdmin) {
			return true
		}
		s.logger.Warn("task access denied", "task_id", id, "user_id", callerID)
		return false
	}
}

// mutationResult folds not-found into a plain false so callers cannot tell a
// missing task from someone else's.
func (s *TaskService) mutationResult(op string, id uint, ok bool, err error) (bool, error) {
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			s.logger.Warn("task not found", "op", op, "task_id", id)
			return false, nil
		}
		s.logger.Error("task mutation failed", "op", op, "task_id", id, "error", err)
		return false, fmt.Errorf("%s task %d: %w", op, id, err)
	}
	return ok, nil
}

func (s *TaskService) validateTask(task *model.Task) error {
	if err := s.validate.Struct(task); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}
	return nil
}

func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
