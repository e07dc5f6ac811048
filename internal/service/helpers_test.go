package service_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"todoapp/internal/database"
	"todoapp/internal/model"
	"todoapp/internal/repository"
	"todoapp/internal/service"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTaskService(t *testing.T) (*service.TaskService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := service.NewTaskService(repository.NewTaskRepository(db), discardLogger()).
		WithClock(func() time.Time { return baseTime })
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, id, email string) {
	t.Helper()
	require.NoError(t, db.Create(&model.User{
		ID:             id,
		UserName:       email,
		Email:          email,
		FirstName:      "First",
		LastName:       "Last",
		HashedPassword: "hash",
	}).Error)
}

type taskSeed struct {
	owner       string
	title       string
	description *string
	completed   bool
	age         time.Duration
}

func seedTasks(t *testing.T, db *gorm.DB, seeds ...taskSeed) []model.Task {
	t.Helper()
	tasks := make([]model.Task, len(seeds))
	for i, s := range seeds {
		tasks[i] = model.Task{
			Title:       s.title,
			Description: s.description,
			IsCompleted: s.completed,
			OwnerID:     s.owner,
			CreatedAt:   baseTime.Add(-s.age),
		}
		require.NoError(t, db.Create(&tasks[i]).Error)
	}
	return tasks
}

func loadTask(t *testing.T, db *gorm.DB, id uint) model.Task {
	t.Helper()
	var task model.Task
	require.NoError(t, db.First(&task, id).Error)
	return task
}

func strPtr(s string) *string { return &s }

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}
