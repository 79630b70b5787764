package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/domain/entity"
)

func newTaskService() (*TaskService, *fakeTaskRepo) {
	repo := newFakeTaskRepo()
	return &TaskService{Repo: repo}, repo
}

func TestTaskCreateDefaults(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", CreateTaskInput{Title: "Buy milk"})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "alice", task.UserID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, entity.StatusPending, task.Status)
	assert.Equal(t, entity.PriorityMedium, task.Priority)
	assert.Nil(t, task.DueDate)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestTaskCreateValidation(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	cases := []struct {
		name  string
		in    CreateTaskInput
		field string
	}{
		{"empty title", CreateTaskInput{Title: "   "}, "title"},
		{"long title", CreateTaskInput{Title: strings201()}, "title"},
		{"bad status", CreateTaskInput{Title: "x", Status: "done"}, "status"},
		{"bad priority", CreateTaskInput{Title: "x", Priority: "urgent"}, "priority"},
		{"bad due date", CreateTaskInput{Title: "x", DueDate: "tomorrow"}, "due_date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "alice", tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func strings201() string {
	b := make([]byte, 201)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestTaskCreateTrimsTitle(t *testing.T) {
	svc, _ := newTaskService()

	task, err := svc.Create(context.Background(), "alice", CreateTaskInput{Title: "  Buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", task.Title)
}

func TestTaskDueDateFormats(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", CreateTaskInput{Title: "a", DueDate: "2026-09-01"})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), *task.DueDate)

	task, err = svc.Create(ctx, "alice", CreateTaskInput{Title: "b", DueDate: "2026-09-01T15:04:05Z"})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, time.Date(2026, 9, 1, 15, 4, 5, 0, time.UTC), *task.DueDate)
}

func TestTaskOwnershipIsolation(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", CreateTaskInput{Title: "private"})
	require.NoError(t, err)

	// Another user sees NotFound, not Forbidden: existence is not leaked.
	_, err = svc.Get(ctx, "bob", task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, "bob", task.ID, UpdateTaskInput{Title: strptr("stolen")})
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(ctx, "bob", task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Owner still has the original.
	got, err := svc.Get(ctx, "alice", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)

	list, err := svc.List(ctx, "bob", entity.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaskListNewestFirst(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, "alice", CreateTaskInput{Title: title})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, "alice", entity.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[2].Title)
}

func TestTaskListFiltersIntersect(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	mk := func(title, status, priority string) {
		_, err := svc.Create(ctx, "alice", CreateTaskInput{Title: title, Status: status, Priority: priority})
		require.NoError(t, err)
	}
	mk("write report", "pending", "high")
	mk("write tests", "completed", "high")
	mk("buy groceries", "pending", "low")

	list, err := svc.List(ctx, "alice", entity.TaskFilter{Status: "pending", Search: "write"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "write report", list[0].Title)

	// Case-insensitive search over title and description.
	list, err = svc.List(ctx, "alice", entity.TaskFilter{Search: "WRITE"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTaskListRejectsBadFilter(t *testing.T) {
	svc, _ := newTaskService()

	_, err := svc.List(context.Background(), "alice", entity.TaskFilter{Status: "done"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)

	_, err = svc.List(context.Background(), "alice", entity.TaskFilter{Priority: "asap"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "priority", verr.Field)
}

func TestTaskUpdatePartial(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", CreateTaskInput{
		Title:       "Buy milk",
		Description: "two liters",
		Priority:    "high",
		DueDate:     "2026-09-01",
	})
	require.NoError(t, err)

	// Empty update changes nothing.
	updated, err := svc.Update(ctx, "alice", task.ID, UpdateTaskInput{})
	require.NoError(t, err)
	assert.Equal(t, task.Title, updated.Title)
	assert.Equal(t, task.Description, updated.Description)
	assert.Equal(t, task.Status, updated.Status)
	assert.Equal(t, task.Priority, updated.Priority)
	require.NotNil(t, updated.DueDate)

	// Single-field update leaves the rest intact.
	updated, err = svc.Update(ctx, "alice", task.ID, UpdateTaskInput{Status: strptr("completed")})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, updated.Status)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, entity.PriorityHigh, updated.Priority)

	// Empty due date clears it.
	updated, err = svc.Update(ctx, "alice", task.ID, UpdateTaskInput{DueDate: strptr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestTaskUpdateValidationLeavesRecordUntouched(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", CreateTaskInput{Title: "keep me"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "alice", task.ID, UpdateTaskInput{Status: strptr("done")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	got, err := svc.Get(ctx, "alice", task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, got.Status)
}

func TestTaskDeleteTwice(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", CreateTaskInput{Title: "ephemeral"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "alice", task.ID))

	err = svc.Delete(ctx, "alice", task.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.Get(ctx, "alice", task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func strptr(s string) *string { return &s }
