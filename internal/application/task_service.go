package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"taskflow/internal/domain/entity"
	repo "taskflow/internal/domain/repository"
)

// TaskService implements owner-scoped CRUD and filtering over tasks. Every
// method takes the authenticated user's ID explicitly; there is no ambient
// "current user".
type TaskService struct {
	Repo         repo.TaskRepository
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESTasksIndex string
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
}

// UpdateTaskInput carries optional fields: nil means "leave unchanged".
// An empty DueDate string clears the due date.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
}

// List returns the caller's tasks, newest first, narrowed by the filter.
func (s *TaskService) List(ctx context.Context, userID string, filter entity.TaskFilter) ([]*entity.Task, error) {
	if filter.Status != "" && !entity.TaskStatus(filter.Status).Valid() {
		return nil, invalid("status", "must be one of: pending, in-progress, completed")
	}
	if filter.Priority != "" && !entity.TaskPriority(filter.Priority).Valid() {
		return nil, invalid("priority", "must be one of: low, medium, high")
	}
	return s.Repo.ListByUserID(ctx, userID, filter)
}

// Get returns one task; a task owned by someone else reports ErrNotFound.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*entity.Task, error) {
	return s.Repo.GetByID(ctx, id, userID)
}

// Create validates the input, applies defaults, and sets ownership to userID.
func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*entity.Task, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(in.Description) > 1000 {
		return nil, invalid("description", "must be at most 1000 characters")
	}

	status := entity.StatusPending
	if in.Status != "" {
		status = entity.TaskStatus(in.Status)
		if !status.Valid() {
			return nil, invalid("status", "must be one of: pending, in-progress, completed")
		}
	}
	priority := entity.PriorityMedium
	if in.Priority != "" {
		priority = entity.TaskPriority(in.Priority)
		if !priority.Valid() {
			return nil, invalid("priority", "must be one of: low, medium, high")
		}
	}

	var due *time.Time
	if in.DueDate != "" {
		due, err = parseDueDate(in.DueDate)
		if err != nil {
			return nil, err
		}
	}

	t := &entity.Task{
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     due,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	_ = s.indexTask(ctx, t)
	return t, nil
}

// Update changes only the supplied fields. Ownership and creation time are
// immutable; they are never read from the input.
func (s *TaskService) Update(ctx context.Context, userID, id string, in UpdateTaskInput) (*entity.Task, error) {
	t, err := s.Repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		t.Title = title
	}
	if in.Description != nil {
		if utf8.RuneCountInString(*in.Description) > 1000 {
			return nil, invalid("description", "must be at most 1000 characters")
		}
		t.Description = *in.Description
	}
	if in.Status != nil {
		status := entity.TaskStatus(*in.Status)
		if !status.Valid() {
			return nil, invalid("status", "must be one of: pending, in-progress, completed")
		}
		t.Status = status
	}
	if in.Priority != nil {
		priority := entity.TaskPriority(*in.Priority)
		if !priority.Valid() {
			return nil, invalid("priority", "must be one of: low, medium, high")
		}
		t.Priority = priority
	}
	if in.DueDate != nil {
		if *in.DueDate == "" {
			t.DueDate = nil
		} else {
			due, err := parseDueDate(*in.DueDate)
			if err != nil {
				return nil, err
			}
			t.DueDate = due
		}
	}

	if err := s.Repo.Update(ctx, t); err != nil {
		return nil, err
	}
	_ = s.indexTask(ctx, t)
	return t, nil
}

// Delete removes the task. Deleting an already-gone id reports ErrNotFound.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.Repo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.deleteTaskDoc(ctx, id)
	return nil
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", invalid("title", "is required")
	}
	if utf8.RuneCountInString(title) > 200 {
		return "", invalid("title", "must be at most 200 characters")
	}
	return title, nil
}

// parseDueDate accepts an RFC3339 instant or a bare calendar date.
func parseDueDate(s string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	return nil, invalid("due_date", "must be an RFC3339 timestamp or YYYY-MM-DD date")
}

// indexTask mirrors the task into Elasticsearch, best effort; Postgres stays
// authoritative and list/search never read from ES.
func (s *TaskService) indexTask(ctx context.Context, t *entity.Task) error {
	if s.ES == nil || s.ESTasksIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":          t.ID,
		"user_id":     t.UserID,
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"created_at":  t.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  t.UpdatedAt.Format(time.RFC3339Nano),
	}
	if t.DueDate != nil {
		doc["due_date"] = t.DueDate.Format(time.RFC3339Nano)
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESTasksIndex, DocumentID: t.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", t.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("task_id", t.ID).Warn("es index response error")
	}
	return nil
}

func (s *TaskService) deleteTaskDoc(ctx context.Context, id string) {
	if s.ES == nil || s.ESTasksIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESTasksIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}
