package task

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
)

const titleDescriptionLen = 50

// Notifier delivers a single notification.
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

type TaskServicer interface {
	Create(ctx context.Context, actor string, req *model.TaskRequest) (*model.Task, error)
	List(ctx context.Context, patientMRN string) ([]*model.Task, error)
	Update(ctx context.Context, id string, req *model.TaskRequest) error
	Delete(ctx context.Context, id string) error
	Toggle(ctx context.Context, id string) (*model.ToggleTaskResponse, error)
}

type Service struct {
	repo     repository.TaskRepository
	users    repository.UserRepository
	notifier Notifier
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewService(repo repository.TaskRepository, users repository.UserRepository, notifier Notifier, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{repo: repo, users: users, notifier: notifier, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor string, req *model.TaskRequest) (*model.Task, error) {
	task := &model.Task{ID: model.NewID()}
	req.Apply(task)
	task.Stamp(actor, s.now())

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.AssignedToEmail != "" && task.AssignedToEmail != actor {
		s.notifyAssignee(ctx, actor, task)
	}
	return task, nil
}

func (s *Service) notifyAssignee(ctx context.Context, actor string, task *model.Task) {
	if s.notifier == nil {
		return
	}
	due := task.DueDate
	if due == "" {
		due = "Not specified"
	}
	message := strings.Join([]string{
		fmt.Sprintf("You have been assigned a new task by %s:", s.displayName(ctx, actor)),
		"",
		fmt.Sprintf("Task: %s", task.TaskDescription),
		fmt.Sprintf("Patient MRN: %s", task.PatientMRN),
		fmt.Sprintf("Urgency: %s", task.Urgency),
		fmt.Sprintf("Due Date: %s", due),
		"",
		"Please complete this task to prepare the patient for the operating room.",
	}, "\n")

	err := s.notifier.Notify(ctx, &model.Notification{
		RecipientEmail: task.AssignedToEmail,
		RecipientName:  task.AssignedTo,
		Type:           model.NotificationTaskAssigned,
		Title:          fmt.Sprintf("New Task Assigned: %s", truncate(task.TaskDescription, titleDescriptionLen)),
		Message:        message,
		CaseMRN:        task.PatientMRN,
		TaskID:         task.ID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("task_id", task.ID).Msg("Failed to notify task assignee")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (s *Service) displayName(ctx context.Context, email string) string {
	if s.users == nil {
		return email
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || u.FullName == "" {
		return email
	}
	return u.FullName
}

func (s *Service) List(ctx context.Context, patientMRN string) ([]*model.Task, error) {
	tasks, err := s.repo.List(ctx, patientMRN)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update replaces the task fields; completed decides the status.
func (s *Service) Update(ctx context.Context, id string, req *model.TaskRequest) error {
	task, err := s.repo.Get(ctx, id)
	if err != nil {
		return notFound(err)
	}
	req.Apply(task)
	if err := s.repo.Update(ctx, task); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Service) Toggle(ctx context.Context, id string) (*model.ToggleTaskResponse, error) {
	task, err := s.repo.Toggle(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &model.ToggleTaskResponse{
		Message:   "Task status updated",
		Completed: task.Completed,
		Status:    task.Status,
	}, nil
}

func notFound(err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("Task", err)
	}
	return fmt.Errorf("failed to access task: %w", err)
}
