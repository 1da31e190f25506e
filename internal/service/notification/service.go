package notification

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/drfrankproulx-cmd/OProom/internal/email"
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/repository"
	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/messaging"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
)

const (
	listLimit       = 50
	deliveryTimeout = 30 * time.Second

	channelEmail  = "email"
	channelBroker = "broker"

	eventCreated = "notification.created"
)

// ActiveStaff lists who receives case-wide notifications.
type ActiveStaff interface {
	ActiveResidents(ctx context.Context) ([]*model.Resident, error)
}

type NotificationServicer interface {
	Notify(ctx context.Context, n *model.Notification) error
	NotifyActiveStaff(ctx context.Context, actor string, n model.Notification) (int, error)
	List(ctx context.Context, recipient string) ([]*model.Notification, error)
	Unread(ctx context.Context, recipient string) ([]*model.Notification, error)
	MarkRead(ctx context.Context, recipient, id string) error
	MarkAllRead(ctx context.Context, recipient string) (int64, error)
	Delete(ctx context.Context, recipient, id string) error
}

type Service struct {
	repo      repository.NotificationRepository
	staff     ActiveStaff
	emailSvc  email.Service
	publisher *messaging.Publisher
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
	now       func() time.Time

	inflight sync.WaitGroup
}

func NewService(repo repository.NotificationRepository, staff ActiveStaff, emailSvc email.Service,
	broker messaging.Broker, m *metrics.Metrics, logger *zerolog.Logger) *Service {
	if emailSvc == nil {
		emailSvc = email.Disabled{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Service{
		repo:     repo,
		staff:    staff,
		emailSvc: emailSvc,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
	s.publisher = messaging.NewPublisher(broker, messaging.ChannelNotifications, logger).
		OnError(func(string, error) {
			m.NotificationDeliveryFailure.WithLabelValues(channelBroker).Inc()
		})
	return s
}

// Notify stores n and hands delivery off to a background goroutine.
// Delivery failures never reach the caller.
func (s *Service) Notify(ctx context.Context, n *model.Notification) error {
	if n.RecipientEmail == "" {
		return errors.InvalidArgument("recipient email is required")
	}

	n.ID = model.NewID()
	n.Read = false
	n.CreatedAt = s.now().UTC()

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	s.metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	delivered := *n
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		s.deliver(ctx, &delivered)
	}()

	return nil
}

func (s *Service) deliver(ctx context.Context, n *model.Notification) {
	if s.emailSvc.Enabled() {
		if err := s.emailSvc.SendCustom(ctx, n.RecipientEmail, n.Title, n.Message); err != nil {
			s.logger.Warn().Err(err).
				Str("notification_id", n.ID).
				Str("recipient", n.RecipientEmail).
				Msg("Failed to email notification")
			s.metrics.NotificationDeliveryFailure.WithLabelValues(channelEmail).Inc()
		}
	}

	s.publisher.Publish(ctx, eventCreated, &model.NotificationEvent{
		NotificationID: n.ID,
		RecipientEmail: n.RecipientEmail,
		Type:           n.Type,
		Title:          n.Title,
		CaseMRN:        n.CaseMRN,
	})
}

// NotifyActiveStaff sends a copy of tmpl to every active resident except actor.
// It returns how many notifications were stored.
func (s *Service) NotifyActiveStaff(ctx context.Context, actor string, tmpl model.Notification) (int, error) {
	residents, err := s.staff.ActiveResidents(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load active residents: %w", err)
	}

	sent := 0
	for _, r := range residents {
		if r.Email == "" || r.Email == actor {
			continue
		}
		n := tmpl
		n.RecipientEmail = r.Email
		n.RecipientName = r.Name
		if err := s.Notify(ctx, &n); err != nil {
			s.logger.Error().Err(err).Str("recipient", r.Email).Msg("Failed to notify resident")
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Service) List(ctx context.Context, recipient string) ([]*model.Notification, error) {
	out, err := s.repo.ListByRecipient(ctx, recipient, false, listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return out, nil
}

func (s *Service) Unread(ctx context.Context, recipient string) ([]*model.Notification, error) {
	out, err := s.repo.ListByRecipient(ctx, recipient, true, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread notifications: %w", err)
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, recipient, id string) error {
	if err := s.repo.MarkRead(ctx, recipient, id); err != nil {
		return notFound(err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, recipient)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, recipient, id string) error {
	if err := s.repo.Delete(ctx, recipient, id); err != nil {
		return notFound(err)
	}
	return nil
}

// Wait blocks until background deliveries have finished.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func notFound(err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("Notification", err)
	}
	return fmt.Errorf("failed to update notification: %w", err)
}
