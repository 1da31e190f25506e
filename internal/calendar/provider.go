package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/drfrankproulx-cmd/OProom/pkg/circuitbreaker"
)

var ErrProviderUnavailable = errors.New("calendar provider not connected")

// Event is the provider-neutral shape of a calendar entry.
type Event struct {
	Title          string
	Description    string
	Location       string
	Start          time.Time
	End            time.Time
	TimeZone       string
	Attendees      []string
	ConferenceLink string
}

type ProviderEvent struct {
	ID       string
	HTMLLink string
}

// Provider is an external calendar acting on behalf of owner.
type Provider interface {
	CreateEvent(ctx context.Context, owner string, event *Event) (*ProviderEvent, error)
	UpdateEvent(ctx context.Context, owner, eventID string, event *Event) (*ProviderEvent, error)
	DeleteEvent(ctx context.Context, owner, eventID string) error
}

// Unavailable is the provider used when no calendar account is linked.
type Unavailable struct{}

func (Unavailable) CreateEvent(context.Context, string, *Event) (*ProviderEvent, error) {
	return nil, ErrProviderUnavailable
}

func (Unavailable) UpdateEvent(context.Context, string, string, *Event) (*ProviderEvent, error) {
	return nil, ErrProviderUnavailable
}

func (Unavailable) DeleteEvent(context.Context, string, string) error {
	return ErrProviderUnavailable
}

// BreakerProvider short-circuits calls while the upstream keeps failing.
type BreakerProvider struct {
	next Provider
	cb   *circuitbreaker.CircuitBreaker
}

func NewBreakerProvider(next Provider, logger *zerolog.Logger) *BreakerProvider {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "calendar",
		MaxFailures: 5,
		Timeout:     time.Minute,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Calendar circuit breaker state changed")
		},
	})
	return &BreakerProvider{next: next, cb: cb}
}

func (p *BreakerProvider) CreateEvent(ctx context.Context, owner string, event *Event) (*ProviderEvent, error) {
	var out *ProviderEvent
	err := p.cb.Execute(func() error {
		var err error
		out, err = p.next.CreateEvent(ctx, owner, event)
		return err
	})
	return out, err
}

func (p *BreakerProvider) UpdateEvent(ctx context.Context, owner, eventID string, event *Event) (*ProviderEvent, error) {
	var out *ProviderEvent
	err := p.cb.Execute(func() error {
		var err error
		out, err = p.next.UpdateEvent(ctx, owner, eventID, event)
		return err
	})
	return out, err
}

func (p *BreakerProvider) DeleteEvent(ctx context.Context, owner, eventID string) error {
	return p.cb.Execute(func() error {
		return p.next.DeleteEvent(ctx, owner, eventID)
	})
}
